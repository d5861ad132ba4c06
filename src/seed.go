package src

import (
	"log"
	"math/rand"
	"runtime/debug"
)

// SetupSeed returns the random stream for one pipeline instance. Every
// randomized step takes this stream explicitly; nothing reads the global
// math/rand source. The SVM solver has no random state of its own.
func SetupSeed(seed int64) *rand.Rand {
	debug.SetGCPercent(50)
	log.Print("seed = ", seed)
	return rand.New(rand.NewSource(seed))
}
