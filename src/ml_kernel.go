package src

import (
	"math"
	"strconv"

	"github.com/patrickmn/go-cache"
	"gonum.org/v1/gonum/floats"
)

// rbf computes exp(-gamma*||x-y||^2) from dot products and cached squared
// norms.
func rbf(gamma float64, x []float64, xNorm float64, y []float64, yNorm float64) float64 {
	d := xNorm + yNorm - 2*floats.Dot(x, y)
	if d < 0 {
		d = 0
	}
	return math.Exp(-gamma * d)
}

func sqNorms(rows [][]float64) []float64 {
	norms := make([]float64, len(rows))
	for i, r := range rows {
		norms[i] = floats.Dot(r, r)
	}
	return norms
}

// kernelRows serves rows of the training kernel matrix K(i, .), keeping at
// most maxRows of them in memory for the lifetime of one fit.
type kernelRows struct {
	x       [][]float64
	norms   []float64
	gamma   float64
	rows    *cache.Cache
	maxRows int
}

// newKernelRows sizes the row cache from cacheMB; cacheMB <= 0 disables it.
func newKernelRows(x [][]float64, gamma float64, cacheMB int) *kernelRows {
	k := &kernelRows{x: x, norms: sqNorms(x), gamma: gamma}
	if cacheMB > 0 && len(x) > 0 {
		k.maxRows = cacheMB * (1 << 20) / (8 * len(x))
		if k.maxRows < 2 {
			k.maxRows = 2
		}
		k.rows = cache.New(cache.NoExpiration, 0)
	}
	return k
}

// diag is K(i,i), always 1 for the RBF kernel.
func (k *kernelRows) diag(i int) float64 {
	return 1
}

func (k *kernelRows) row(i int) []float64 {
	key := strconv.Itoa(i)
	if k.rows != nil {
		if r, found := k.rows.Get(key); found {
			return r.([]float64)
		}
	}
	r := make([]float64, len(k.x))
	for j := range k.x {
		r[j] = rbf(k.gamma, k.x[i], k.norms[i], k.x[j], k.norms[j])
	}
	if k.rows != nil && k.rows.ItemCount() < k.maxRows {
		k.rows.Set(key, r, cache.NoExpiration)
	}
	return r
}

func (k *kernelRows) release() {
	if k.rows != nil {
		k.rows.Flush()
	}
}
