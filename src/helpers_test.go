package src

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// toyDataset is 5 antibodies x 2 viruses. Antibodies 0, 2 and 4 bind both
// viruses, 1 and 3 bind none. Antibody 4 only appears in the unseen test set.
func toyDataset(t testing.TB) *Dataset {
	t.Helper()
	abFt, err := NewTensor([]int{5, 4}, []float64{
		1, 0, 0.0, 0,
		0, 1, 0.1, 0,
		1, 0, 0.2, 0,
		0, 1, 0.3, 0,
		1, 0, 0.4, 0,
	})
	require.NoError(t, err)
	viFt, err := NewTensor([]int{2, 3}, []float64{
		0, 0, 0,
		1, 1, 1,
	})
	require.NoError(t, err)
	kmerAb, err := NewTensor([]int{5, 2}, []float64{1, 1, 2, 2, 3, 3, 4, 4, 5, 5})
	require.NoError(t, err)
	kmerVi, err := NewTensor([]int{2, 1}, []float64{7, 8})
	require.NoError(t, err)

	d := &Dataset{
		ProteinFt: map[string]*Tensor{
			"antibody_pssm":       abFt,
			"virus_pssm":          viFt,
			"antibody_kmer_whole": kmerAb,
			"virus_kmer_whole":    kmerVi,
		},
		TrainIndex:      []int{0, 1, 2, 3, 4, 5},
		ValidSeenIndex:  []int{6},
		TestSeenIndex:   []int{7},
		TestUnseenIndex: []int{8, 9},
	}
	for ab := 0; ab < 5; ab++ {
		for vi := 0; vi < 2; vi++ {
			d.AntibodyIndexInPair = append(d.AntibodyIndexInPair, ab)
			d.VirusIndexInPair = append(d.VirusIndexInPair, vi)
			d.Labels = append(d.Labels, float64(1-ab%2))
		}
	}
	return d
}

// toyProvider hands out a fresh toyDataset and counts Build calls.
type toyProvider struct {
	tb    testing.TB
	calls atomic.Int32
}

func (p *toyProvider) Build(cfg Config, rng *rand.Rand) (*Dataset, error) {
	p.calls.Add(1)
	return toyDataset(p.tb), nil
}

func toyConfig(t testing.TB) Config {
	cfg := DefaultConfig()
	cfg.SvmGamma = 2
	cfg.BaseDir = t.TempDir()
	cfg.RunID = "toy"
	return cfg
}
