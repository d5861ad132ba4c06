package src

import (
	"fmt"
	"math/rand"
)

// Tensor is a row-major block of per-protein features. Shape[0] is the
// number of proteins; the remaining dimensions form one protein's block.
type Tensor struct {
	Shape []int
	Data  []float64
}

// NewTensor checks that data fills shape exactly.
func NewTensor(shape []int, data []float64) (*Tensor, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: tensor without shape", ErrDataset)
	}
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative tensor dimension in %v", ErrDataset, shape)
		}
		n *= d
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: tensor shape %v needs %d values, got %d", ErrDataset, shape, n, len(data))
	}
	return &Tensor{Shape: shape, Data: data}, nil
}

// Rows is the number of proteins.
func (t *Tensor) Rows() int {
	return t.Shape[0]
}

// Width is the flattened size of one protein's block.
func (t *Tensor) Width() int {
	w := 1
	for _, d := range t.Shape[1:] {
		w *= d
	}
	return w
}

// Row returns protein i flattened, sharing storage with the tensor.
func (t *Tensor) Row(i int) []float64 {
	w := t.Width()
	return t.Data[i*w : (i+1)*w]
}

// Partition names, in report order.
const (
	PartTrain      = "train"
	PartValidSeen  = "valid_seen"
	PartTestSeen   = "test_seen"
	PartTestUnseen = "test_unseen"
)

var partitionOrder = []string{PartTrain, PartValidSeen, PartTestSeen, PartTestUnseen}

var partitionLabel = map[string]string{
	PartTrain:      "train",
	PartValidSeen:  "seen valid",
	PartTestSeen:   "seen test",
	PartTestUnseen: "unseen test",
}

// Dataset is what a provider hands the trainer. All index arrays refer to
// pair rows of Labels.
type Dataset struct {
	Labels              []float64
	ProteinFt           map[string]*Tensor
	AntibodyIndexInPair []int
	VirusIndexInPair    []int
	TrainIndex          []int
	ValidSeenIndex      []int
	TestSeenIndex       []int
	TestUnseenIndex     []int
}

// PairNum is the number of antibody-virus pairs.
func (d *Dataset) PairNum() int {
	return len(d.Labels)
}

// Partition returns the index set for one of the Part* names.
func (d *Dataset) Partition(name string) []int {
	switch name {
	case PartTrain:
		return d.TrainIndex
	case PartValidSeen:
		return d.ValidSeenIndex
	case PartTestSeen:
		return d.TestSeenIndex
	case PartTestUnseen:
		return d.TestUnseenIndex
	}
	return nil
}

// Check verifies the alignment invariants: equal-length pair arrays,
// in-range partition indices and pairwise disjoint partitions.
func (d *Dataset) Check() error {
	n := d.PairNum()
	if n == 0 {
		return fmt.Errorf("%w: no pairs", ErrDataset)
	}
	if len(d.AntibodyIndexInPair) != n || len(d.VirusIndexInPair) != n {
		return fmt.Errorf("%w: pair index arrays have %d and %d entries for %d labels",
			ErrDataset, len(d.AntibodyIndexInPair), len(d.VirusIndexInPair), n)
	}
	owner := make(map[int]string, n)
	for _, name := range partitionOrder {
		for _, idx := range d.Partition(name) {
			if idx < 0 || idx >= n {
				return fmt.Errorf("%w: %s index %d out of range [0,%d)", ErrDataset, name, idx, n)
			}
			if prev, exist := owner[idx]; exist {
				return fmt.Errorf("%w: pair %d in both %s and %s", ErrDataset, idx, prev, name)
			}
			owner[idx] = name
		}
	}
	return nil
}

// DatasetProvider builds the dataset for a configuration. rng is the
// pipeline stream from SetupSeed.
type DatasetProvider interface {
	Build(cfg Config, rng *rand.Rand) (*Dataset, error)
}
