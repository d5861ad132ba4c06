package src

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/mat"
)

// FeatureKind names one per-protein feature representation.
type FeatureKind string

const (
	FtOneHot FeatureKind = "one_hot"
	FtPssm   FeatureKind = "pssm"
	FtKmer   FeatureKind = "kmer"
)

// featureSpec says where a kind lives in Dataset.ProteinFt and whether its
// rows are per-residue (and so bounded by the max sequence lengths).
type featureSpec struct {
	key      string
	channels int
}

var featureRegistry = map[FeatureKind]featureSpec{
	FtOneHot: {key: "one_hot", channels: 20},
	FtPssm:   {key: "pssm", channels: 20},
	FtKmer:   {key: "kmer_whole", channels: 0},
}

// FeatureKinds lists the recognized kinds.
func FeatureKinds() []FeatureKind {
	return []FeatureKind{FtOneHot, FtPssm, FtKmer}
}

func featureKey(role string, kind FeatureKind) string {
	return role + "_" + featureRegistry[kind].key
}

// gatherPairs returns the pairNum x width block of t picked by idx.
func gatherPairs(t *Tensor, idx []int, name string) (*mat.Dense, error) {
	w := t.Width()
	if w == 0 {
		return nil, fmt.Errorf("%w: %s has zero width", ErrDataset, name)
	}
	block := mat.NewDense(len(idx), w, nil)
	for i, r := range idx {
		if r < 0 || r >= t.Rows() {
			return nil, fmt.Errorf("%w: %s row %d out of range [0,%d) at pair %d", ErrDataset, name, r, t.Rows(), i)
		}
		block.SetRow(i, t.Row(r))
	}
	return block, nil
}

// lookupKind builds the antibody|virus block of one kind.
func lookupKind(kind FeatureKind, d *Dataset) (*mat.Dense, error) {
	if _, exist := featureRegistry[kind]; !exist {
		return nil, fmt.Errorf("%w: unknown feature kind %q", ErrConfiguration, kind)
	}
	abKey := featureKey("antibody", kind)
	viKey := featureKey("virus", kind)
	abFt, exist := d.ProteinFt[abKey]
	if !exist {
		return nil, fmt.Errorf("%w: missing %s", ErrDataset, abKey)
	}
	viFt, exist := d.ProteinFt[viKey]
	if !exist {
		return nil, fmt.Errorf("%w: missing %s", ErrDataset, viKey)
	}
	abBlock, err := gatherPairs(abFt, d.AntibodyIndexInPair, abKey)
	if err != nil {
		return nil, err
	}
	viBlock, err := gatherPairs(viFt, d.VirusIndexInPair, viKey)
	if err != nil {
		return nil, err
	}
	return ColStackMatrix(abBlock, viBlock), nil
}

// AssembleFeatures concatenates, in the given order, the antibody and virus
// blocks of each kind into one pairNum-row matrix. Column layout follows the
// order of kinds, antibody columns first within each kind.
func AssembleFeatures(kinds []FeatureKind, d *Dataset) (*mat.Dense, error) {
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: no feature kind selected", ErrConfiguration)
	}
	if d.PairNum() == 0 {
		return nil, fmt.Errorf("%w: no pairs", ErrDataset)
	}
	if len(d.AntibodyIndexInPair) != d.PairNum() || len(d.VirusIndexInPair) != d.PairNum() {
		return nil, fmt.Errorf("%w: pair index arrays do not match %d labels", ErrDataset, d.PairNum())
	}
	var ftMat *mat.Dense
	for _, kind := range kinds {
		block, err := lookupKind(kind, d)
		if err != nil {
			return nil, err
		}
		r, c := block.Dims()
		log.Printf("feature %s: (%d, %d)", kind, r, c)
		if ftMat == nil {
			ftMat = block
		} else {
			ftMat = ColStackMatrix(ftMat, block)
		}
	}
	return ftMat, nil
}

// ParseFeatureKinds converts config names, rejecting unknown ones.
func ParseFeatureKinds(names []string) ([]FeatureKind, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: select_ft is empty", ErrConfiguration)
	}
	kinds := make([]FeatureKind, 0, len(names))
	for _, name := range names {
		kind := FeatureKind(name)
		if _, exist := featureRegistry[kind]; !exist {
			return nil, fmt.Errorf("%w: unknown feature kind %q", ErrConfiguration, name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
