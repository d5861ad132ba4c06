package src

import (
	"fmt"
	"math"
)

// Config holds the options fixed at trainer construction. It is passed by
// value and never mutated once a pipeline starts.
type Config struct {
	Seed           int64     `mapstructure:"seed"`
	LabelType      string    `mapstructure:"label_type"`
	MaxAntibodyLen int       `mapstructure:"max_antibody_len"`
	MaxVirusLen    int       `mapstructure:"max_virus_len"`
	HotDataSplit   []float64 `mapstructure:"hot_data_split"`
	SelectFt       []string  `mapstructure:"select_ft"`
	SvmC           float64   `mapstructure:"svm_c"`
	SvmGamma       float64   `mapstructure:"svm_gamma"`
	SvmTol         float64   `mapstructure:"svm_tol"`
	SvmMaxIter     int       `mapstructure:"svm_max_iter"`
	DataDir        string    `mapstructure:"data_dir"`
	BaseDir        string    `mapstructure:"base_dir"`
	RunID          string    `mapstructure:"run_id"`
}

// DefaultConfig mirrors the baseline experiment: pssm features, C=32,
// gamma=2^-5 and a 90/5/5 split.
func DefaultConfig() Config {
	return Config{
		Seed:           0,
		LabelType:      "label_10",
		MaxAntibodyLen: 344,
		MaxVirusLen:    912,
		HotDataSplit:   []float64{0.9, 0.05, 0.05},
		SelectFt:       []string{"pssm"},
		SvmC:           32,
		SvmGamma:       0.03125,
		SvmTol:         1e-3,
		SvmMaxIter:     10000000,
		DataDir:        "data",
		BaseDir:        ".",
		RunID:          "baseline_svm_cls_trainer",
	}
}

// Validate checks everything that can be checked without a dataset.
func (c Config) Validate() error {
	if len(c.SelectFt) == 0 {
		return fmt.Errorf("%w: select_ft is empty", ErrConfiguration)
	}
	for _, ft := range c.SelectFt {
		if _, exist := featureRegistry[FeatureKind(ft)]; !exist {
			return fmt.Errorf("%w: unknown feature kind %q", ErrConfiguration, ft)
		}
	}
	if err := validateSplit(c.HotDataSplit); err != nil {
		return err
	}
	if c.MaxAntibodyLen <= 0 || c.MaxVirusLen <= 0 {
		return fmt.Errorf("%w: max lengths must be positive, got %d and %d", ErrConfiguration, c.MaxAntibodyLen, c.MaxVirusLen)
	}
	if !(c.SvmC > 0) {
		return fmt.Errorf("%w: svm_c must be positive, got %v", ErrConfiguration, c.SvmC)
	}
	if c.LabelType == "" {
		return fmt.Errorf("%w: label_type is empty", ErrConfiguration)
	}
	return nil
}

func validateSplit(split []float64) error {
	if len(split) != 3 {
		return fmt.Errorf("%w: hot_data_split needs 3 proportions, got %d", ErrConfiguration, len(split))
	}
	sum := 0.0
	for _, v := range split {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: hot_data_split value %v outside [0,1]", ErrConfiguration, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("%w: hot_data_split sums to %v", ErrConfiguration, sum)
	}
	if split[0] <= 0 {
		return fmt.Errorf("%w: hot_data_split train share must be positive", ErrConfiguration)
	}
	return nil
}
