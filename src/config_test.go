package src

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty select_ft", func(c *Config) { c.SelectFt = nil }},
		{"unknown select_ft", func(c *Config) { c.SelectFt = []string{"pssm", "blosum"} }},
		{"split of two", func(c *Config) { c.HotDataSplit = []float64{0.9, 0.1} }},
		{"split not summing to one", func(c *Config) { c.HotDataSplit = []float64{0.5, 0.2, 0.2} }},
		{"negative share", func(c *Config) { c.HotDataSplit = []float64{1.1, -0.05, -0.05} }},
		{"NaN share", func(c *Config) { c.HotDataSplit = []float64{math.NaN(), 0.5, 0.5} }},
		{"empty train share", func(c *Config) { c.HotDataSplit = []float64{0, 0.5, 0.5} }},
		{"zero antibody length", func(c *Config) { c.MaxAntibodyLen = 0 }},
		{"zero C", func(c *Config) { c.SvmC = 0 }},
		{"empty label type", func(c *Config) { c.LabelType = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrConfiguration)
		})
	}
}

func TestParseFeatureKinds(t *testing.T) {
	kinds, err := ParseFeatureKinds([]string{"kmer", "pssm"})
	require.NoError(t, err)
	require.Equal(t, []FeatureKind{FtKmer, FtPssm}, kinds)

	_, err = ParseFeatureKinds(nil)
	require.ErrorIs(t, err, ErrConfiguration)
	_, err = ParseFeatureKinds([]string{"PSSM"})
	require.ErrorIs(t, err, ErrConfiguration)
}
