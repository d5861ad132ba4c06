package src

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestTrainerFitPred(t *testing.T) {
	p := &toyProvider{tb: t}
	tr, err := NewTrainer(toyConfig(t), p)
	require.NoError(t, err)
	require.Equal(t, int32(1), p.calls.Load())

	r, c := tr.FeatureMatrix().Dims()
	require.Equal(t, 10, r)
	require.Equal(t, 7, c)

	require.NoError(t, tr.Fit())
	var out bytes.Buffer
	results, err := tr.Pred(&out)
	require.NoError(t, err)
	require.Len(t, results, 4)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, strings.Join(MetricNames, ", "), lines[0])
	for i, prefix := range []string{"train (", "seen valid (", "seen test (", "unseen test ("} {
		require.True(t, strings.HasPrefix(lines[i+1], prefix), lines[i+1])
	}

	require.Equal(t, PartTrain, results[0].Name)
	require.Equal(t, 1.0, results[0].Metrics.Accuracy)
	for _, res := range results {
		require.Len(t, res.Pred, len(res.Index))
		for _, v := range res.Pred {
			require.Contains(t, []float64{0, 1}, v)
		}
	}
	require.Equal(t, []int{8, 9}, results[3].Index)
}

func TestTrainerDeterministic(t *testing.T) {
	cfg := toyConfig(t)
	cfg.DataDir = toyDir(t)
	cfg.SelectFt = []string{"kmer"}
	// no unseen antibodies: train keeps 8 of 10 pairs and so both labels
	cfg.HotDataSplit = []float64{0.8, 0.2, 0}
	cfg.Seed = 11

	run := func() (*Trainer, []PartitionResult, string) {
		tr, err := NewTrainer(cfg, FileDataset{Dir: cfg.DataDir})
		require.NoError(t, err)
		require.NoError(t, tr.Fit())
		var out bytes.Buffer
		results, err := tr.Pred(&out)
		require.NoError(t, err)
		return tr, results, out.String()
	}
	first, firstRes, firstOut := run()
	second, secondRes, secondOut := run()

	require.True(t, mat.Equal(first.FeatureMatrix(), second.FeatureMatrix()))
	require.Equal(t, first.Dataset().TrainIndex, second.Dataset().TrainIndex)
	require.Equal(t, first.Dataset().ValidSeenIndex, second.Dataset().ValidSeenIndex)
	require.Equal(t, firstOut, secondOut)
	for i := range firstRes {
		require.Equal(t, firstRes[i].Index, secondRes[i].Index)
		require.Equal(t, firstRes[i].Pred, secondRes[i].Pred)
		require.Equal(t, firstRes[i].Metrics.String(), secondRes[i].Metrics.String())
	}
	require.Len(t, firstRes[0].Index, 8)
}

func TestTrainerDeterministicInMemory(t *testing.T) {
	cfg := toyConfig(t)
	var mats []mat.Matrix
	var preds [][]float64
	for i := 0; i < 2; i++ {
		tr, err := NewTrainer(cfg, &toyProvider{tb: t})
		require.NoError(t, err)
		require.NoError(t, tr.Fit())
		results, err := tr.Pred(&bytes.Buffer{})
		require.NoError(t, err)
		var all []float64
		for _, res := range results {
			all = append(all, res.Pred...)
		}
		mats = append(mats, tr.FeatureMatrix())
		preds = append(preds, all)
	}
	require.True(t, mat.Equal(mats[0], mats[1]))
	require.Equal(t, preds[0], preds[1])
}

func TestTrainerRejectsConfigBeforeDataset(t *testing.T) {
	cfg := toyConfig(t)
	cfg.SelectFt = nil
	p := &toyProvider{tb: t}
	_, err := NewTrainer(cfg, p)
	require.ErrorIs(t, err, ErrConfiguration)
	var se *StageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "config", se.Stage)
	require.Equal(t, int32(0), p.calls.Load(), "provider must not be called")
}

func TestTrainerPredBeforeFit(t *testing.T) {
	tr, err := NewTrainer(toyConfig(t), &toyProvider{tb: t})
	require.NoError(t, err)
	var out bytes.Buffer
	results, err := tr.Pred(&out)
	require.ErrorIs(t, err, ErrNotFitted)
	require.Empty(t, results)
	var se *StageError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "predict train", se.Stage)
}

func TestTrainerSaveLoad(t *testing.T) {
	cfg := toyConfig(t)
	tr, err := NewTrainer(cfg, &toyProvider{tb: t})
	require.NoError(t, err)
	require.ErrorIs(t, tr.LoadModel(), ErrPersistence)
	require.NoError(t, tr.Fit())
	require.NoError(t, tr.SaveModel())
	require.Equal(t, ModelPath(cfg.BaseDir, cfg.RunID, cfg.Seed, cfg.LabelType), tr.SavePath())

	var want, got bytes.Buffer
	_, err = tr.Pred(&want)
	require.NoError(t, err)

	loaded, err := NewTrainer(cfg, &toyProvider{tb: t})
	require.NoError(t, err)
	require.NoError(t, loaded.LoadModel())
	_, err = loaded.Pred(&got)
	require.NoError(t, err)
	require.Equal(t, want.String(), got.String())
}

func TestTrainerCustomEvaluator(t *testing.T) {
	calls := 0
	eval := func(pred, label []float64) Metrics {
		calls++
		return Metrics{Accuracy: float64(len(pred))}
	}
	tr, err := NewTrainer(toyConfig(t), &toyProvider{tb: t}, WithEvaluator(eval))
	require.NoError(t, err)
	require.NoError(t, tr.Fit())
	results, err := tr.Pred(&bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, 4, calls)
	require.Equal(t, 6.0, results[0].Metrics.Accuracy)
	require.Equal(t, 2.0, results[3].Metrics.Accuracy)
}

func TestTrainerLabelsAt(t *testing.T) {
	tr, err := NewTrainer(toyConfig(t), &toyProvider{tb: t})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 1}, tr.LabelsAt([]int{3, 4, 9}))
	require.Empty(t, tr.LabelsAt(nil))
}
