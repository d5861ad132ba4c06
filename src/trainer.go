package src

import (
	"fmt"
	"io"
	"log"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// PartitionResult is the outcome of predicting one partition.
type PartitionResult struct {
	Name    string
	Label   string
	Index   []int
	Pred    []float64
	Metrics Metrics
}

// Trainer runs one seed of the experiment: seed, dataset, feature matrix,
// fit on train, predict and evaluate the four partitions.
type Trainer struct {
	cfg       Config
	dataset   *Dataset
	ftMat     *mat.Dense
	model     *SvmModel
	evaluate  EvaluateFunc
	savePath  string
	trainInfo string
}

// TrainerOption customizes a Trainer.
type TrainerOption func(*Trainer)

// WithEvaluator replaces EvaluateClassification.
func WithEvaluator(fn EvaluateFunc) TrainerOption {
	return func(t *Trainer) { t.evaluate = fn }
}

// NewTrainer validates cfg before the provider is asked for anything, then
// builds the dataset and the feature matrix once.
func NewTrainer(cfg Config, provider DatasetProvider, opts ...TrainerOption) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, stageErr("config", err)
	}
	kinds, err := ParseFeatureKinds(cfg.SelectFt)
	if err != nil {
		return nil, stageErr("config", err)
	}
	rng := SetupSeed(cfg.Seed)

	t := &Trainer{
		cfg:       cfg,
		evaluate:  EvaluateClassification,
		savePath:  ModelPath(cfg.BaseDir, cfg.RunID, cfg.Seed, cfg.LabelType),
		trainInfo: fmt.Sprintf("%s_seed=%d_label_type=%s", cfg.RunID, cfg.Seed, cfg.LabelType),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.dataset, err = provider.Build(cfg, rng)
	if err != nil {
		return nil, stageErr("dataset", err)
	}
	if err := t.dataset.Check(); err != nil {
		return nil, stageErr("dataset", err)
	}
	t.ftMat, err = AssembleFeatures(kinds, t.dataset)
	if err != nil {
		return nil, stageErr("feature", err)
	}
	r, c := t.ftMat.Dims()
	log.Printf("%s: feature matrix (%d, %d)", t.trainInfo, r, c)
	t.model = NewSvmModel(cfg.SvmC, cfg.SvmGamma, WithTol(cfg.SvmTol), WithMaxIter(cfg.SvmMaxIter))
	return t, nil
}

// FeatureMatrix is the assembled matrix. Callers must not modify it.
func (t *Trainer) FeatureMatrix() mat.Matrix {
	return t.ftMat
}

func (t *Trainer) Dataset() *Dataset {
	return t.dataset
}

func (t *Trainer) Model() *SvmModel {
	return t.model
}

// SavePath is where SaveModel and LoadModel operate.
func (t *Trainer) SavePath() string {
	return t.savePath
}

// Fit trains the model on the train partition.
func (t *Trainer) Fit() error {
	log.Printf("%s: fit on %d pairs", t.trainInfo, len(t.dataset.TrainIndex))
	return stageErr("fit", t.model.Fit(t.ftMat, t.dataset.Labels, t.dataset.TrainIndex))
}

// Pred predicts and evaluates train, seen valid, seen test and unseen test
// in that order, writing the metric header and one line per partition to w.
// It stops at the first failure; lines already written stay.
func (t *Trainer) Pred(w io.Writer) ([]PartitionResult, error) {
	results := make([]PartitionResult, 0, len(partitionOrder))
	fmt.Fprintln(w, strings.Join(MetricNames, ", "))
	for _, name := range partitionOrder {
		idx := t.dataset.Partition(name)
		pred, err := t.model.Predict(t.ftMat, idx)
		if err != nil {
			return results, stageErr("predict "+name, err)
		}
		label := t.LabelsAt(idx)
		res := PartitionResult{
			Name:    name,
			Label:   partitionLabel[name],
			Index:   idx,
			Pred:    pred,
			Metrics: t.evaluate(pred, label),
		}
		fmt.Fprintf(w, "%s %s\n", res.Label, res.Metrics)
		results = append(results, res)
	}
	return results, nil
}

// SaveModel persists the fitted model at SavePath.
func (t *Trainer) SaveModel() error {
	return stageErr("save", t.model.Save(t.savePath))
}

// LoadModel replaces the model with the one at SavePath.
func (t *Trainer) LoadModel() error {
	return stageErr("load", t.model.Load(t.savePath))
}

// LabelsAt returns the labels of the given pair rows.
func (t *Trainer) LabelsAt(idx []int) []float64 {
	label := make([]float64, len(idx))
	for i, r := range idx {
		label[i] = t.dataset.Labels[r]
	}
	return label
}
