package src

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

const (
	modelFormat  = "abvsvm/svc"
	modelVersion = 1
)

type modelHeader struct {
	Format  string
	Version int
}

// SvmModel owns one SVC. Fit and Load are the only ways its state changes.
type SvmModel struct {
	clf   *SVC
	gamma float64
}

// ModelOption adjusts solver settings of a new SvmModel.
type ModelOption func(*SVC)

// WithTol sets the SMO stopping tolerance.
func WithTol(tol float64) ModelOption {
	return func(s *SVC) {
		if tol > 0 {
			s.Tol = tol
		}
	}
}

// WithMaxIter caps SMO iterations; <= 0 means no cap.
func WithMaxIter(n int) ModelOption {
	return func(s *SVC) { s.MaxIter = n }
}

// WithCacheSize sets the kernel row cache in MB; 0 disables it.
func WithCacheSize(mb int) ModelOption {
	return func(s *SVC) { s.CacheSize = mb }
}

func NewSvmModel(c, gamma float64, opts ...ModelOption) *SvmModel {
	clf := NewSVC(c, gamma)
	for _, opt := range opts {
		opt(clf)
	}
	return &SvmModel{clf: clf, gamma: gamma}
}

// Fit trains on rows idx of X and y. A second call discards the first fit.
func (m *SvmModel) Fit(X *mat.Dense, y []float64, idx []int) error {
	if len(idx) == 0 {
		return fmt.Errorf("%w: empty training index", ErrDataset)
	}
	nRow, _ := X.Dims()
	for _, i := range idx {
		if i < 0 || i >= nRow || i >= len(y) {
			return fmt.Errorf("%w: training index %d out of range", ErrDataset, i)
		}
	}
	var tr Fold
	tr.SetXY(idx, X, y)
	clf := *m.clf
	clf.Machines, clf.Classes, clf.NFeature = nil, nil, 0
	clf.Gamma = m.gamma
	if err := clf.Fit(tr.X, tr.Y); err != nil {
		return err
	}
	m.clf = &clf
	return nil
}

// Predict returns one label per entry of idx, in the same order.
func (m *SvmModel) Predict(X *mat.Dense, idx []int) ([]float64, error) {
	if !m.clf.IsFitted() {
		return nil, ErrNotFitted
	}
	if len(idx) == 0 {
		return []float64{}, nil
	}
	nRow, _ := X.Dims()
	for _, i := range idx {
		if i < 0 || i >= nRow {
			return nil, fmt.Errorf("%w: index %d out of range", ErrDataset, i)
		}
	}
	return m.clf.Predict(SubsetRows(X, idx))
}

// Classes is the label alphabet seen in training.
func (m *SvmModel) Classes() []float64 {
	return m.clf.Classes
}

// Params returns C and the gamma in use (resolved after fit).
func (m *SvmModel) Params() (c, gamma float64) {
	return m.clf.C, m.clf.Gamma
}

// Save writes the whole classifier state to path, creating parent
// directories. The file appears only once fully written.
func (m *SvmModel) Save(path string) (err error) {
	if !m.clf.IsFitted() {
		return ErrNotFitted
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	enc := gob.NewEncoder(f)
	if err := enc.Encode(modelHeader{Format: modelFormat, Version: modelVersion}); err != nil {
		return fmt.Errorf("%w: encode header: %v", ErrPersistence, err)
	}
	if err := enc.Encode(m.clf); err != nil {
		return fmt.Errorf("%w: encode model: %v", ErrPersistence, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	log.Print("save svm model ", path)
	return nil
}

// Load replaces the classifier with the one stored at path. On error the
// current state is kept.
func (m *SvmModel) Load(path string) error {
	log.Print("loading ", path)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: no model at %s", ErrPersistence, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer f.Close()
	dec := gob.NewDecoder(f)
	var h modelHeader
	if err := dec.Decode(&h); err != nil {
		return fmt.Errorf("%w: %s: unreadable header: %v", ErrPersistence, path, err)
	}
	if h.Format != modelFormat || h.Version != modelVersion {
		return fmt.Errorf("%w: %s holds %s v%d, want %s v%d", ErrPersistence, path, h.Format, h.Version, modelFormat, modelVersion)
	}
	clf := new(SVC)
	if err := dec.Decode(clf); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPersistence, path, err)
	}
	if !clf.IsFitted() {
		return fmt.Errorf("%w: %s holds an unfitted model", ErrPersistence, path)
	}
	m.clf = clf
	return nil
}

// ModelPath is the save location of one run; distinct seeds or label types
// never share a path.
func ModelPath(baseDir, runID string, seed int64, labelType string) string {
	name := fmt.Sprintf("%s_seed=%d_label_type=%s_model.pkl", runID, seed, labelType)
	return filepath.Join(baseDir, "save_model_param_pred", name)
}
