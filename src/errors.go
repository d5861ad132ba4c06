package src

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match with errors.Is; context is added by wrapping
// with fmt.Errorf("...: %w", ErrX).
var (
	// ErrConfiguration marks an unrecognized feature kind, an empty feature
	// selection, malformed split proportions or invalid hyperparameters.
	ErrConfiguration = errors.New("abvsvm: configuration error")

	// ErrDataset marks malformed or missing source data.
	ErrDataset = errors.New("abvsvm: dataset error")

	// ErrNotFitted is returned by Predict before Fit.
	ErrNotFitted = errors.New("abvsvm: model not fitted")

	// ErrPersistence marks a missing or incompatible model file.
	ErrPersistence = errors.New("abvsvm: persistence error")
)

// StageError records which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
