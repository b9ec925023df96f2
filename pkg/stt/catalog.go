package stt

import (
	"fmt"
)

// ModelInfo describes one installed speech-recognition model, as reported
// by the model catalog collaborator. The catalog's on-disk layout and
// download machinery are outside the engine; only this summary crosses the
// boundary.
type ModelInfo struct {
	ID        string
	Name      string
	Languages []string
	SizeBytes int64
}

// ModelCatalog is the collaborator interface the engine consumes for local
// transcription models: list what is installed, which model the user has
// made active, and load one into memory.
type ModelCatalog interface {
	List() []ModelInfo
	Active() string
	Load(id string) (Model, error)
}

// NewLocalProviderFromCatalog loads the catalog's active model and wraps it
// in a LocalProvider. A catalog with no active model is a configuration
// error, not a crash.
func NewLocalProviderFromCatalog(catalog ModelCatalog, infer InferFunc) (*LocalProvider, error) {
	active := catalog.Active()
	if active == "" {
		return nil, fmt.Errorf("stt: model catalog reports no active model")
	}
	model, err := catalog.Load(active)
	if err != nil {
		return nil, fmt.Errorf("stt: loading model %s: %w", active, err)
	}
	return NewLocalProvider(model, infer), nil
}
