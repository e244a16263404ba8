package core

import (
	"errors"
	"fmt"
)

// ErrTokenNotFound is logged, never returned, when a response carries none of
// the recognized token fields.
var ErrTokenNotFound = errors.New("no recognized token field in response")

// ConfigError is raised before any network call when required runtime
// configuration is missing or invalid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Reason)
}

// StepError ties a fatal failure to the step that produced it.
type StepError struct {
	Step  string
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ArtifactPersistError reports a delimited-text response that could not be
// written to disk.
type ArtifactPersistError struct {
	Step string
	Path string
	Err  error
}

func (e *ArtifactPersistError) Error() string {
	return fmt.Sprintf("writing artifact %q for step %q: %v", e.Path, e.Step, e.Err)
}

func (e *ArtifactPersistError) Unwrap() error {
	return e.Err
}
