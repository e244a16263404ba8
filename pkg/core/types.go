package core

import "github.com/arnavsurve/dropreport/pkg/types"

// Flow is the declarative, ordered list of HTTP steps loaded from the flow file.
type Flow struct {
	Name        string         `yaml:"name" validate:"required"`
	Description string         `yaml:"description,omitempty"`
	Steps       []StepTemplate `yaml:"steps" validate:"required,min=1,dive"`
}

type StepTemplate = types.StepTemplate

type ResolvedStep = types.ResolvedStep

type StepResult = types.StepResult

type Logger = types.Logger
