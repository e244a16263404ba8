package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func LoadFlowFromFile(path string) (*Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading flow file %q: %w", path, err)
	}
	return ParseFlow(data)
}

func ParseFlow(data []byte) (*Flow, error) {
	var flow Flow
	if err := yaml.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("parsing flow YAML: %w", err)
	}

	if err := ValidateFlowStructure(&flow); err != nil {
		return nil, fmt.Errorf("invalid flow: %w", err)
	}

	return &flow, nil
}
