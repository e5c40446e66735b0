// Package config builds recipes from YAML definitions and a registry of
// operations and filters.
package config

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigMustBeSet  = errors.New("config must be set")
	ErrInvalidStep      = errors.New("step must name exactly one operation or filter")
	ErrUnknownOperation = errors.New("operation not registered")
	ErrUnknownFilter    = errors.New("filter not registered")
	ErrNoParams         = errors.New("step has no parameters")
)

// RecipeConfig is the root of a recipe definition.
//
//	name: cleanup
//	scratch_path: /Scratch
//	rebuild_concurrency: 4
//	parameters:
//	  Material: '"steel"'
//	actions:
//	  - name: substitute
//	    steps:
//	      - filter: meshes
//	      - operation: substitute_material
//	        params:
//	          material: '"wood"'
//	        bind:
//	          material: Material
type RecipeConfig struct {
	Name               string `yaml:"name"`
	ScratchPath        string `yaml:"scratch_path"`
	RebuildConcurrency int    `yaml:"rebuild_concurrency"`
	// Parameters maps parameter names to HCL expressions overriding their
	// canonical value once every binding is in place.
	Parameters map[string]string `yaml:"parameters"`
	Actions    []ActionConfig    `yaml:"actions"`
}

type ActionConfig struct {
	Name  string       `yaml:"name"`
	Steps []StepConfig `yaml:"steps"`
}

// StepConfig is one step. A plain string is the name of an operation.
type StepConfig struct {
	Name      string `yaml:"name"`
	Operation string `yaml:"operation"`
	Filter    string `yaml:"filter"`
	Enabled   *bool  `yaml:"enabled"`
	// Params maps property chains of the step parameters to HCL expressions.
	Params map[string]string `yaml:"params"`
	// Bind maps property chains of the step parameters to parameter names.
	Bind map[string]string `yaml:"bind"`
}

func (s *StepConfig) UnmarshalYAML(value *yaml.Node) error {
	var operation string
	if err := value.Decode(&operation); err == nil {
		s.Operation = operation

		return nil
	}

	type raw StepConfig

	return value.Decode((*raw)(s))
}

// IsEnabled reports whether the step runs. Steps are enabled unless stated
// otherwise.
func (s StepConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// StepName returns the configured name, or the operation or filter name.
func (s StepConfig) StepName() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Operation != "":
		return s.Operation
	default:
		return s.Filter
	}
}

// ParseRecipeConfig parses a YAML recipe definition.
func ParseRecipeConfig(data []byte) (*RecipeConfig, error) {
	var cfg RecipeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "unable to parse recipe config")
	}

	return &cfg, nil
}
