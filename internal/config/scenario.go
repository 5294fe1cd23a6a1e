package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
)

// LoadScenario reads synthesis params from a YAML file. Keys missing from the
// file keep their default values; an empty path returns the defaults.
func LoadScenario(path string) (synth.Params, error) {
	params := synth.DefaultParams()
	if path == "" {
		return params, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return synth.Params{}, fmt.Errorf("error reading scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return synth.Params{}, fmt.Errorf("error parsing scenario %s: %w", path, err)
	}
	if err := params.Validate(); err != nil {
		return synth.Params{}, err
	}
	return params, nil
}
