package director

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WritePlan writes a plan to a YAML file, creating parent directories
func WritePlan(plan *Plan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlan reads a plan from a YAML file
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}

	return &plan, nil
}
