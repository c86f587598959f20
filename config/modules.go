package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"NexoraPanel/models"

	yaml "go.yaml.in/yaml/v3"
)

type modulesFile struct {
	Modules []moduleEntry `yaml:"modules"`
}

type moduleEntry struct {
	models.ModuleConfig `yaml:",inline"`
	IntervalSeconds     int `yaml:"interval_seconds"`
}

// LoadModulesFile reads a YAML module list:
//
//	modules:
//	  - name: suite
//	    display_name: Nexora Suite
//	    page_id: "967550829768297"
//	    posts_file: posts/visa_posts.json
//	    interval_seconds: 1800
func LoadModulesFile(path string) ([]models.ModuleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file modulesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("yaml decode %s: %w", path, err)
	}
	if len(file.Modules) == 0 {
		return nil, fmt.Errorf("%s defines no modules", path)
	}

	modules := make([]models.ModuleConfig, 0, len(file.Modules))
	for _, entry := range file.Modules {
		m := entry.ModuleConfig
		if entry.IntervalSeconds > 0 {
			m.Interval = time.Duration(entry.IntervalSeconds) * time.Second
		}
		modules = append(modules, m)
	}
	return modules, nil
}
