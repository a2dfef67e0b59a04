package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Settings is the curated, per-library override file: what the generator
// must never surface, what it must treat specially, and how generic methods
// are instantiated.
type Settings struct {
	ExcludePatterns     []string                    `yaml:"exclude" toml:"exclude"`
	IgnorePatterns      []string                    `yaml:"ignore" toml:"ignore"`
	SystemTypes         []string                    `yaml:"system_types" toml:"system_types"`
	ImplementedGenerics []string                    `yaml:"implemented_generics" toml:"implemented_generics"`
	FuncSpecializations map[string][]Specialization `yaml:"func_specialize" toml:"func_specialize"`
	Exports             map[string]ExportConfig     `yaml:"exports" toml:"exports"`
	ExportMacros        []string                    `yaml:"export_macros" toml:"export_macros"`
}

// LoadSettings reads a settings file. ".toml" files are decoded as TOML,
// everything else as YAML.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var s Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &s); err != nil {
			return nil, fmt.Errorf("decode settings %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("unmarshal settings %s: %w", path, err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks that every pattern compiles.
func (s *Settings) Validate() error {
	if _, err := CompilePatterns(s.ExcludePatterns); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}
	if _, err := CompilePatterns(s.IgnorePatterns); err != nil {
		return fmt.Errorf("ignore: %w", err)
	}
	return nil
}

// Apply merges s into o. Lists are appended, map entries in s win.
func (o *Options) Apply(s *Settings) {
	if s == nil {
		return
	}
	o.ExcludePatterns = append(o.ExcludePatterns, s.ExcludePatterns...)
	o.IgnorePatterns = append(o.IgnorePatterns, s.IgnorePatterns...)
	o.SystemTypes = append(o.SystemTypes, s.SystemTypes...)
	o.ImplementedGenerics = append(o.ImplementedGenerics, s.ImplementedGenerics...)
	o.ExportMacros = append(o.ExportMacros, s.ExportMacros...)
	for name, specs := range s.FuncSpecializations {
		WithFuncSpecialization(name, specs...)(o)
	}
	for name, cfg := range s.Exports {
		o.addExport(name, cfg)
	}
}
