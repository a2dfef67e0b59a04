// Package render writes analysis reports as YAML, JSON or a Go source table.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cmmoran/cxxbind/internal/analysis"
)

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatGo   = "go"
)

type settings struct {
	pkgPath string
	pkgName string
}

type Option func(*settings)

// WithPackage sets the import path and name of a generated Go table.
func WithPackage(path, name string) Option {
	return func(s *settings) {
		s.pkgPath = path
		s.pkgName = name
	}
}

// Write renders r to w in format.
func Write(w io.Writer, r *analysis.Report, format string, opts ...Option) error {
	s := settings{pkgName: "bindings"}
	for _, fn := range opts {
		fn(&s)
	}
	switch strings.ToLower(format) {
	case FormatYAML, "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		return nil
	case FormatGo:
		if err := GoTable(r, s.pkgPath, s.pkgName).Render(w); err != nil {
			return fmt.Errorf("render go table: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
