package parser

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// ExportConfig is a manual override of a class representation.
type ExportConfig struct {
	Simple bool `json:"simple" yaml:"simple" toml:"simple" mapstructure:"simple"`
}

// Specialization binds the template parameters of a generic method to
// concrete type spellings, e.g. {"T": "int"}.
type Specialization map[string]string

// Options control header parsing and class analysis.
//
// InDir               – directory to scan for headers
// OutDir              – output directory
// OutFile             – output filename; the extension selects the format unless Format is set
// Format              – yaml, json or go
// Extensions          – header file extensions to parse
// SystemIncludeDirs   – headers under these directories are system headers
// ExportMacros        – macros blanked out before parsing, e.g. CV_EXPORTS_W
// ExcludePatterns     – regular expressions over fully qualified names; matches are never surfaced
// IgnorePatterns      – regular expressions over fully qualified names; matches are skipped silently
// SystemTypes         – types with an idiomatic target equivalent, added to the built-in table
// ImplementedGenerics – template specializations that are surfaced
// FuncSpecializations – generic method identifier → concrete specializations
// Exports             – manual simple/boxed overrides by fully qualified name
// Workers             – analysis parallelism, 0 means GOMAXPROCS
// MaxBaseDepth        – bound on inheritance recursion
type Options struct {
	InDir               string                      `json:"in_dir,omitempty" yaml:"in_dir,omitempty" toml:"in_dir,omitempty" mapstructure:"in_dir,omitempty"`
	OutDir              string                      `json:"out_dir,omitempty" yaml:"out_dir,omitempty" toml:"out_dir,omitempty" mapstructure:"out_dir,omitempty"`
	OutFile             string                      `json:"out_file,omitempty" yaml:"out_file,omitempty" toml:"out_file,omitempty" mapstructure:"out_file,omitempty"`
	Format              string                      `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty" mapstructure:"format,omitempty"`
	Extensions          []string                    `json:"extensions,omitempty" yaml:"extensions,omitempty" toml:"extensions,omitempty" mapstructure:"extensions,omitempty"`
	SystemIncludeDirs   []string                    `json:"system_include_dirs,omitempty" yaml:"system_include_dirs,omitempty" toml:"system_include_dirs,omitempty" mapstructure:"system_include_dirs,omitempty"`
	ExportMacros        []string                    `json:"export_macros,omitempty" yaml:"export_macros,omitempty" toml:"export_macros,omitempty" mapstructure:"export_macros,omitempty"`
	ExcludePatterns     []string                    `json:"exclude_patterns,omitempty" yaml:"exclude_patterns,omitempty" toml:"exclude_patterns,omitempty" mapstructure:"exclude_patterns,omitempty"`
	IgnorePatterns      []string                    `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty" toml:"ignore_patterns,omitempty" mapstructure:"ignore_patterns,omitempty"`
	SystemTypes         []string                    `json:"system_types,omitempty" yaml:"system_types,omitempty" toml:"system_types,omitempty" mapstructure:"system_types,omitempty"`
	ImplementedGenerics []string                    `json:"implemented_generics,omitempty" yaml:"implemented_generics,omitempty" toml:"implemented_generics,omitempty" mapstructure:"implemented_generics,omitempty"`
	FuncSpecializations map[string][]Specialization `json:"func_specializations,omitempty" yaml:"func_specializations,omitempty" toml:"func_specializations,omitempty" mapstructure:"func_specializations,omitempty"`
	Exports             map[string]ExportConfig     `json:"exports,omitempty" yaml:"exports,omitempty" toml:"exports,omitempty" mapstructure:"exports,omitempty"`
	Workers             int                         `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty" mapstructure:"workers,omitempty"`
	MaxBaseDepth        int                         `json:"max_base_depth,omitempty" yaml:"max_base_depth,omitempty" toml:"max_base_depth,omitempty" mapstructure:"max_base_depth,omitempty"`
}

// DefaultSystemTypes have a canonical representation in the target language.
var DefaultSystemTypes = []string{
	"std::string",
	"std::vector",
	"std::pair",
	"std::tuple",
	"std::shared_ptr",
	"std::unique_ptr",
	"cv::String",
}

// DefaultExportMacros are the OpenCV visibility macros that confuse a plain
// C++ grammar.
var DefaultExportMacros = []string{
	"CV_EXPORTS_W_SIMPLE",
	"CV_EXPORTS_W_MAP",
	"CV_EXPORTS_AS",
	"CV_EXPORTS_W",
	"CV_EXPORTS",
	"CV_WRAP",
	"CV_PROP_RW",
	"CV_PROP",
	"CV_OUT",
	"CV_IN_OUT",
	"CV_FINAL",
}

const DefaultMaxBaseDepth = 64

func NewOptions() *Options {
	return &Options{
		InDir:        ".",
		OutDir:       "bindings",
		OutFile:      "classes.yaml",
		Extensions:   []string{".hpp", ".h", ".hh", ".hxx"},
		ExportMacros: append([]string(nil), DefaultExportMacros...),
		MaxBaseDepth: DefaultMaxBaseDepth,
	}
}

// Normalize fills defaults and folds command line overrides of the form
// "cv::Point=simple" or "cv::Mat=boxed" into Exports.
func (o *Options) Normalize(exportOverrides ...string) {
	for _, s := range exportOverrides {
		name, kind, ok := strings.Cut(s, "=")
		if !ok {
			panic("invalid export override, want name=simple|boxed: " + s)
		}
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case "simple":
			o.addExport(strings.TrimSpace(name), ExportConfig{Simple: true})
		case "boxed":
			o.addExport(strings.TrimSpace(name), ExportConfig{Simple: false})
		default:
			panic(fmt.Sprintf("invalid export override kind %q for %s", kind, name))
		}
	}
	if len(o.InDir) == 0 {
		o.InDir = "."
	}
	if strings.Contains(o.InDir, ".") {
		o.InDir, _ = filepath.Abs(o.InDir)
	}
	if len(o.OutDir) == 0 {
		o.OutDir = "bindings"
	}
	if strings.Contains(o.OutDir, ".") {
		o.OutDir, _ = filepath.Abs(o.OutDir)
	}
	if len(o.OutFile) == 0 {
		o.OutFile = "classes.yaml"
	}
	if len(o.Format) == 0 {
		o.Format = FormatFromFile(o.OutFile)
	}
	if len(o.Extensions) == 0 {
		o.Extensions = []string{".hpp", ".h", ".hh", ".hxx"}
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MaxBaseDepth <= 0 {
		o.MaxBaseDepth = DefaultMaxBaseDepth
	}
}

func (o *Options) addExport(name string, cfg ExportConfig) {
	if o.Exports == nil {
		o.Exports = make(map[string]ExportConfig)
	}
	o.Exports[name] = cfg
}

// FormatFromFile derives the report format from a file name.
func FormatFromFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "json"
	case ".go":
		return "go"
	default:
		return "yaml"
	}
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithInDir(d string) Option     { return func(o *Options) { o.InDir = d } }
func WithOutDir(d string) Option    { return func(o *Options) { o.OutDir = d } }
func WithOutFile(f string) Option   { return func(o *Options) { o.OutFile = f } }
func WithFormat(f string) Option    { return func(o *Options) { o.Format = f } }
func WithWorkers(n int) Option      { return func(o *Options) { o.Workers = n } }
func WithMaxBaseDepth(n int) Option { return func(o *Options) { o.MaxBaseDepth = n } }
func WithExtensions(exts ...string) Option {
	return func(o *Options) { o.Extensions = append(o.Extensions, exts...) }
}
func WithSystemIncludeDirs(dirs ...string) Option {
	return func(o *Options) { o.SystemIncludeDirs = append(o.SystemIncludeDirs, dirs...) }
}
func WithExportMacros(macros ...string) Option {
	return func(o *Options) { o.ExportMacros = append(o.ExportMacros, macros...) }
}
func WithExcludePatterns(patterns ...string) Option {
	return func(o *Options) { o.ExcludePatterns = append(o.ExcludePatterns, patterns...) }
}
func WithIgnorePatterns(patterns ...string) Option {
	return func(o *Options) { o.IgnorePatterns = append(o.IgnorePatterns, patterns...) }
}
func WithSystemTypes(names ...string) Option {
	return func(o *Options) {
		for _, n := range names {
			o.SystemTypes = append(o.SystemTypes, strings.TrimSpace(n))
		}
	}
}
func WithImplementedGenerics(names ...string) Option {
	return func(o *Options) {
		for _, n := range names {
			o.ImplementedGenerics = append(o.ImplementedGenerics, strings.TrimSpace(n))
		}
	}
}
func WithFuncSpecialization(identifier string, specs ...Specialization) Option {
	return func(o *Options) {
		if o.FuncSpecializations == nil {
			o.FuncSpecializations = make(map[string][]Specialization)
		}
		o.FuncSpecializations[identifier] = append(o.FuncSpecializations[identifier], specs...)
	}
}
func WithExport(name string, simple bool) Option {
	return func(o *Options) { o.addExport(name, ExportConfig{Simple: simple}) }
}
