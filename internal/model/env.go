package model

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmmoran/cxxbind/internal/entity"
	"github.com/cmmoran/cxxbind/pkg/parser"
)

// TypeResolver turns a type spelling into a type, as seen from scope. It is
// used to bind the template parameters of specialized generic methods.
type TypeResolver interface {
	ResolveSpelling(scope, spelling string) (entity.Type, bool)
}

// Env is the shared, read-only analysis environment: curated overrides, the
// exclusion policy, the system type table, the descendant index and the
// class-kind hints. It is built once per program by NewEnv and never mutated
// afterwards, so it may be shared by concurrent analyses.
type Env struct {
	exclude   *parser.NameFilter
	ignore    *parser.NameFilter
	system    parser.NameSet
	generics  parser.NameSet
	funcSpecs map[string][]parser.Specialization
	exports   map[string]parser.ExportConfig
	maxDepth  int

	descendants map[string]struct{} // USR of every class some other class derives from
	kinds       map[string]Kind     // class-kind hints by USR

	resolver TypeResolver
	logger   *slog.Logger
}

type EnvOption func(*Env)

func WithTypeResolver(r TypeResolver) EnvOption { return func(e *Env) { e.resolver = r } }
func WithLogger(l *slog.Logger) EnvOption       { return func(e *Env) { e.logger = l } }

// NewEnv builds the environment for a whole program. classes must contain
// every record declaration of the program: the descendant index has to
// reflect the complete inheritance graph before any class is classified.
func NewEnv(opts *parser.Options, classes []entity.Entity, envOpts ...EnvOption) (*Env, error) {
	if opts == nil {
		opts = parser.NewOptions()
	}
	exclude, err := parser.CompilePatterns(opts.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("exclude patterns: %w", err)
	}
	ignore, err := parser.CompilePatterns(opts.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("ignore patterns: %w", err)
	}

	e := &Env{
		exclude:     exclude,
		ignore:      ignore,
		system:      parser.NewNameSet(parser.DefaultSystemTypes, opts.SystemTypes),
		generics:    parser.NewNameSet(opts.ImplementedGenerics),
		funcSpecs:   make(map[string][]parser.Specialization, len(opts.FuncSpecializations)),
		exports:     make(map[string]parser.ExportConfig, len(opts.Exports)),
		maxDepth:    opts.MaxBaseDepth,
		descendants: make(map[string]struct{}),
		kinds:       make(map[string]Kind),
		logger:      slog.Default(),
	}
	if e.maxDepth <= 0 {
		e.maxDepth = parser.DefaultMaxBaseDepth
	}
	for name, specs := range opts.FuncSpecializations {
		e.funcSpecs[name] = append([]parser.Specialization(nil), specs...)
	}
	for name, cfg := range opts.Exports {
		e.exports[name] = cfg
	}
	for _, fn := range envOpts {
		fn(e)
	}

	e.indexDescendants(classes)
	if err := CatchInvariant(func() { e.computeKindHints(classes) }); err != nil {
		return nil, fmt.Errorf("class kind hints: %w", err)
	}

	e.logger.Debug("analysis environment ready",
		"classes", len(classes),
		"with_descendants", len(e.descendants),
		"kind_hints", len(e.kinds),
	)
	return e, nil
}

// indexDescendants marks every class that appears as a resolvable base.
// Specializations inherit the base list of their pattern.
func (e *Env) indexDescendants(classes []entity.Entity) {
	for _, c := range classes {
		src := c
		if tpl, ok := c.Template(); ok {
			src = tpl
		}
		for base := range src.Bases() {
			def, ok := base.Definition()
			if !ok {
				continue
			}
			e.descendants[def.USR()] = struct{}{}
		}
	}
}

// computeKindHints classifies every defining declaration by structure:
// value types are those DetectClassSimplicity accepts, everything else is
// boxed.
func (e *Env) computeKindHints(classes []entity.Entity) {
	for _, c := range classes {
		if _, done := e.kinds[c.USR()]; done {
			continue
		}
		cls := NewClass(c, e)
		if cls.IsTemplate() {
			continue
		}
		if !cls.IsTemplateSpecialization() && !cls.IsDefinition() {
			continue
		}
		if cls.DetectClassSimplicity() {
			e.kinds[c.USR()] = KindSimple
		} else {
			e.kinds[c.USR()] = KindBoxed
		}
	}
}

// ExportConfig returns the manual override for a fully qualified name.
func (e *Env) ExportConfig(fullName string) (parser.ExportConfig, bool) {
	cfg, ok := e.exports[fullName]
	return cfg, ok
}

// IsExcludedName reports an exclusion pattern match.
func (e *Env) IsExcludedName(fullName string) bool {
	return e.exclude.Match(fullName)
}

// IsIgnoredName reports an ignore pattern match.
func (e *Env) IsIgnoredName(fullName string) bool {
	return e.ignore.Match(fullName)
}

// IsSystemType reports membership in the system type table. Template
// instances match by their pattern name, std::vector<int> by std::vector.
func (e *Env) IsSystemType(fullName string) bool {
	if e.system.Contains(fullName) {
		return true
	}
	if i := strings.IndexByte(fullName, '<'); i > 0 {
		return e.system.Contains(strings.TrimSpace(fullName[:i]))
	}
	return false
}

// IsImplementedGeneric reports whether a template specialization is surfaced.
func (e *Env) IsImplementedGeneric(fullName string) bool {
	return e.generics.Contains(fullName)
}

// FuncSpecializations returns the configured specializations of a generic
// method identifier.
func (e *Env) FuncSpecializations(identifier string) ([]parser.Specialization, bool) {
	specs, ok := e.funcSpecs[identifier]
	return specs, ok && len(specs) > 0
}

// ClassKind returns the precomputed class-kind hint for a USR.
func (e *Env) ClassKind(usr string) (Kind, bool) {
	k, ok := e.kinds[usr]
	return k, ok
}

// HasDescendants reports whether any class derives from usr.
func (e *Env) HasDescendants(usr string) bool {
	_, ok := e.descendants[usr]
	return ok
}

// MaxBaseDepth bounds inheritance and type recursion.
func (e *Env) MaxBaseDepth() int {
	if e == nil {
		return parser.DefaultMaxBaseDepth
	}
	return e.maxDepth
}

func (e *Env) Logger() *slog.Logger {
	return e.logger
}

func (e *Env) resolveSpelling(scope, spelling string) (entity.Type, bool) {
	if e.resolver == nil {
		return nil, false
	}
	return e.resolver.ResolveSpelling(scope, spelling)
}
