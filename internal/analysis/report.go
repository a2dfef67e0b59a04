package analysis

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/cmmoran/cxxbind/internal/model"
)

// Report is the outcome of one analysis pass. Every list is sorted so that
// two runs over the same headers produce identical reports.
type Report struct {
	Decisions      []Decision   `json:"decisions" yaml:"decisions"`
	Skipped        []Skip       `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Diagnostics    []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	DependentTypes []Dependent  `json:"dependent_types,omitempty" yaml:"dependent_types,omitempty"`
	Summary        Summary      `json:"summary" yaml:"summary"`
}

// Decision records how one surfaced class is represented.
type Decision struct {
	Name           string      `json:"name" yaml:"name"`
	USR            string      `json:"usr" yaml:"usr"`
	Location       string      `json:"location,omitempty" yaml:"location,omitempty"`
	Kind           model.Kind  `json:"kind" yaml:"kind"`
	Target         string      `json:"target" yaml:"target"`
	Trait          string      `json:"trait,omitempty" yaml:"trait,omitempty"`
	Template       string      `json:"template,omitempty" yaml:"template,omitempty"`
	Props          []string    `json:"props,omitempty" yaml:"props,omitempty"`
	Bases          []string    `json:"bases,omitempty" yaml:"bases,omitempty"`
	AllBases       []string    `json:"all_bases,omitempty" yaml:"all_bases,omitempty"`
	Fields         []Field     `json:"fields,omitempty" yaml:"fields,omitempty"`
	Methods        []Method    `json:"methods,omitempty" yaml:"methods,omitempty"`
	Excluded       []string    `json:"excluded_methods,omitempty" yaml:"excluded_methods,omitempty"`
	Consts         []Const     `json:"consts,omitempty" yaml:"consts,omitempty"`
	DependentTypes []Dependent `json:"dependent_types,omitempty" yaml:"dependent_types,omitempty"`
}

type Field struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Copy     bool   `json:"copy,omitempty" yaml:"copy,omitempty"`
	Excluded bool   `json:"excluded,omitempty" yaml:"excluded,omitempty"`
}

// Method is a function of the generated surface: a member function, a bound
// generic method or a field accessor.
type Method struct {
	Name     string         `json:"name" yaml:"name"`
	Native   string         `json:"native" yaml:"native"`
	Kind     model.FuncKind `json:"kind" yaml:"kind"`
	Static   bool           `json:"static,omitempty" yaml:"static,omitempty"`
	Const    bool           `json:"const,omitempty" yaml:"const,omitempty"`
	Abstract bool           `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Clone    bool           `json:"clone,omitempty" yaml:"clone,omitempty"`
	Args     []Param        `json:"args,omitempty" yaml:"args,omitempty"`
	Returns  string         `json:"returns,omitempty" yaml:"returns,omitempty"`
}

type Param struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type Const struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

type Dependent struct {
	Kind model.DependentKind `json:"kind" yaml:"kind"`
	Name string              `json:"name" yaml:"name"`
}

// Skip is a class left out of the surface.
type Skip struct {
	Name   string `json:"name" yaml:"name"`
	Reason string `json:"reason" yaml:"reason"`
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

type DiagnosticCode string

const (
	// DiagDroppedGeneric is a method template without configured
	// specializations.
	DiagDroppedGeneric DiagnosticCode = "dropped_generic"
	// DiagUnlistedSpecialization is a class template specialization that is
	// not in the implemented generics table.
	DiagUnlistedSpecialization DiagnosticCode = "unlisted_specialization"
	// DiagForwardOnly is a class that is declared but never defined.
	DiagForwardOnly DiagnosticCode = "forward_only"
)

// Diagnostic is a non-fatal finding. It never stops the pass.
type Diagnostic struct {
	Severity Severity       `json:"severity" yaml:"severity"`
	Code     DiagnosticCode `json:"code" yaml:"code"`
	Class    string         `json:"class" yaml:"class"`
	Subject  string         `json:"subject,omitempty" yaml:"subject,omitempty"`
	Message  string         `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
}

type Summary struct {
	Classes     int `json:"classes" yaml:"classes"`
	Simple      int `json:"simple" yaml:"simple"`
	Boxed       int `json:"boxed" yaml:"boxed"`
	System      int `json:"system" yaml:"system"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	Diagnostics int `json:"diagnostics" yaml:"diagnostics"`
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s surfaced (%d simple, %d boxed, %d system), %d skipped",
		count(s.Classes, "class"), s.Simple, s.Boxed, s.System, s.Skipped)
	if s.Diagnostics > 0 {
		fmt.Fprintf(&b, ", %s", count(s.Diagnostics, "diagnostic"))
	}
	return b.String()
}

func count(n int, noun string) string {
	if n != 1 {
		noun = inflection.Plural(noun)
	}
	return fmt.Sprintf("%d %s", n, noun)
}
