// Package ast holds an immutable, fully materialized C++ declaration graph.
// It is filled either by the header front-end in internal/parser or directly
// through the builder methods, and exposes its nodes as entity.Entity values.
package ast

import (
	"strings"

	"github.com/cmmoran/cxxbind/internal/entity"
)

// Program is the whole-program declaration graph. It is safe for concurrent
// readers once building has finished.
type Program struct {
	records  []*Decl            // every record declaration, forward ones included
	byUSR    map[string][]*Decl // record USR → declarations
	byName   map[string][]*Decl // qualified record name → declarations
	enums    map[string]bool    // qualified enum names
	typedefs map[string]*TypeExpr
}

func NewProgram() *Program {
	return &Program{
		byUSR:    make(map[string][]*Decl),
		byName:   make(map[string][]*Decl),
		enums:    make(map[string]bool),
		typedefs: make(map[string]*TypeExpr),
	}
}

// Records returns every record declaration in discovery order.
func (p *Program) Records() []entity.Entity {
	out := make([]entity.Entity, 0, len(p.records))
	for _, d := range p.records {
		out = append(out, d)
	}
	return out
}

// Lookup finds a record by qualified name, preferring its definition.
func (p *Program) Lookup(qualified string) (*Decl, bool) {
	decls := p.byName[qualified]
	if len(decls) == 0 {
		return nil, false
	}
	for _, d := range decls {
		if d.hasBody {
			return d, true
		}
	}
	return decls[0], true
}

// definition returns the declaration of usr that carries a body.
func (p *Program) definition(usr string) (*Decl, bool) {
	for _, d := range p.byUSR[usr] {
		if d.hasBody {
			return d, true
		}
	}
	return nil, false
}

// resolve looks name up from scope outwards, the way unqualified C++ name
// lookup walks enclosing namespaces.
func (p *Program) resolve(scope, name string) (string, bool) {
	name = strings.TrimPrefix(name, "::")
	for {
		candidate := name
		if scope != "" {
			candidate = scope + "::" + name
		}
		if _, ok := p.byName[candidate]; ok {
			return candidate, true
		}
		if p.enums[candidate] {
			return candidate, true
		}
		if _, ok := p.typedefs[candidate]; ok {
			return candidate, true
		}
		if scope == "" {
			return name, false
		}
		scope = parentScope(scope)
	}
}

// AddEnum registers an enum so type references to it resolve.
func (p *Program) AddEnum(scope, name string) {
	p.enums[qualify(scope, name)] = true
}

// AddTypedef registers `using name = target` in scope.
func (p *Program) AddTypedef(scope, name string, target *TypeExpr) {
	p.typedefs[qualify(scope, name)] = target
}

func (p *Program) register(d *Decl) {
	p.records = append(p.records, d)
	p.byUSR[d.usr] = append(p.byUSR[d.usr], d)
	q := d.QualifiedName()
	p.byName[q] = append(p.byName[q], d)
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "::" + name
}

// parentScope drops the last top-level "::" segment, ignoring separators
// inside template argument lists.
func parentScope(scope string) string {
	if i := lastScopeSep(scope); i >= 0 {
		return scope[:i]
	}
	return ""
}

// SplitQualified splits "cv::Vec<cv::Point, 2>" into "cv" and "Vec<cv::Point, 2>".
func SplitQualified(name string) (scope, local string) {
	if i := lastScopeSep(name); i >= 0 {
		return name[:i], name[i+2:]
	}
	return "", name
}

func lastScopeSep(s string) int {
	depth := 0
	for i := len(s) - 1; i > 0; i-- {
		switch s[i] {
		case '>':
			depth++
		case '<':
			depth--
		case ':':
			if depth == 0 && s[i-1] == ':' {
				return i - 1
			}
		}
	}
	return -1
}

// stripTemplateArgs turns "Vec<int, 4>" into "Vec".
func stripTemplateArgs(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}

func recordUSR(scope, name string, pattern bool) string {
	var b strings.Builder
	b.WriteString("c:")
	if scope != "" {
		for _, seg := range strings.Split(scope, "::") {
			b.WriteString("@N@")
			b.WriteString(seg)
		}
	}
	if pattern {
		b.WriteString("@ST@")
	} else {
		b.WriteString("@S@")
	}
	b.WriteString(name)
	return b.String()
}
