package model

import (
	"fmt"
	"iter"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/cmmoran/cxxbind/internal/entity"
)

// DefinitionLocation tells where a dependent type has to be declared.
type DefinitionLocation int

const (
	// DefinitionModule asks for a declaration inside the generated module
	// of the class that refers to the type.
	DefinitionModule DefinitionLocation = iota + 1
	// DefinitionType asks for a declaration next to the referring type only.
	DefinitionType
)

func (l DefinitionLocation) String() string {
	switch l {
	case DefinitionModule:
		return "module"
	case DefinitionType:
		return "type"
	default:
		return "none"
	}
}

// DependentTypeMode parameterizes a dependent-type walk. The zero value asks
// for no particular placement.
type DependentTypeMode struct {
	ForReturn bool
	Location  DefinitionLocation
}

// ForReturn requests types that must at least be declarable at loc because
// they are handed back to the caller.
func ForReturn(loc DefinitionLocation) DependentTypeMode {
	return DependentTypeMode{ForReturn: true, Location: loc}
}

func (m DependentTypeMode) String() string {
	if !m.ForReturn {
		return "none"
	}
	return "for_return(" + m.Location.String() + ")"
}

// DependentKind is the shape of a dependent type.
type DependentKind int

const (
	DependentVector DependentKind = iota + 1
	DependentSmartPtr
	DependentTuple
	// DependentTemplate is a surfaced specialization of a class template.
	DependentTemplate
)

func (k DependentKind) String() string {
	switch k {
	case DependentVector:
		return "vector"
	case DependentSmartPtr:
		return "smart_ptr"
	case DependentTuple:
		return "tuple"
	case DependentTemplate:
		return "template"
	default:
		return fmt.Sprintf("DependentKind(%d)", int(k))
	}
}

func (k DependentKind) MarshalText() ([]byte, error) {
	if k < DependentVector || k > DependentTemplate {
		return nil, fmt.Errorf("unknown dependent kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// DependentType is a type reachable from a public surface that needs a
// generated representation of its own. Identity is the kind plus the
// identity of the native type, so two types spelled alike in different
// namespaces stay distinct.
type DependentType struct {
	Kind DependentKind
	Type TypeRef
	Mode DependentTypeMode
}

func (d DependentType) ID() string {
	return d.Kind.String() + ":" + d.Type.identity()
}

func (d DependentType) Equal(o DependentType) bool {
	return d.ID() == o.ID()
}

func (d DependentType) Hash() uint64 {
	return xxhash.Sum64String(d.ID())
}

// Name is the native spelling without cv-qualifiers.
func (d DependentType) Name() string {
	return strings.TrimPrefix(d.Type.Canonical().Spelling(), "const ")
}

func (d DependentType) String() string {
	return d.Kind.String() + " " + d.Name()
}

// DependentSet is an insertion-ordered set of dependent types. The zero value
// is ready to use.
type DependentSet struct {
	order []DependentType
	seen  map[string]struct{}
}

// Add inserts d and reports whether it was not present yet.
func (s *DependentSet) Add(d DependentType) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	id := d.ID()
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, d)
	return true
}

func (s *DependentSet) AddAll(ds []DependentType) {
	for _, d := range ds {
		s.Add(d)
	}
}

func (s *DependentSet) Union(o *DependentSet) {
	for d := range o.All() {
		s.Add(d)
	}
}

func (s *DependentSet) Contains(d DependentType) bool {
	_, ok := s.seen[d.ID()]
	return ok
}

func (s *DependentSet) Len() int {
	return len(s.order)
}

func (s *DependentSet) All() iter.Seq[DependentType] {
	return func(yield func(DependentType) bool) {
		for _, d := range s.order {
			if !yield(d) {
				return
			}
		}
	}
}

func (s *DependentSet) Slice() []DependentType {
	return append([]DependentType(nil), s.order...)
}

// DependentTypes walks t and returns every type reachable from it that needs
// its own generated representation, innermost first. Containers of excluded
// classes are skipped since they cannot be represented either.
func (t TypeRef) DependentTypes(mode DependentTypeMode) []DependentType {
	var s DependentSet
	t.collectDependents(&s, mode, 0)
	return s.Slice()
}

func (t TypeRef) collectDependents(s *DependentSet, mode DependentTypeMode, depth int) {
	if depth > t.env.MaxBaseDepth() {
		return
	}
	c := t.Canonical()
	switch c.Kind() {
	case entity.TypePointer, entity.TypeReference, entity.TypeRValueReference, entity.TypeArray:
		if p, ok := c.Pointee(); ok {
			p.collectDependents(s, mode, depth+1)
		}
		return
	case entity.TypeRecord:
	default:
		return
	}
	if _, ok := c.AsString(); ok {
		return
	}

	var kind DependentKind
	switch {
	case c.IsVector():
		kind = DependentVector
	case c.IsSmartPtr():
		kind = DependentSmartPtr
	case c.IsTuple():
		kind = DependentTuple
	case c.isImplementedSpecialization():
		kind = DependentTemplate
	default:
		return
	}

	args := c.TemplateArgs()
	for _, a := range args {
		if a.isExcluded(depth + 1) {
			return
		}
	}
	for _, a := range args {
		a.collectDependents(s, mode, depth+1)
	}
	s.Add(DependentType{Kind: kind, Type: c, Mode: mode})
}

// isImplementedSpecialization reports a template instance, or a record
// declared as an explicit specialization, that is listed as implemented.
func (t TypeRef) isImplementedSpecialization() bool {
	if name := t.instanceName(); name != "" && t.env.IsImplementedGeneric(name) {
		return true
	}
	cls, ok := t.Class()
	return ok && cls.IsTemplateSpecialization() && t.env.IsImplementedGeneric(cls.FullName())
}

// instanceName spells a template instance as "cv::Point_<int>", "" for types
// without template arguments.
func (t TypeRef) instanceName() string {
	c := t.Canonical()
	args := c.typ.TemplateArgs()
	if c.Kind() != entity.TypeRecord || len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, a.Spelling())
	}
	return c.typ.QualifiedName() + "<" + strings.Join(parts, ", ") + ">"
}

// isExcluded reports a type that refers to a class the generated surface
// cannot contain.
func (t TypeRef) isExcluded(depth int) bool {
	if depth > t.env.MaxBaseDepth() {
		return false
	}
	c := t.Canonical()
	switch c.Kind() {
	case entity.TypePointer, entity.TypeReference, entity.TypeRValueReference, entity.TypeArray:
		p, ok := c.Pointee()
		return ok && p.isExcluded(depth+1)
	case entity.TypeRecord:
	default:
		return false
	}
	if _, ok := c.AsString(); ok {
		return false
	}
	if c.IsVector() || c.IsSmartPtr() || c.IsTuple() {
		for _, a := range c.TemplateArgs() {
			if a.isExcluded(depth + 1) {
				return true
			}
		}
		return false
	}
	cls, ok := c.Class()
	if !ok {
		return false
	}
	if cls.IsTemplate() {
		name := c.instanceName()
		return !t.env.IsImplementedGeneric(name) && !t.env.IsSystemType(name)
	}
	return cls.Kind() == KindExcluded
}

// IsExcluded reports whether t refers to a class that is not surfaced.
func (t TypeRef) IsExcluded() bool {
	return t.isExcluded(0)
}
