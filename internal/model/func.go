package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/cmmoran/cxxbind/internal/entity"
	"github.com/cmmoran/cxxbind/pkg/parser"
)

// FuncHint tells how a function was produced.
type FuncHint int

const (
	HintNone FuncHint = iota
	// HintFieldGetter and HintFieldSetter mark accessors synthesized from a
	// data member. The function entity is the field.
	HintFieldGetter
	HintFieldSetter
	// HintSpecialized marks a generic method bound to concrete types.
	HintSpecialized
)

func (h FuncHint) String() string {
	switch h {
	case HintFieldGetter:
		return "field_getter"
	case HintFieldSetter:
		return "field_setter"
	case HintSpecialized:
		return "specialized"
	default:
		return "none"
	}
}

type FuncKind int

const (
	FuncMethod FuncKind = iota + 1
	FuncStaticMethod
	FuncConstructor
	FuncDestructor
	FuncFieldGetter
	FuncFieldSetter
)

func (k FuncKind) String() string {
	switch k {
	case FuncMethod:
		return "method"
	case FuncStaticMethod:
		return "static_method"
	case FuncConstructor:
		return "constructor"
	case FuncDestructor:
		return "destructor"
	case FuncFieldGetter:
		return "getter"
	case FuncFieldSetter:
		return "setter"
	default:
		return fmt.Sprintf("FuncKind(%d)", int(k))
	}
}

func (k FuncKind) MarshalText() ([]byte, error) {
	if k < FuncMethod || k > FuncFieldSetter {
		return nil, fmt.Errorf("unknown function kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// Func is a view of a callable member: a method as declared, a generic method
// bound to one specialization, or an accessor derived from a field.
type Func struct {
	entity entity.Entity
	hint   FuncHint
	spec   parser.Specialization
	env    *Env
}

// Arg is one parameter of a function.
type Arg struct {
	Name string
	Type TypeRef
}

func NewFunc(e entity.Entity, env *Env) Func {
	return Func{entity: e, env: env}
}

// NewSpecializedFunc binds the template parameters of a generic method.
func NewSpecializedFunc(e entity.Entity, spec parser.Specialization, env *Env) Func {
	return Func{entity: e, hint: HintSpecialized, spec: spec, env: env}
}

func newFieldAccessor(f Field, hint FuncHint, env *Env) Func {
	return Func{entity: f.entity, hint: hint, env: env}
}

func (f Func) Entity() entity.Entity { return f.entity }
func (f Func) Hint() FuncHint        { return f.hint }

// Specialization returns the bound template parameters of a specialized
// generic method.
func (f Func) Specialization() (parser.Specialization, bool) {
	return f.spec, f.hint == HintSpecialized
}

func (f Func) Kind() FuncKind {
	switch f.hint {
	case HintFieldGetter:
		return FuncFieldGetter
	case HintFieldSetter:
		return FuncFieldSetter
	}
	switch f.entity.Kind() {
	case entity.KindConstructor:
		return FuncConstructor
	case entity.KindDestructor:
		return FuncDestructor
	case entity.KindField:
		return FuncFieldGetter
	}
	if f.entity.IsStatic() {
		return FuncStaticMethod
	}
	return FuncMethod
}

// Identifier is the fully qualified native name, "cv::Mat::at". It is the
// key of the generic method specialization table.
func (f Func) Identifier() string {
	return qualify(f.entity.Namespace(), f.entity.Name())
}

func (f Func) Name() string {
	return f.entity.Name()
}

// IsGeneric reports a method template that has not been bound yet.
func (f Func) IsGeneric() bool {
	if f.hint != HintNone {
		return false
	}
	k, ok := f.entity.TemplateKind()
	return ok && k == entity.TemplateFunction
}

// IsExcluded reports a function that must not be generated: matched by an
// exclusion pattern, not public, a destructor or an operator, or one whose
// signature refers to a class that is not surfaced.
func (f Func) IsExcluded() bool {
	if f.env.IsExcludedName(f.Identifier()) || f.entity.Access() != entity.AccessPublic {
		return true
	}
	switch f.Kind() {
	case FuncDestructor:
		return true
	case FuncFieldGetter, FuncFieldSetter:
		return NewField(f.entity, f.env).IsExcluded()
	}
	if strings.HasPrefix(f.entity.Name(), "operator") || f.IsGeneric() {
		return true
	}
	if r, ok := f.ReturnType(); ok && r.IsExcluded() {
		return true
	}
	for _, a := range f.Arguments() {
		if a.Type.IsExcluded() {
			return true
		}
	}
	return false
}

// IsClone reports the conventional polymorphic copy, "Ptr<X> clone() const"
// or "X clone() const".
func (f Func) IsClone() bool {
	if f.Kind() != FuncMethod || f.entity.Name() != "clone" || entity.Any(f.entity.Arguments()) {
		return false
	}
	r, ok := f.ReturnType()
	if !ok {
		return false
	}
	r = r.Canonical()
	if p, ok := r.Pointee(); ok && r.Kind() == entity.TypePointer {
		r = p.Canonical()
	}
	return r.Kind() == entity.TypeRecord
}

func (f Func) IsAbstract() bool {
	return f.hint == HintNone && f.entity.IsPureVirtual()
}

func (f Func) IsStatic() bool {
	return f.hint == HintNone && f.entity.IsStatic()
}

// IsConst reports a function that does not modify its object.
func (f Func) IsConst() bool {
	switch f.hint {
	case HintFieldGetter:
		return true
	case HintFieldSetter:
		return false
	}
	return f.entity.IsConstMethod()
}

// Arguments returns the parameters. A setter takes the new field value.
func (f Func) Arguments() []Arg {
	switch f.hint {
	case HintFieldGetter:
		return nil
	case HintFieldSetter:
		return []Arg{{Name: "val", Type: NewField(f.entity, f.env).TypeRef()}}
	}
	var out []Arg
	for a := range f.entity.Arguments() {
		t, _ := a.Type()
		out = append(out, Arg{Name: a.Name(), Type: f.bind(NewTypeRef(t, f.env))})
	}
	return out
}

// ReturnType is the result type. Constructors have none.
func (f Func) ReturnType() (TypeRef, bool) {
	switch f.hint {
	case HintFieldGetter:
		return NewField(f.entity, f.env).TypeRef(), true
	case HintFieldSetter:
		return TypeRef{}, false
	}
	t, ok := f.entity.ResultType()
	if !ok {
		return TypeRef{}, false
	}
	return f.bind(NewTypeRef(t, f.env)), true
}

// bind substitutes the specialization into t.
func (f Func) bind(t TypeRef) TypeRef {
	if f.hint != HintSpecialized || len(f.spec) == 0 {
		return t
	}
	bound := make(map[string]entity.Type, len(f.spec))
	for param, spelling := range f.spec {
		if r, ok := f.env.resolveSpelling(f.entity.Namespace(), spelling); ok {
			bound[param] = r
		}
	}
	return t.with(substitute(t.typ, bound, 0))
}

// DependentTypes walks the arguments and the return type for module-level
// declaration.
func (f Func) DependentTypes() []DependentType {
	return f.DependentTypesWithMode(ForReturn(DefinitionModule))
}

func (f Func) DependentTypesWithMode(mode DependentTypeMode) []DependentType {
	var s DependentSet
	for _, a := range f.Arguments() {
		s.AddAll(a.Type.DependentTypes(mode))
	}
	if r, ok := f.ReturnType(); ok {
		s.AddAll(r.DependentTypes(mode))
	}
	return s.Slice()
}

// TargetName is the function name in the generated surface. Accessors are
// named after their field, specializations carry their bound types.
func (f Func) TargetName() string {
	name := f.entity.Name()
	switch f.Kind() {
	case FuncFieldSetter:
		return "set_" + name
	case FuncConstructor:
		return "new"
	case FuncDestructor:
		return "delete"
	}
	if f.hint == HintSpecialized {
		for _, param := range f.specParams() {
			name += "_" + identifier(f.spec[param])
		}
	}
	return identifier(name)
}

func (f Func) specParams() []string {
	params := make([]string, 0, len(f.spec))
	for p := range f.spec {
		params = append(params, p)
	}
	slices.Sort(params)
	return params
}

// ID is the declaration identity, extended by the hint and specialization so
// that the getter and the setter of one field, or two specializations of one
// method, stay distinct.
func (f Func) ID() string {
	id := f.entity.USR()
	switch f.hint {
	case HintFieldGetter:
		id += "#get"
	case HintFieldSetter:
		id += "#set"
	case HintSpecialized:
		var b strings.Builder
		b.WriteString(id)
		b.WriteString("#spec")
		for _, p := range f.specParams() {
			b.WriteString(";")
			b.WriteString(p)
			b.WriteString("=")
			b.WriteString(f.spec[p])
		}
		id = b.String()
	}
	return id
}

func (f Func) Equal(o Func) bool { return f.ID() == o.ID() }
func (f Func) Hash() uint64      { return xxhash.Sum64String(f.ID()) }

func (f Func) String() string {
	name, ok := f.entity.DisplayName()
	if !ok {
		invariant(InvariantDisplayName, f.entity, "can't get display name")
	}
	switch f.hint {
	case HintFieldGetter:
		return name + " [getter]"
	case HintFieldSetter:
		return name + " [setter]"
	case HintSpecialized:
		return f.TargetName() + " [" + name + "]"
	}
	return name
}
