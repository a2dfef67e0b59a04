package model

import (
	"iter"

	"github.com/cespare/xxhash/v2"

	"github.com/cmmoran/cxxbind/internal/entity"
)

// Class is a view of one class or struct declaration. It is a small value:
// the declaration handle, an optional public name override and the shared
// environment. Everything else is derived on each call.
type Class struct {
	entity         entity.Entity
	customFullName string
	env            *Env
}

func NewClass(e entity.Entity, env *Env) Class {
	return Class{entity: e, env: env}
}

// NewClassExt is NewClass for a class surfaced under another fully qualified
// name, such as an instantiated template alias.
func NewClassExt(e entity.Entity, customFullName string, env *Env) Class {
	return Class{entity: e, customFullName: customFullName, env: env}
}

func (c Class) Entity() entity.Entity { return c.entity }

// Kind classifies the class. The first matching rule wins:
// exclusion pattern, manual override, system table, class-kind hint.
// Classes nothing is known about are not surfaced.
func (c Class) Kind() Kind {
	full := c.FullName()
	if c.env.IsExcludedName(full) {
		return KindExcluded
	}
	if cfg, ok := c.env.ExportConfig(full); ok {
		if cfg.Simple {
			return KindSimple
		}
		return KindBoxed
	}
	if c.IsSystem() {
		return KindSystem
	}
	if k, ok := c.env.ClassKind(c.entity.USR()); ok {
		return k
	}
	return KindExcluded
}

// IsSystem reports a class with an idiomatic target equivalent: listed in
// the system type table or declared in a system header.
func (c Class) IsSystem() bool {
	return c.env.IsSystemType(c.FullName()) || c.entity.InSystemHeader()
}

// TypeRef is the type the class declares. A class without one is malformed
// input.
func (c Class) TypeRef() TypeRef {
	t, ok := c.entity.Type()
	if !ok {
		invariant(InvariantClassType, c.entity, "can't get class type of %s", c.FullName())
	}
	return NewTypeRef(t, c.env)
}

// DetectClassSimplicity reports whether the class can be a value type: no
// bases, no descendants and only copyable fields.
func (c Class) DetectClassSimplicity() bool {
	return c.detectSimplicity(0)
}

func (c Class) detectSimplicity(depth int) bool {
	if c.HasBases() || c.HasDescendants() {
		return false
	}
	for f := range c.entity.Fields() {
		if !NewField(f, c.env).TypeRef().isCopy(depth + 1) {
			return false
		}
	}
	return true
}

// isCopyable answers copyability of a class used as a field type. It looks
// at overrides and structure only, never at the hints, which are themselves
// derived from copyability.
func (c Class) isCopyable(depth int) bool {
	if depth > c.env.MaxBaseDepth() {
		return false
	}
	full := c.FullName()
	if c.env.IsExcludedName(full) {
		return false
	}
	if cfg, ok := c.env.ExportConfig(full); ok {
		return cfg.Simple
	}
	if c.IsSystem() || c.IsTemplate() {
		return false
	}
	def := c
	if !c.IsDefinition() {
		d, ok := c.entity.Definition()
		if !ok {
			return false
		}
		def = NewClass(d, c.env)
	}
	return def.detectSimplicity(depth)
}

func (c Class) AsTemplate() (Class, bool) {
	t, ok := c.entity.Template()
	if !ok {
		return Class{}, false
	}
	return NewClass(t, c.env), true
}

func (c Class) IsSimple() bool { return c.Kind() == KindSimple }
func (c Class) IsBoxed() bool  { return c.Kind() == KindBoxed }

// IsTemplate reports a template pattern.
func (c Class) IsTemplate() bool {
	_, ok := c.entity.TemplateKind()
	return ok
}

// IsTemplateSpecialization reports a class bound to a generic pattern.
func (c Class) IsTemplateSpecialization() bool {
	_, ok := c.entity.Template()
	return ok
}

// IsAbstract is exactly the entity's abstract-record test. The methods of the
// ancestors are not searched again here.
func (c Class) IsAbstract() bool {
	return c.entity.IsAbstractRecord()
}

// IsTrait reports a class that gets a capability interface.
func (c Class) IsTrait() bool {
	return c.IsBoxed()
}

func (c Class) IsByPtr() bool {
	switch c.Kind() {
	case KindBoxed:
		return true
	case KindSimple, KindSystem, KindExcluded:
		return false
	default:
		return false
	}
}

func (c Class) HasClone() bool {
	for _, m := range c.Methods() {
		if m.IsClone() {
			return true
		}
	}
	return false
}

// baseSource is the declaration whose base clause applies: the pattern for a
// specialization, the class itself otherwise.
func (c Class) baseSource() entity.Entity {
	if t, ok := c.entity.Template(); ok {
		return t
	}
	return c.entity
}

func (c Class) HasBases() bool {
	return entity.Any(c.baseSource().Bases())
}

// Bases returns the direct bases, each resolved to its definition.
func (c Class) Bases() []Class {
	var out []Class
	for b := range c.baseSource().Bases() {
		def, ok := b.Definition()
		if !ok {
			invariant(InvariantBaseDefinition, c.entity, "can't get definition of base %s of %s", qualify(b.Namespace(), b.Name()), c.FullName())
		}
		out = append(out, NewClass(def, c.env))
	}
	return out
}

// AllBases is the transitive closure of Bases, each class once, in
// depth-first discovery order.
func (c Class) AllBases() []Class {
	var out []Class
	c.collectBases(&out, make(map[string]struct{}), 0)
	return out
}

func (c Class) collectBases(out *[]Class, seen map[string]struct{}, depth int) {
	if depth >= c.env.MaxBaseDepth() {
		invariant(InvariantBaseDepth, c.entity, "inheritance of %s is deeper than %d", c.FullName(), c.env.MaxBaseDepth())
	}
	for _, b := range c.Bases() {
		if _, ok := seen[b.ID()]; ok {
			continue
		}
		seen[b.ID()] = struct{}{}
		*out = append(*out, b)
		b.collectBases(out, seen, depth+1)
	}
}

func (c Class) HasDescendants() bool {
	return c.env.HasDescendants(c.entity.USR())
}

func (c Class) HasMethods() bool {
	return entity.Any(c.entity.Methods())
}

// Methods returns the member functions in declaration order. A generic
// method becomes one function per configured specialization and is dropped
// when it has none, see DroppedGenerics.
func (c Class) Methods() []Func {
	var out []Func
	for m := range c.entity.Methods() {
		f := NewFunc(m, c.env)
		if !f.IsGeneric() {
			out = append(out, f)
			continue
		}
		specs, ok := c.env.FuncSpecializations(f.Identifier())
		if !ok {
			continue
		}
		for _, spec := range specs {
			out = append(out, NewSpecializedFunc(m, spec, c.env))
		}
	}
	return out
}

// DroppedGenerics returns the generic methods Methods leaves out.
func (c Class) DroppedGenerics() []Func {
	var out []Func
	for m := range c.entity.Methods() {
		f := NewFunc(m, c.env)
		if !f.IsGeneric() {
			continue
		}
		if _, ok := c.env.FuncSpecializations(f.Identifier()); !ok {
			out = append(out, f)
		}
	}
	return out
}

func (c Class) HasFields() bool {
	return entity.Any(c.entity.Fields())
}

func (c Class) Fields() []Field {
	var out []Field
	for f := range c.entity.Fields() {
		out = append(out, NewField(f, c.env))
	}
	return out
}

func (c Class) Consts() []Const {
	var out []Const
	for k := range c.entity.Consts() {
		out = append(out, NewConst(k))
	}
	return out
}

// FieldMethods yields the accessors of fields: a getter for every
// non-excluded field, followed by a setter unless the field type is const or
// a fixed-size array. Accessors are produced as the sequence is consumed.
func (c Class) FieldMethods(fields []Field) iter.Seq[Func] {
	return func(yield func(Func) bool) {
		for _, f := range fields {
			if f.IsExcluded() {
				continue
			}
			if !yield(newFieldAccessor(f, HintFieldGetter, c.env)) {
				return
			}
			t := f.TypeRef()
			if t.IsConst() {
				continue
			}
			if _, _, ok := t.AsFixedArray(); ok {
				continue
			}
			if !yield(newFieldAccessor(f, HintFieldSetter, c.env)) {
				return
			}
		}
	}
}

// IsDefinition reports whether this declaration is the canonical definition.
// Without a resolvable definition it is not; without a location of its own
// but with a definition elsewhere it is taken to be.
func (c Class) IsDefinition() bool {
	def, ok := c.entity.Definition()
	if !ok {
		return false
	}
	defLoc, ok := def.Location()
	if !ok {
		return false
	}
	loc, ok := c.entity.Location()
	if !ok {
		return true
	}
	return loc == defLoc
}

// DependentTypes is the union of the dependent types of every non-excluded
// field and method, each walked for module-level declaration.
func (c Class) DependentTypes() []DependentType {
	var s DependentSet
	mode := ForReturn(DefinitionModule)
	for _, f := range c.Fields() {
		if f.IsExcluded() {
			continue
		}
		s.AddAll(f.TypeRef().DependentTypes(mode))
	}
	for _, m := range c.Methods() {
		if m.IsExcluded() {
			continue
		}
		s.AddAll(m.DependentTypesWithMode(mode))
	}
	return s.Slice()
}

// IsExcluded reports a class that must not appear in the generated surface.
// Declarations outside any namespace are legacy C and never processed.
func (c Class) IsExcluded() bool {
	return c.env.IsExcludedName(c.FullName()) ||
		c.entity.Access() != entity.AccessPublic ||
		c.Kind() == KindExcluded ||
		c.Namespace() == ""
}

// IsIgnored reports a class that is skipped without being an error.
func (c Class) IsIgnored() bool {
	_, ok := c.IgnoreReason()
	return ok
}

// IgnoreReason tells why a class is skipped.
func (c Class) IgnoreReason() (IgnoreReason, bool) {
	full := c.FullName()
	switch {
	case c.env.IsIgnoredName(full):
		return IgnorePattern, true
	case c.entity.InSystemHeader():
		return IgnoreSystemHeader, true
	case c.IsTemplate():
		return IgnoreTemplate, true
	case c.IsTemplateSpecialization():
		if !c.env.IsImplementedGeneric(full) {
			return IgnoreUnimplementedSpecialization, true
		}
	case !c.IsDefinition():
		return IgnoreNotDefinition, true
	}
	return IgnoreNone, false
}

func (c Class) FullName() string {
	if c.customFullName != "" {
		return c.customFullName
	}
	return qualify(c.entity.Namespace(), c.entity.Name())
}

func (c Class) Namespace() string {
	if c.customFullName != "" {
		ns, _ := splitQualified(c.customFullName)
		return ns
	}
	return c.entity.Namespace()
}

func (c Class) LocalName() string {
	if c.customFullName != "" {
		_, local := splitQualified(c.customFullName)
		return local
	}
	return c.entity.Name()
}

// TargetLeafName is the unqualified target-language name. All native string
// classes map to String.
func (c Class) TargetLeafName() string {
	if _, ok := c.TypeRef().AsString(); ok {
		return "String"
	}
	return identifier(c.LocalName())
}

// TraitName names the capability interface of a boxed class. Abstract
// classes only exist as their trait, so they keep their plain name.
func (c Class) TraitName() string {
	name := c.TargetLeafName()
	if c.IsTrait() && !c.IsAbstract() {
		name += "Trait"
	}
	return name
}

// ID is the identity of the underlying declaration.
func (c Class) ID() string { return c.entity.USR() }

// Equal compares declarations, never names: views built with different
// custom names over the same declaration are equal.
func (c Class) Equal(o Class) bool { return c.ID() == o.ID() }

func (c Class) Hash() uint64 { return xxhash.Sum64String(c.ID()) }

func (c Class) String() string {
	name, ok := c.entity.DisplayName()
	if !ok {
		invariant(InvariantDisplayName, c.entity, "can't get display name")
	}
	return name
}

// Props lists the predicates that hold, for diagnostics and reports.
func (c Class) Props() []string {
	var props []string
	add := func(ok bool, name string) {
		if ok {
			props = append(props, name)
		}
	}
	add(c.IsTemplate(), "template")
	add(c.IsTemplateSpecialization(), "template_specialization")
	add(c.IsAbstract(), "abstract")
	add(c.IsTrait(), "trait")
	add(c.IsByPtr(), "by_ptr")
	add(c.IsSimple(), "simple")
	add(c.HasDescendants(), "has_descendants")
	add(c.HasMethods(), "has_methods")
	add(c.HasFields(), "has_fields")
	add(c.HasBases(), "has_bases")
	return props
}

// IgnoreReason is why a class is skipped.
type IgnoreReason int

const (
	IgnoreNone IgnoreReason = iota
	IgnorePattern
	IgnoreSystemHeader
	IgnoreTemplate
	IgnoreUnimplementedSpecialization
	IgnoreNotDefinition
)

func (r IgnoreReason) String() string {
	switch r {
	case IgnorePattern:
		return "ignore_pattern"
	case IgnoreSystemHeader:
		return "system_header"
	case IgnoreTemplate:
		return "template"
	case IgnoreUnimplementedSpecialization:
		return "unimplemented_specialization"
	case IgnoreNotDefinition:
		return "not_definition"
	default:
		return "none"
	}
}

func (r IgnoreReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
