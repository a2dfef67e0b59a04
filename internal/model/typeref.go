package model

import (
	"strconv"
	"strings"

	"github.com/cmmoran/cxxbind/internal/entity"
)

// StringKind tells which native spelling of a string a type is.
type StringKind int

const (
	StringStd     StringKind = iota + 1 // std::string
	StringCv                            // cv::String
	StringCharPtr                       // char* and const char*
)

var (
	vectorTypes   = map[string]bool{"std::vector": true, "cv::Vector": true}
	smartPtrTypes = map[string]bool{"cv::Ptr": true, "std::shared_ptr": true, "std::unique_ptr": true}
	tupleTypes    = map[string]bool{"std::pair": true, "std::tuple": true}
)

// TypeRef wraps one occurrence of a native type.
type TypeRef struct {
	typ entity.Type
	env *Env
}

func NewTypeRef(t entity.Type, env *Env) TypeRef {
	if t == nil {
		t = unknownType{}
	}
	return TypeRef{typ: t, env: env}
}

func (t TypeRef) Type() entity.Type          { return t.typ }
func (t TypeRef) Spelling() string           { return t.typ.Spelling() }
func (t TypeRef) Kind() entity.TypeKind      { return t.typ.Kind() }
func (t TypeRef) String() string             { return t.typ.Spelling() }
func (t TypeRef) with(x entity.Type) TypeRef { return NewTypeRef(x, t.env) }

// Canonical strips typedef layers.
func (t TypeRef) Canonical() TypeRef {
	cur := t.typ
	for i := 0; i <= t.env.MaxBaseDepth() && cur.Kind() == entity.TypeTypedef; i++ {
		next, ok := cur.Underlying()
		if !ok {
			break
		}
		cur = next
	}
	return t.with(cur)
}

// Pointee is the target of a pointer or reference, or an array element.
func (t TypeRef) Pointee() (TypeRef, bool) {
	p, ok := t.Canonical().typ.Pointee()
	if !ok {
		return TypeRef{}, false
	}
	return t.with(p), true
}

// IsConst reports an immutable type: const qualified, or a reference to a
// const type.
func (t TypeRef) IsConst() bool {
	c := t.Canonical()
	if c.typ.IsConst() || t.typ.IsConst() {
		return true
	}
	switch c.Kind() {
	case entity.TypeReference, entity.TypeRValueReference:
		if p, ok := c.typ.Pointee(); ok {
			return p.IsConst()
		}
	}
	return false
}

// AsFixedArray returns the element type and size of a fixed-size array.
func (t TypeRef) AsFixedArray() (TypeRef, int, bool) {
	c := t.Canonical()
	if c.Kind() != entity.TypeArray {
		return TypeRef{}, 0, false
	}
	size, ok := c.typ.ArraySize()
	if !ok {
		return TypeRef{}, 0, false
	}
	elem, ok := c.typ.Pointee()
	if !ok {
		return TypeRef{}, 0, false
	}
	return t.with(elem), size, true
}

// AsString reports whether the type is one of the native string spellings.
func (t TypeRef) AsString() (StringKind, bool) {
	c := t.Canonical()
	switch c.Kind() {
	case entity.TypeRecord:
		switch c.typ.QualifiedName() {
		case "std::string", "std::basic_string":
			return StringStd, true
		case "cv::String":
			return StringCv, true
		}
	case entity.TypePointer:
		if p, ok := c.typ.Pointee(); ok && p.Kind() == entity.TypePrimitive && p.QualifiedName() == "char" {
			return StringCharPtr, true
		}
	}
	return 0, false
}

// Class returns the class a record type names.
func (t TypeRef) Class() (Class, bool) {
	c := t.Canonical()
	if c.Kind() != entity.TypeRecord {
		return Class{}, false
	}
	decl, ok := c.typ.Declaration()
	if !ok || !decl.Kind().IsRecord() {
		return Class{}, false
	}
	return NewClass(decl, t.env), true
}

// IsCopy reports whether values of the type can be duplicated bitwise.
// Records are copyable when their class is, which in turn depends on the
// copyability of their own fields.
func (t TypeRef) IsCopy() bool {
	return t.isCopy(0)
}

func (t TypeRef) isCopy(depth int) bool {
	if depth > t.env.MaxBaseDepth() {
		return false
	}
	c := t.Canonical()
	switch c.Kind() {
	case entity.TypePrimitive, entity.TypeEnum:
		return true
	case entity.TypeArray:
		elem, _, ok := c.AsFixedArray()
		return ok && elem.isCopy(depth+1)
	case entity.TypeRecord:
		if _, ok := c.AsString(); ok {
			return false
		}
		cls, ok := c.Class()
		if !ok {
			return false
		}
		return cls.isCopyable(depth + 1)
	case entity.TypeVoid, entity.TypePointer, entity.TypeReference, entity.TypeRValueReference,
		entity.TypeTemplateParam, entity.TypeTypedef, entity.TypeUnknown, entity.TypeInvalid:
		return false
	default:
		return false
	}
}

// templateName is the pattern name of a template instance, "" otherwise.
func (t TypeRef) templateName() string {
	c := t.Canonical()
	if c.Kind() != entity.TypeRecord || len(c.typ.TemplateArgs()) == 0 {
		return ""
	}
	return c.typ.QualifiedName()
}

func (t TypeRef) IsVector() bool   { return vectorTypes[t.templateName()] }
func (t TypeRef) IsSmartPtr() bool { return smartPtrTypes[t.templateName()] }
func (t TypeRef) IsTuple() bool    { return tupleTypes[t.templateName()] }

// TemplateArgs returns the template arguments of a template instance.
func (t TypeRef) TemplateArgs() []TypeRef {
	args := t.Canonical().typ.TemplateArgs()
	out := make([]TypeRef, 0, len(args))
	for _, a := range args {
		out = append(out, t.with(a))
	}
	return out
}

// identity is the dependent-type identity of the type: declarations are
// keyed by USR so that equally named types from different namespaces stay
// apart.
func (t TypeRef) identity() string {
	c := t.Canonical()
	var b strings.Builder
	if c.typ.IsConst() {
		b.WriteString("const ")
	}
	switch c.Kind() {
	case entity.TypePointer, entity.TypeReference, entity.TypeRValueReference, entity.TypeArray:
		b.WriteString(c.Kind().String())
		b.WriteString("(")
		if p, ok := c.Pointee(); ok {
			b.WriteString(p.identity())
		}
		b.WriteString(")")
		if size, ok := c.typ.ArraySize(); ok {
			b.WriteString("[")
			b.WriteString(strconv.Itoa(size))
			b.WriteString("]")
		}
		return b.String()
	case entity.TypeRecord:
		args := c.TemplateArgs()
		if decl, ok := c.typ.Declaration(); ok {
			b.WriteString(decl.USR())
		} else {
			b.WriteString("ext:")
			b.WriteString(c.typ.QualifiedName())
		}
		if len(args) > 0 {
			b.WriteString("<")
			for i, a := range args {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString(a.identity())
			}
			b.WriteString(">")
		}
		return b.String()
	default:
		b.WriteString(c.typ.Spelling())
		return b.String()
	}
}

// unknownType stands in for a type the entity view could not provide.
type unknownType struct{}

func (unknownType) Spelling() string                   { return "<unknown>" }
func (unknownType) Kind() entity.TypeKind              { return entity.TypeUnknown }
func (unknownType) IsConst() bool                      { return false }
func (unknownType) Pointee() (entity.Type, bool)       { return nil, false }
func (unknownType) ArraySize() (int, bool)             { return 0, false }
func (unknownType) Declaration() (entity.Entity, bool) { return nil, false }
func (unknownType) QualifiedName() string              { return "" }
func (unknownType) TemplateArgs() []entity.Type        { return nil }
func (unknownType) Underlying() (entity.Type, bool)    { return nil, false }
