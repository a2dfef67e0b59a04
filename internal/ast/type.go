package ast

import (
	"strconv"
	"strings"

	"github.com/cmmoran/cxxbind/internal/entity"
)

var primitives = map[string]bool{
	"void": true, "bool": true, "char": true, "wchar_t": true, "char16_t": true, "char32_t": true,
	"signed char": true, "unsigned char": true, "short": true, "unsigned short": true,
	"int": true, "unsigned": true, "unsigned int": true, "long": true, "unsigned long": true,
	"long long": true, "unsigned long long": true, "float": true, "double": true, "long double": true,
	"size_t": true, "ptrdiff_t": true, "int8_t": true, "uint8_t": true, "int16_t": true, "uint16_t": true,
	"int32_t": true, "uint32_t": true, "int64_t": true, "uint64_t": true,
	"uchar": true, "schar": true, "ushort": true, "uint": true, "int64": true, "uint64": true,
}

// IsPrimitive reports whether name spells a builtin arithmetic type.
func IsPrimitive(name string) bool {
	return primitives[strings.TrimPrefix(name, "std::")]
}

// TypeExpr is one spelled type occurrence. Named types resolve lazily
// against the owning Program from the scope they were spelled in.
type TypeExpr struct {
	prog    *Program
	kind    entity.TypeKind // fixed for structural and primitive kinds, 0 for named types
	name    string
	scope   string
	isConst bool
	elem    *TypeExpr
	size    int
	hasSize bool
	args    []*TypeExpr
	decl    *Decl
}

var _ entity.Type = (*TypeExpr)(nil)

// Named references a type by name as spelled in scope.
func (p *Program) Named(scope, name string, args ...*TypeExpr) *TypeExpr {
	if IsPrimitive(name) && len(args) == 0 {
		return Prim(name)
	}
	return &TypeExpr{prog: p, name: strings.TrimPrefix(name, "::"), scope: scope, args: args}
}

// Prim is a builtin type.
func Prim(name string) *TypeExpr {
	if name == "void" {
		return &TypeExpr{kind: entity.TypeVoid, name: name}
	}
	return &TypeExpr{kind: entity.TypePrimitive, name: strings.TrimPrefix(name, "std::")}
}

// TemplateParam is a reference to a template parameter of an enclosing pattern.
func TemplateParam(name string) *TypeExpr {
	return &TypeExpr{kind: entity.TypeTemplateParam, name: name}
}

// Literal is a non-type template argument such as 4 in Vec<int, 4>.
func Literal(text string) *TypeExpr {
	return &TypeExpr{kind: entity.TypeUnknown, name: text}
}

func Pointer(t *TypeExpr) *TypeExpr         { return &TypeExpr{kind: entity.TypePointer, elem: t} }
func Reference(t *TypeExpr) *TypeExpr       { return &TypeExpr{kind: entity.TypeReference, elem: t} }
func RValueReference(t *TypeExpr) *TypeExpr { return &TypeExpr{kind: entity.TypeRValueReference, elem: t} }

func Array(t *TypeExpr, size int) *TypeExpr {
	return &TypeExpr{kind: entity.TypeArray, elem: t, size: size, hasSize: true}
}

func UnsizedArray(t *TypeExpr) *TypeExpr {
	return &TypeExpr{kind: entity.TypeArray, elem: t}
}

// Const returns a const-qualified copy of t.
func (t *TypeExpr) Const() *TypeExpr {
	c := *t
	c.isConst = true
	return &c
}

func (t *TypeExpr) Kind() entity.TypeKind {
	if t.kind != 0 {
		return t.kind
	}
	if t.decl != nil {
		return entity.TypeRecord
	}
	q, ok := t.resolved()
	if ok {
		switch {
		case t.prog.enums[q]:
			return entity.TypeEnum
		case t.prog.typedefs[q] != nil:
			return entity.TypeTypedef
		default:
			return entity.TypeRecord
		}
	}
	if len(t.args) > 0 || strings.Contains(t.name, "::") {
		return entity.TypeRecord
	}
	return entity.TypeUnknown
}

func (t *TypeExpr) resolved() (string, bool) {
	if t.prog == nil {
		return t.name, false
	}
	return t.prog.resolve(t.scope, t.name)
}

func (t *TypeExpr) IsConst() bool { return t.isConst }

func (t *TypeExpr) Pointee() (entity.Type, bool) {
	if t.elem == nil {
		return nil, false
	}
	return t.elem, true
}

func (t *TypeExpr) ArraySize() (int, bool) {
	return t.size, t.kind == entity.TypeArray && t.hasSize
}

func (t *TypeExpr) QualifiedName() string {
	switch t.kind {
	case entity.TypePointer, entity.TypeReference, entity.TypeRValueReference, entity.TypeArray:
		return ""
	}
	if t.decl != nil {
		return stripTemplateArgs(t.decl.QualifiedName())
	}
	q, _ := t.resolved()
	return q
}

func (t *TypeExpr) TemplateArgs() []entity.Type {
	out := make([]entity.Type, 0, len(t.args))
	for _, a := range t.args {
		out = append(out, a)
	}
	return out
}

// Declaration resolves a record type to its declaration. A template instance
// resolves to an explicit specialization when one was declared, otherwise to
// the pattern.
func (t *TypeExpr) Declaration() (entity.Entity, bool) {
	if t.decl != nil {
		return t.decl, true
	}
	if t.Kind() != entity.TypeRecord || t.prog == nil {
		return nil, false
	}
	q, ok := t.resolved()
	if !ok {
		return nil, false
	}
	if len(t.args) > 0 {
		if spec, ok := t.prog.Lookup(q + t.argList()); ok {
			return spec, true
		}
	}
	d, ok := t.prog.Lookup(q)
	if !ok {
		return nil, false
	}
	return d, true
}

func (t *TypeExpr) Underlying() (entity.Type, bool) {
	if t.Kind() != entity.TypeTypedef {
		return nil, false
	}
	q, _ := t.resolved()
	target := t.prog.typedefs[q]
	if target == nil {
		return nil, false
	}
	if t.isConst {
		return target.Const(), true
	}
	return target, true
}

func (t *TypeExpr) Spelling() string {
	var b strings.Builder
	switch t.kind {
	case entity.TypePointer:
		b.WriteString(t.elem.Spelling())
		b.WriteString("*")
		if t.isConst {
			b.WriteString(" const")
		}
		return b.String()
	case entity.TypeReference:
		return t.elem.Spelling() + "&"
	case entity.TypeRValueReference:
		return t.elem.Spelling() + "&&"
	case entity.TypeArray:
		b.WriteString(t.elem.Spelling())
		b.WriteString("[")
		if t.hasSize {
			b.WriteString(strconv.Itoa(t.size))
		}
		b.WriteString("]")
		return b.String()
	}
	if t.isConst {
		b.WriteString("const ")
	}
	if t.decl != nil {
		b.WriteString(t.decl.QualifiedName())
		return b.String()
	}
	q, _ := t.resolved()
	b.WriteString(q)
	b.WriteString(t.argList())
	return b.String()
}

func (t *TypeExpr) argList() string {
	if len(t.args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(t.args))
	for _, a := range t.args {
		parts = append(parts, a.Spelling())
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (t *TypeExpr) String() string {
	return t.Spelling()
}
