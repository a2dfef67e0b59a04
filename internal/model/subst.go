package model

import (
	"strconv"

	"github.com/cmmoran/cxxbind/internal/entity"
)

// substitute replaces template parameters in t by their bound types,
// rebuilding the pointer, reference and array layers around them. Parameters
// without a binding are kept.
func substitute(t entity.Type, bound map[string]entity.Type, depth int) entity.Type {
	if len(bound) == 0 || depth > maxSubstDepth {
		return t
	}
	switch t.Kind() {
	case entity.TypeTemplateParam:
		b, ok := bound[t.QualifiedName()]
		if !ok {
			return t
		}
		if t.IsConst() && !b.IsConst() {
			return constType{b}
		}
		return b
	case entity.TypePointer, entity.TypeReference, entity.TypeRValueReference, entity.TypeArray:
		p, ok := t.Pointee()
		if !ok {
			return t
		}
		sp := substitute(p, bound, depth+1)
		if sp == p {
			return t
		}
		return derivedType{Type: t, elem: sp}
	default:
		return t
	}
}

const maxSubstDepth = 16

// constType adds a const qualifier to a bound parameter, "const T&" with
// T=cv::Mat.
type constType struct {
	entity.Type
}

func (c constType) IsConst() bool    { return true }
func (c constType) Spelling() string { return "const " + c.Type.Spelling() }

// derivedType is a pointer, reference or array whose element was substituted.
type derivedType struct {
	entity.Type
	elem entity.Type
}

func (d derivedType) Pointee() (entity.Type, bool) { return d.elem, true }

func (d derivedType) Spelling() string {
	switch d.Type.Kind() {
	case entity.TypePointer:
		s := d.elem.Spelling() + "*"
		if d.Type.IsConst() {
			s += " const"
		}
		return s
	case entity.TypeReference:
		return d.elem.Spelling() + "&"
	case entity.TypeRValueReference:
		return d.elem.Spelling() + "&&"
	case entity.TypeArray:
		size, ok := d.Type.ArraySize()
		if !ok {
			return d.elem.Spelling() + "[]"
		}
		return d.elem.Spelling() + "[" + strconv.Itoa(size) + "]"
	default:
		return d.Type.Spelling()
	}
}
