// Package entity defines the read-only view of a parsed C++ declaration tree
// that the analysis core consumes.
package entity

import (
	"fmt"
	"iter"
)

type Kind int

const (
	KindInvalid     Kind = iota
	KindNamespace        // namespace cv { ... }
	KindClass            // class X
	KindStruct           // struct X
	KindMethod           // member function
	KindConstructor      // X(...)
	KindDestructor       // ~X()
	KindField            // data member
	KindConst            // enumerator or static constant
	KindParam            // function parameter
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindStruct:
		return "struct"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindDestructor:
		return "destructor"
	case KindField:
		return "field"
	case KindConst:
		return "const"
	case KindParam:
		return "param"
	default:
		return "invalid"
	}
}

// IsRecord reports whether the entity kind is a class or struct.
func (k Kind) IsRecord() bool {
	return k == KindClass || k == KindStruct
}

// TemplateKind is present only for template patterns (declarations that carry
// template parameters).
type TemplateKind int

const (
	TemplateClass TemplateKind = iota + 1
	TemplatePartialSpecialization
	TemplateFunction
)

type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	default:
		return "public"
	}
}

// Location is a source position. It is comparable.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Entity is a handle to one declaration node. Implementations are cheap to
// copy and compare by USR.
type Entity interface {
	// USR is the stable cross-translation-unit symbol identity.
	USR() string
	Kind() Kind
	// Name is the unqualified spelling, "Mat" for cv::Mat.
	Name() string
	DisplayName() (string, bool)
	// Namespace is the enclosing scope without the entity itself, "" for the
	// global scope. Enclosing classes are part of it: "cv::Mat" for a
	// member of cv::Mat.
	Namespace() string
	Access() Access
	Type() (Type, bool)
	// ResultType is the return type of a callable.
	ResultType() (Type, bool)
	Arguments() iter.Seq[Entity]

	TemplateKind() (TemplateKind, bool)
	TemplateParams() []string
	// Template returns the generic pattern a specialization was produced from.
	Template() (Entity, bool)

	Bases() iter.Seq[Entity]
	Methods() iter.Seq[Entity]
	Fields() iter.Seq[Entity]
	Consts() iter.Seq[Entity]

	Location() (Location, bool)
	Definition() (Entity, bool)
	// IsAbstractRecord reports a pure virtual method on the record or on any
	// of its parents that was not overridden.
	IsAbstractRecord() bool

	IsVirtual() bool
	IsPureVirtual() bool
	IsStatic() bool
	IsConstMethod() bool
	// Value is the initializer spelling of a constant.
	Value() (string, bool)
	// InSystemHeader reports a declaration coming from a system include dir.
	InSystemHeader() bool
}

// Any reports whether seq yields at least one element, stopping right after it.
func Any[T any](seq iter.Seq[T]) bool {
	for range seq {
		return true
	}
	return false
}
