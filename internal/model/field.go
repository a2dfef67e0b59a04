package model

import (
	"github.com/cespare/xxhash/v2"

	"github.com/cmmoran/cxxbind/internal/entity"
)

// Field is a view of a data member.
type Field struct {
	entity entity.Entity
	env    *Env
}

func NewField(e entity.Entity, env *Env) Field {
	return Field{entity: e, env: env}
}

func (f Field) Entity() entity.Entity { return f.entity }
func (f Field) Name() string          { return f.entity.Name() }
func (f Field) FullName() string      { return qualify(f.entity.Namespace(), f.entity.Name()) }
func (f Field) ID() string            { return f.entity.USR() }
func (f Field) Equal(o Field) bool    { return f.ID() == o.ID() }
func (f Field) Hash() uint64          { return xxhash.Sum64String(f.ID()) }

// TypeRef is the declared type. A field whose type the front-end could not
// read gets an unknown type, which is neither copyable nor dependent.
func (f Field) TypeRef() TypeRef {
	t, _ := f.entity.Type()
	return NewTypeRef(t, f.env)
}

// IsExcluded reports a field that gets no accessors: matched by an exclusion
// pattern, not public, or of a type referring to a class that is not
// surfaced.
func (f Field) IsExcluded() bool {
	return f.env.IsExcludedName(f.FullName()) ||
		f.entity.Access() != entity.AccessPublic ||
		f.TypeRef().IsExcluded()
}

// Const is a named compile-time constant of a class.
type Const struct {
	entity entity.Entity
}

func NewConst(e entity.Entity) Const {
	return Const{entity: e}
}

func (c Const) Entity() entity.Entity { return c.entity }
func (c Const) Name() string          { return c.entity.Name() }
func (c Const) FullName() string      { return qualify(c.entity.Namespace(), c.entity.Name()) }
func (c Const) ID() string            { return c.entity.USR() }
func (c Const) Equal(o Const) bool    { return c.ID() == o.ID() }

// Value is the initializer as spelled, "" when there is none.
func (c Const) Value() string {
	v, _ := c.entity.Value()
	return v
}
