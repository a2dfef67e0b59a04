package model_test

import (
	"iter"

	"github.com/cmmoran/cxxbind/internal/entity"
)

// fakeEntity is a hand-built declaration for the cases the ast builder
// refuses to produce, such as a record without a type.
type fakeEntity struct {
	usr  string
	name string
	ns   string
	kind entity.Kind
	loc  *entity.Location
	def  *fakeEntity
}

var _ entity.Entity = (*fakeEntity)(nil)

func (f *fakeEntity) USR() string       { return f.usr }
func (f *fakeEntity) Kind() entity.Kind { return f.kind }
func (f *fakeEntity) Name() string      { return f.name }
func (f *fakeEntity) Namespace() string { return f.ns }

func (f *fakeEntity) DisplayName() (string, bool) { return f.name, f.name != "" }
func (f *fakeEntity) Access() entity.Access       { return entity.AccessPublic }
func (f *fakeEntity) Type() (entity.Type, bool)   { return nil, false }

func (f *fakeEntity) ResultType() (entity.Type, bool)    { return nil, false }
func (f *fakeEntity) Arguments() iter.Seq[entity.Entity] { return none }

func (f *fakeEntity) TemplateKind() (entity.TemplateKind, bool) { return 0, false }
func (f *fakeEntity) TemplateParams() []string                  { return nil }
func (f *fakeEntity) Template() (entity.Entity, bool)           { return nil, false }

func (f *fakeEntity) Bases() iter.Seq[entity.Entity]   { return none }
func (f *fakeEntity) Methods() iter.Seq[entity.Entity] { return none }
func (f *fakeEntity) Fields() iter.Seq[entity.Entity]  { return none }
func (f *fakeEntity) Consts() iter.Seq[entity.Entity]  { return none }

func (f *fakeEntity) Location() (entity.Location, bool) {
	if f.loc == nil {
		return entity.Location{}, false
	}
	return *f.loc, true
}

func (f *fakeEntity) Definition() (entity.Entity, bool) {
	if f.def == nil {
		return nil, false
	}
	return f.def, true
}

func (f *fakeEntity) IsAbstractRecord() bool { return false }
func (f *fakeEntity) IsVirtual() bool        { return false }
func (f *fakeEntity) IsPureVirtual() bool    { return false }
func (f *fakeEntity) IsStatic() bool         { return false }
func (f *fakeEntity) IsConstMethod() bool    { return false }
func (f *fakeEntity) Value() (string, bool)  { return "", false }
func (f *fakeEntity) InSystemHeader() bool   { return false }

func none(func(entity.Entity) bool) {}
