package ast

import (
	"iter"
	"strings"

	"github.com/cmmoran/cxxbind/internal/entity"
)

const maxHierarchyDepth = 64

// Decl is one declaration node: a record, a member, a constant or a parameter.
type Decl struct {
	prog   *Program
	kind   entity.Kind
	name   string
	ns     string
	usr    string
	access entity.Access
	loc    *entity.Location
	system bool
	parent *Decl

	memberAccess entity.Access // access given to members added next

	typ    *TypeExpr // record self type, field type, param type
	result *TypeExpr // callable return type
	args   []*Decl

	bases   []*TypeExpr
	methods []*Decl
	fields  []*Decl
	consts  []*Decl

	templateKind   entity.TemplateKind
	templateParams []string
	templateOf     string // pattern name as spelled, for explicit specializations
	hasBody        bool

	virtual, pureVirtual, static, constMethod bool

	value    string
	hasValue bool
}

var _ entity.Entity = (*Decl)(nil)

// NewRecord adds a record definition (a declaration with a body) to p.
func (p *Program) NewRecord(kind entity.Kind, scope, name string, loc *entity.Location) *Decl {
	d := p.newRecord(kind, scope, name, loc)
	d.hasBody = true
	p.register(d)
	return d
}

// ForwardDecl adds a record declaration without a body to p.
func (p *Program) ForwardDecl(kind entity.Kind, scope, name string, loc *entity.Location) *Decl {
	d := p.newRecord(kind, scope, name, loc)
	p.register(d)
	return d
}

func (p *Program) newRecord(kind entity.Kind, scope, name string, loc *entity.Location) *Decl {
	return &Decl{
		prog: p,
		kind: kind,
		name: name,
		ns:   scope,
		usr:  recordUSR(scope, name, false),
		loc:  loc,
	}
}

// MarkTemplate turns d into a template pattern with the given parameters.
// The USR changes, so it must be called before other declarations refer to d.
func (d *Decl) MarkTemplate(params ...string) *Decl {
	d.templateKind = entity.TemplateClass
	d.templateParams = append([]string(nil), params...)
	d.rekey(recordUSR(d.ns, d.name, true))
	return d
}

// MarkSpecializationOf records that d is an explicit specialization of the
// pattern spelled as pattern, looked up from d's scope.
func (d *Decl) MarkSpecializationOf(pattern string) *Decl {
	d.templateOf = pattern
	return d
}

// MarkSystem flags d as coming from a system header.
func (d *Decl) MarkSystem() *Decl {
	d.system = true
	return d
}

// SetAccess sets the access of d itself.
func (d *Decl) SetAccess(a entity.Access) *Decl {
	d.access = a
	return d
}

// SetMemberAccess sets the access of members added afterwards. Builders
// start out public; the header front-end switches class bodies to private.
func (d *Decl) SetMemberAccess(a entity.Access) *Decl {
	d.memberAccess = a
	return d
}

func (d *Decl) rekey(usr string) {
	p := d.prog
	old := p.byUSR[d.usr]
	for i, x := range old {
		if x == d {
			p.byUSR[d.usr] = append(old[:i:i], old[i+1:]...)
			break
		}
	}
	if len(p.byUSR[d.usr]) == 0 {
		delete(p.byUSR, d.usr)
	}
	d.usr = usr
	p.byUSR[usr] = append(p.byUSR[usr], d)
}

// AddBase appends a direct base, spelled as in the base clause.
func (d *Decl) AddBase(t *TypeExpr) *Decl {
	d.bases = append(d.bases, t)
	return d
}

// AddField appends a data member and returns it.
func (d *Decl) AddField(name string, t *TypeExpr, loc *entity.Location) *Decl {
	f := d.member(entity.KindField, name, loc)
	f.typ = t
	f.usr = d.usr + "@FI@" + name
	d.fields = append(d.fields, f)
	return f
}

// AddMethod appends a member function and returns it. Constructors and
// destructors are recognized by name.
func (d *Decl) AddMethod(name string, result *TypeExpr, loc *entity.Location, args ...*Decl) *Decl {
	kind := entity.KindMethod
	switch {
	case name == stripTemplateArgs(d.name):
		kind = entity.KindConstructor
	case strings.HasPrefix(name, "~"):
		kind = entity.KindDestructor
	}
	m := d.member(kind, name, loc)
	m.result = result
	m.args = args
	for _, a := range args {
		a.prog = d.prog
		a.ns = m.QualifiedName()
	}
	m.rekeyMethod()
	d.methods = append(d.methods, m)
	return m
}

// AddConst appends a named compile-time constant.
func (d *Decl) AddConst(name, value string, loc *entity.Location) *Decl {
	c := d.member(entity.KindConst, name, loc)
	c.value, c.hasValue = value, true
	c.usr = d.usr + "@E@" + name
	d.consts = append(d.consts, c)
	return c
}

func (d *Decl) member(kind entity.Kind, name string, loc *entity.Location) *Decl {
	return &Decl{
		prog:    d.prog,
		kind:    kind,
		name:    name,
		ns:      d.QualifiedName(),
		access:  d.memberAccess,
		parent:  d,
		loc:     loc,
		system:  d.system,
		hasBody: true,
	}
}

func (d *Decl) rekeyMethod() {
	sig := make([]string, 0, len(d.args))
	for _, a := range d.args {
		if a.typ != nil {
			sig = append(sig, a.typ.Spelling())
		}
	}
	d.usr = d.parent.usr + "@F@" + d.name + "#" + strings.Join(sig, ",")
	if d.constMethod {
		d.usr += "#1"
	}
}

// Param builds a function parameter.
func Param(name string, t *TypeExpr) *Decl {
	return &Decl{kind: entity.KindParam, name: name, typ: t, usr: "@P@" + name, hasBody: true}
}

// Virtual marks a method virtual; pure also makes it pure virtual.
func (d *Decl) Virtual(pure bool) *Decl {
	d.virtual = true
	d.pureVirtual = pure
	return d
}

// Static marks a member static.
func (d *Decl) Static() *Decl {
	d.static = true
	return d
}

// ConstMethod marks a method const-qualified.
func (d *Decl) ConstMethod() *Decl {
	d.constMethod = true
	d.rekeyMethod()
	return d
}

// MarkTemplateMethod makes a method a generic (template) member.
func (d *Decl) MarkTemplateMethod(params ...string) *Decl {
	d.templateKind = entity.TemplateFunction
	d.templateParams = append([]string(nil), params...)
	return d
}

// QualifiedName is the scope-qualified name, "cv::Mat".
func (d *Decl) QualifiedName() string {
	return qualify(d.ns, d.name)
}

// HasBody reports a declaration that carries a definition.
func (d *Decl) HasBody() bool { return d.hasBody }

func (d *Decl) USR() string           { return d.usr }
func (d *Decl) Kind() entity.Kind     { return d.kind }
func (d *Decl) Name() string          { return d.name }
func (d *Decl) Namespace() string     { return d.ns }
func (d *Decl) Access() entity.Access { return d.access }
func (d *Decl) InSystemHeader() bool  { return d.system }
func (d *Decl) IsVirtual() bool       { return d.virtual }
func (d *Decl) IsPureVirtual() bool   { return d.pureVirtual }
func (d *Decl) IsStatic() bool        { return d.static }
func (d *Decl) IsConstMethod() bool   { return d.constMethod }

func (d *Decl) DisplayName() (string, bool) {
	if d.name == "" {
		return "", false
	}
	switch d.kind {
	case entity.KindMethod, entity.KindConstructor, entity.KindDestructor:
		sig := make([]string, 0, len(d.args))
		for _, a := range d.args {
			if a.typ != nil {
				sig = append(sig, a.typ.Spelling())
			}
		}
		return d.name + "(" + strings.Join(sig, ", ") + ")", true
	default:
		return d.name, true
	}
}

func (d *Decl) Type() (entity.Type, bool) {
	if d.kind.IsRecord() {
		if d.prog == nil {
			return nil, false
		}
		return &TypeExpr{prog: d.prog, decl: d}, true
	}
	if d.typ == nil {
		return nil, false
	}
	return d.typ, true
}

func (d *Decl) ResultType() (entity.Type, bool) {
	if d.result == nil {
		return nil, false
	}
	return d.result, true
}

func (d *Decl) Arguments() iter.Seq[entity.Entity] {
	return declSeq(d.args)
}

func (d *Decl) TemplateKind() (entity.TemplateKind, bool) {
	if d.templateKind == 0 {
		return 0, false
	}
	return d.templateKind, true
}

func (d *Decl) TemplateParams() []string {
	return d.templateParams
}

func (d *Decl) Template() (entity.Entity, bool) {
	if d.templateOf == "" || d.prog == nil {
		return nil, false
	}
	q, ok := d.prog.resolve(d.ns, stripTemplateArgs(d.templateOf))
	if !ok {
		return nil, false
	}
	pattern, ok := d.prog.Lookup(q)
	if !ok {
		return nil, false
	}
	return pattern, true
}

// maxAliasDepth bounds the typedef layers followed when resolving a base.
const maxAliasDepth = 64

// Bases yields the declarations named in the base clause. A base spelled
// through a typedef or using alias resolves to the aliased record. A base
// that cannot be resolved is yielded as a detached declaration without a
// definition.
func (d *Decl) Bases() iter.Seq[entity.Entity] {
	return func(yield func(entity.Entity) bool) {
		for _, b := range d.bases {
			var base entity.Entity
			if decl, ok := baseDeclaration(b); ok {
				base = decl
			} else {
				scope, local := SplitQualified(b.QualifiedName())
				base = &Decl{kind: entity.KindClass, name: local, ns: scope, usr: recordUSR(scope, local, false)}
			}
			if !yield(base) {
				return
			}
		}
	}
}

func baseDeclaration(b *TypeExpr) (entity.Entity, bool) {
	var t entity.Type = b
	for range maxAliasDepth {
		if t.Kind() != entity.TypeTypedef {
			break
		}
		u, ok := t.Underlying()
		if !ok {
			return nil, false
		}
		t = u
	}
	return t.Declaration()
}

func (d *Decl) Methods() iter.Seq[entity.Entity] { return declSeq(d.methods) }
func (d *Decl) Fields() iter.Seq[entity.Entity]  { return declSeq(d.fields) }
func (d *Decl) Consts() iter.Seq[entity.Entity]  { return declSeq(d.consts) }

func declSeq(decls []*Decl) iter.Seq[entity.Entity] {
	return func(yield func(entity.Entity) bool) {
		for _, d := range decls {
			if !yield(d) {
				return
			}
		}
	}
}

func (d *Decl) Location() (entity.Location, bool) {
	if d.loc == nil {
		return entity.Location{}, false
	}
	return *d.loc, true
}

func (d *Decl) Definition() (entity.Entity, bool) {
	if !d.kind.IsRecord() {
		if d.hasBody {
			return d, true
		}
		return nil, false
	}
	if d.prog == nil {
		return nil, false
	}
	def, ok := d.prog.definition(d.usr)
	if !ok {
		return nil, false
	}
	return def, true
}

func (d *Decl) Value() (string, bool) {
	return d.value, d.hasValue
}

func (d *Decl) IsAbstractRecord() bool {
	return len(d.unimplementedPure(0)) > 0
}

// unimplementedPure collects pure virtual signatures of d and its bases that
// no class on the path down to d overrides.
func (d *Decl) unimplementedPure(depth int) map[string]struct{} {
	out := make(map[string]struct{})
	if depth > maxHierarchyDepth {
		return out
	}
	for base := range d.Bases() {
		def, ok := base.Definition()
		if !ok {
			continue
		}
		if bd, ok := def.(*Decl); ok {
			for sig := range bd.unimplementedPure(depth + 1) {
				out[sig] = struct{}{}
			}
		}
	}
	for _, m := range d.methods {
		sig := m.overrideKey()
		if m.pureVirtual {
			out[sig] = struct{}{}
		} else {
			delete(out, sig)
		}
	}
	return out
}

func (d *Decl) overrideKey() string {
	key, _ := d.DisplayName()
	if d.constMethod {
		key += " const"
	}
	return key
}
