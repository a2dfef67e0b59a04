package parser

import (
	"slices"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cmmoran/cxxbind/internal/ast"
	"github.com/cmmoran/cxxbind/internal/entity"
)

// walker turns one syntax tree into declarations of the shared program.
type walker struct {
	prog    *ast.Program
	file    string
	src     []byte
	system  bool
	tparams []string // template parameters visible at the current node
	records int
}

// templateHead carries the parameters of an enclosing template<...>.
type templateHead struct {
	params []string
}

func (w *walker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Content(w.src))
}

func (w *walker) loc(n *sitter.Node) *entity.Location {
	pt := n.StartPoint()
	return &entity.Location{File: w.file, Line: int(pt.Row) + 1, Column: int(pt.Column) + 1}
}

func (w *walker) withParams(params []string, fn func()) {
	saved := w.tparams
	w.tparams = append(slices.Clone(saved), params...)
	fn()
	w.tparams = saved
}

func (w *walker) isTemplateParam(name string) bool {
	return slices.Contains(w.tparams, name)
}

// declarations walks the items of a translation unit or namespace body.
func (w *walker) declarations(n *sitter.Node, scope string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.declaration(n.NamedChild(i), scope, nil)
	}
}

func (w *walker) declaration(n *sitter.Node, scope string, tpl *templateHead) {
	switch n.Type() {
	case "namespace_definition":
		inner := scope
		if name := n.ChildByFieldName("name"); name != nil && !isInline(n) {
			inner = qualify(scope, strings.Join(strings.Fields(w.text(name)), ""))
		}
		if body := n.ChildByFieldName("body"); body != nil {
			w.declarations(body, inner)
		}
	case "linkage_specification":
		if body := n.ChildByFieldName("body"); body != nil {
			if body.Type() == "declaration_list" {
				w.declarations(body, scope)
			} else {
				w.declaration(body, scope, nil)
			}
		}
	case "declaration_list", "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef", "ERROR":
		w.declarations(n, scope)
	case "template_declaration":
		head := &templateHead{params: w.templateParams(n.ChildByFieldName("parameters"))}
		w.withParams(head.params, func() {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				c := n.NamedChild(i)
				if c.Type() == "template_parameter_list" {
					continue
				}
				w.declaration(c, scope, head)
			}
		})
	case "class_specifier", "struct_specifier":
		w.record(n, scope, tpl, entity.AccessPublic)
	case "enum_specifier":
		w.enum(n, scope, nil)
	case "declaration":
		// struct X { ... } x; declares the record as a side effect
		if t := n.ChildByFieldName("type"); t != nil && t.ChildByFieldName("body") != nil {
			w.declaration(t, scope, tpl)
		}
	case "type_definition":
		w.typedef(n, scope)
	case "alias_declaration":
		if tpl != nil {
			return
		}
		name := n.ChildByFieldName("name")
		if t := n.ChildByFieldName("type"); name != nil && t != nil {
			w.prog.AddTypedef(scope, w.text(name), w.typeExpr(t, scope))
		}
	}
}

func isInline(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "inline" {
			return true
		}
	}
	return false
}

// record declares a class or struct and, when it has a body, its members.
func (w *walker) record(n *sitter.Node, scope string, tpl *templateHead, access entity.Access) *ast.Decl {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	kind := entity.KindClass
	if n.Type() == "struct_specifier" {
		kind = entity.KindStruct
	}
	scope, name, pattern := w.recordName(nameNode, scope)
	body := n.ChildByFieldName("body")

	var d *ast.Decl
	if body == nil {
		d = w.prog.ForwardDecl(kind, scope, name, w.loc(n))
	} else {
		d = w.prog.NewRecord(kind, scope, name, w.loc(n))
	}
	w.records++
	d.SetAccess(access)
	if w.system {
		d.MarkSystem()
	}
	switch {
	case pattern != "":
		d.MarkSpecializationOf(pattern)
	case tpl != nil:
		d.MarkTemplate(tpl.params...)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "base_class_clause" {
			w.bases(c, d, scope)
		}
	}
	if body != nil {
		if kind == entity.KindClass {
			d.SetMemberAccess(entity.AccessPrivate)
		}
		w.members(body, d, kind == entity.KindClass)
	}
	return d
}

// recordName splits the declared name of a record. An explicit
// specialization, Ptr<Mat>, also yields its pattern name.
func (w *walker) recordName(n *sitter.Node, scope string) (string, string, string) {
	switch n.Type() {
	case "template_type":
		pattern := w.text(n.ChildByFieldName("name"))
		args := w.templateArgs(n.ChildByFieldName("arguments"), scope)
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, a.Spelling())
		}
		return scope, pattern + "<" + strings.Join(parts, ", ") + ">", pattern
	case "qualified_identifier":
		inner := qualify(scope, w.text(n.ChildByFieldName("scope")))
		return w.recordName(n.ChildByFieldName("name"), inner)
	default:
		return scope, w.text(n), ""
	}
}

func (w *walker) bases(clause *sitter.Node, d *ast.Decl, scope string) {
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		c := clause.NamedChild(i)
		switch c.Type() {
		case "type_identifier", "qualified_identifier", "template_type":
			d.AddBase(w.typeExpr(c, scope))
		}
	}
}

// members walks a record body. Access starts private for classes.
func (w *walker) members(body *sitter.Node, d *ast.Decl, isClass bool) {
	access := entity.AccessPublic
	if isClass {
		access = entity.AccessPrivate
	}
	scope := d.QualifiedName()
	var walk func(n *sitter.Node, tpl *templateHead)
	walk = func(n *sitter.Node, tpl *templateHead) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			switch c.Type() {
			case "access_specifier":
				access = parseAccess(w.text(c))
				d.SetMemberAccess(access)
			case "field_declaration", "declaration", "function_definition":
				w.member(c, d, scope, tpl, access)
			case "template_declaration":
				head := &templateHead{params: w.templateParams(c.ChildByFieldName("parameters"))}
				w.withParams(head.params, func() { walk(c, head) })
			case "class_specifier", "struct_specifier":
				w.record(c, scope, tpl, access)
			case "enum_specifier":
				w.enum(c, scope, d)
			case "type_definition":
				w.typedef(c, scope)
			case "alias_declaration":
				name := c.ChildByFieldName("name")
				if t := c.ChildByFieldName("type"); name != nil && t != nil && tpl == nil {
					w.prog.AddTypedef(scope, w.text(name), w.typeExpr(t, scope))
				}
			case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef":
				walk(c, tpl)
			}
		}
	}
	walk(body, nil)
}

func parseAccess(s string) entity.Access {
	switch {
	case strings.Contains(s, "protected"):
		return entity.AccessProtected
	case strings.Contains(s, "private"):
		return entity.AccessPrivate
	default:
		return entity.AccessPublic
	}
}

// member handles one member declaration: nested types declared in place,
// data members, static constants and member functions.
func (w *walker) member(n *sitter.Node, d *ast.Decl, scope string, tpl *templateHead, access entity.Access) {
	typeNode := n.ChildByFieldName("type")
	if typeNode != nil && typeNode.ChildByFieldName("body") != nil {
		switch typeNode.Type() {
		case "class_specifier", "struct_specifier":
			w.record(typeNode, scope, tpl, access)
		case "enum_specifier":
			w.enum(typeNode, scope, d)
		}
	}

	static := w.hasChild(n, "storage_class_specifier", "static")
	constant := w.hasChild(n, "type_qualifier", "const") || w.hasChild(n, "type_qualifier", "constexpr")
	for _, decl := range w.declarators(n) {
		if fn := functionDeclarator(decl); fn != nil {
			w.method(n, d, scope, tpl, typeNode, decl, fn)
			continue
		}
		if typeNode == nil {
			continue
		}
		t, name := w.declare(w.baseType(typeNode, n, scope), decl, scope)
		if name == "" {
			continue
		}
		if static {
			// static data members are not instance fields; constants with
			// an initializer become class constants
			if value := w.initializer(n, decl); constant && value != "" {
				d.AddConst(name, value, w.loc(decl))
			}
			continue
		}
		d.AddField(name, t, w.loc(decl))
	}
}

var declaratorTypes = map[string]bool{
	"field_identifier":         true,
	"type_identifier":          true,
	"identifier":               true,
	"destructor_name":          true,
	"operator_name":            true,
	"qualified_identifier":     true,
	"template_function":        true,
	"pointer_declarator":       true,
	"reference_declarator":     true,
	"array_declarator":         true,
	"function_declarator":      true,
	"init_declarator":          true,
	"parenthesized_declarator": true,
}

// declarators lists the declarators of a declaration: every declarator
// child other than the type and the default value.
func (w *walker) declarators(n *sitter.Node) []*sitter.Node {
	typeNode := n.ChildByFieldName("type")
	value := n.ChildByFieldName("default_value")
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if !declaratorTypes[c.Type()] || sameNode(c, typeNode) || sameNode(c, value) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// initializer is the value of a member declaration: "= 5" on the
// declaration or inside an init declarator.
func (w *walker) initializer(n, decl *sitter.Node) string {
	if decl.Type() == "init_declarator" {
		return w.text(decl.ChildByFieldName("value"))
	}
	return w.text(n.ChildByFieldName("default_value"))
}

// functionDeclarator finds the function declarator a declarator names, nil
// for data members. Function pointers are data members.
func functionDeclarator(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "function_declarator":
			if inner := n.ChildByFieldName("declarator"); inner != nil && inner.Type() == "parenthesized_declarator" {
				return nil
			}
			return n
		case "pointer_declarator", "array_declarator", "init_declarator":
			n = n.ChildByFieldName("declarator")
		case "reference_declarator":
			n = firstNamed(n)
		default:
			return nil
		}
	}
	return nil
}

func firstNamed(n *sitter.Node) *sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

func (w *walker) method(n *sitter.Node, d *ast.Decl, scope string, tpl *templateHead, typeNode, decl, fn *sitter.Node) {
	if hasChildType(n, "delete_method_clause") {
		return
	}
	var result *ast.TypeExpr
	if typeNode != nil {
		result = w.baseType(typeNode, n, scope)
	}
	result, name := w.declare(result, decl, scope)
	if name == "" {
		return
	}
	if i := strings.LastIndex(name, "::"); i >= 0 && !strings.Contains(name, "<") {
		name = name[i+2:]
	}

	m := d.AddMethod(name, result, w.loc(n), w.params(fn.ChildByFieldName("parameters"), scope)...)
	if w.hasChild(n, "virtual", "") || w.hasChild(n, "virtual_function_specifier", "") || hasChildType(fn, "virtual_specifier") {
		m.Virtual(w.isPure(n))
	}
	if w.hasChild(n, "storage_class_specifier", "static") {
		m.Static()
	}
	if w.hasChild(fn, "type_qualifier", "const") {
		m.ConstMethod()
	}
	if tpl != nil {
		m.MarkTemplateMethod(tpl.params...)
	}
}

// isPure recognizes "= 0" after a member function declaration.
func (w *walker) isPure(n *sitter.Node) bool {
	if hasChildType(n, "pure_virtual_clause") {
		return true
	}
	if v := n.ChildByFieldName("default_value"); v != nil {
		return w.text(v) == "0"
	}
	for i := 1; i < int(n.ChildCount()); i++ {
		if n.Child(i-1).Type() == "=" && w.text(n.Child(i)) == "0" {
			return true
		}
	}
	return false
}

func (w *walker) params(list *sitter.Node, scope string) []*ast.Decl {
	if list == nil {
		return nil
	}
	var out []*ast.Decl
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		switch c.Type() {
		case "parameter_declaration", "optional_parameter_declaration":
		default:
			continue
		}
		base := w.baseType(c.ChildByFieldName("type"), c, scope)
		if base == nil {
			continue
		}
		decl := c.ChildByFieldName("declarator")
		if decl == nil && base.Kind() == entity.TypeVoid {
			continue // f(void)
		}
		t, name := w.declare(base, decl, scope)
		if name == "" {
			name = "arg" + strconv.Itoa(len(out))
		}
		out = append(out, ast.Param(name, t))
	}
	return out
}

// enum registers an enum type. Enumerators of an unscoped enum declared in
// a record become constants of that record.
func (w *walker) enum(n *sitter.Node, scope string, owner *ast.Decl) {
	if name := n.ChildByFieldName("name"); name != nil {
		w.prog.AddEnum(scope, w.text(name))
	}
	body := n.ChildByFieldName("body")
	if body == nil || owner == nil || hasChildType(n, "class") || hasChildType(n, "struct") {
		return
	}
	var (
		next  int64
		known = true
		prev  string
	)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		e := body.NamedChild(i)
		if e.Type() != "enumerator" {
			continue
		}
		var value string
		switch v := e.ChildByFieldName("value"); {
		case v != nil:
			value = w.text(v)
			parsed, err := strconv.ParseInt(value, 0, 64)
			next, known = parsed, err == nil
		case known:
			value = strconv.FormatInt(next, 10)
		default:
			value = prev + " + 1"
		}
		next++
		prev = value
		owner.AddConst(w.text(e.ChildByFieldName("name")), value, w.loc(e))
	}
}

func (w *walker) typedef(n *sitter.Node, scope string) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil {
		return
	}
	if typeNode.ChildByFieldName("body") != nil && typeNode.ChildByFieldName("name") != nil {
		w.declaration(typeNode, scope, nil)
	}
	base := w.baseType(typeNode, n, scope)
	for _, decl := range w.declarators(n) {
		t, name := w.declare(base, decl, scope)
		if name != "" {
			w.prog.AddTypedef(scope, name, t)
		}
	}
}

func (w *walker) templateParams(list *sitter.Node) []string {
	if list == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		var name string
		switch c.Type() {
		case "type_parameter_declaration", "variadic_type_parameter_declaration", "template_template_parameter_declaration":
			name = w.text(childOfType(c, "type_identifier"))
		case "optional_type_parameter_declaration":
			name = w.text(c.ChildByFieldName("name"))
		case "parameter_declaration", "optional_parameter_declaration", "variadic_parameter_declaration":
			_, name = w.declare(nil, c.ChildByFieldName("declarator"), "")
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// hasChild reports a direct child of type typ, with text text when given.
func (w *walker) hasChild(n *sitter.Node, typ, text string) bool {
	if n == nil {
		return false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == typ && (text == "" || w.text(c) == text) {
			return true
		}
	}
	return false
}

func hasChildType(n *sitter.Node, typ string) bool {
	return childOfType(n, typ) != nil
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "::" + name
}
