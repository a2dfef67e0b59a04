package parser

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/cmmoran/cxxbind/internal/ast"
)

// baseType is the type specifier of a declaration with the cv-qualifiers
// written next to it, before any declarator is applied.
func (w *walker) baseType(typeNode, decl *sitter.Node, scope string) *ast.TypeExpr {
	if typeNode == nil {
		return nil
	}
	t := w.typeExpr(typeNode, scope)
	if w.hasChild(decl, "type_qualifier", "const") || w.hasChild(decl, "type_qualifier", "constexpr") {
		t = t.Const()
	}
	return t
}

func (w *walker) typeExpr(n *sitter.Node, scope string) *ast.TypeExpr {
	switch n.Type() {
	case "primitive_type":
		return ast.Prim(w.text(n))
	case "sized_type_specifier":
		return ast.Prim(strings.Join(strings.Fields(w.text(n)), " "))
	case "type_identifier":
		if name := w.text(n); w.isTemplateParam(name) {
			return ast.TemplateParam(name)
		}
		return w.prog.Named(scope, w.text(n))
	case "qualified_identifier", "template_type", "namespace_identifier", "identifier":
		name, args := w.qualifiedName(n, scope)
		return w.prog.Named(scope, name, args...)
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		if name := n.ChildByFieldName("name"); name != nil {
			return w.typeExpr(name, scope)
		}
	case "dependent_type":
		if inner := firstNamed(n); inner != nil {
			return w.typeExpr(inner, scope)
		}
	case "type_descriptor":
		return w.typeDescriptor(n, scope)
	}
	// auto, decltype(...) and anything else stays an unresolved name
	return w.prog.Named(scope, strings.Join(strings.Fields(w.text(n)), " "))
}

// qualifiedName flattens cv::Ptr<Feature2D> into "cv::Ptr" and its
// arguments.
func (w *walker) qualifiedName(n *sitter.Node, scope string) (string, []*ast.TypeExpr) {
	switch n.Type() {
	case "qualified_identifier":
		prefix := w.text(n.ChildByFieldName("scope"))
		name, args := w.qualifiedName(n.ChildByFieldName("name"), scope)
		return prefix + "::" + name, args
	case "template_type":
		return w.text(n.ChildByFieldName("name")), w.templateArgs(n.ChildByFieldName("arguments"), scope)
	default:
		return w.text(n), nil
	}
}

func (w *walker) templateArgs(list *sitter.Node, scope string) []*ast.TypeExpr {
	if list == nil {
		return nil
	}
	var out []*ast.TypeExpr
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		switch c.Type() {
		case "type_descriptor":
			out = append(out, w.typeDescriptor(c, scope))
		case "comment":
		default:
			out = append(out, ast.Literal(strings.Join(strings.Fields(w.text(c)), " ")))
		}
	}
	return out
}

// typeDescriptor is a type written without a name: template arguments,
// alias targets.
func (w *walker) typeDescriptor(n *sitter.Node, scope string) *ast.TypeExpr {
	t := w.baseType(n.ChildByFieldName("type"), n, scope)
	if t == nil {
		return w.prog.Named(scope, w.text(n))
	}
	t, _ = w.declare(t, n.ChildByFieldName("declarator"), scope)
	return t
}

// declare applies a declarator to base from the outside in and returns the
// declared type and name. Function declarators leave base as the return
// type.
func (w *walker) declare(base *ast.TypeExpr, decl *sitter.Node, scope string) (*ast.TypeExpr, string) {
	for decl != nil {
		switch decl.Type() {
		case "identifier", "field_identifier", "type_identifier", "destructor_name", "operator_name",
			"qualified_identifier", "template_function":
			return base, w.text(decl)
		case "pointer_declarator", "abstract_pointer_declarator":
			if base != nil {
				base = ast.Pointer(base)
				if w.hasChild(decl, "type_qualifier", "const") {
					base = base.Const()
				}
			}
			decl = decl.ChildByFieldName("declarator")
		case "reference_declarator", "abstract_reference_declarator":
			if base != nil {
				if hasChildType(decl, "&&") {
					base = ast.RValueReference(base)
				} else {
					base = ast.Reference(base)
				}
			}
			decl = firstNamed(decl)
		case "array_declarator", "abstract_array_declarator":
			if base != nil {
				if size, err := strconv.Atoi(w.text(decl.ChildByFieldName("size"))); err == nil {
					base = ast.Array(base, size)
				} else {
					base = ast.UnsizedArray(base)
				}
			}
			decl = decl.ChildByFieldName("declarator")
		case "function_declarator", "abstract_function_declarator", "init_declarator":
			decl = decl.ChildByFieldName("declarator")
		case "parenthesized_declarator", "abstract_parenthesized_declarator":
			decl = firstNamed(decl)
		default:
			return base, ""
		}
	}
	return base, ""
}
