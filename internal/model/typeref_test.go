package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmmoran/cxxbind/internal/ast"
	"github.com/cmmoran/cxxbind/internal/entity"
	"github.com/cmmoran/cxxbind/internal/model"
)

func TestTypeRef(ttt *testing.T) {
	p := ast.NewProgram()
	p.NewRecord(entity.KindStruct, "cv", "Scalar", at(1)).AddField("val", ast.Array(ast.Prim("double"), 4), at(2))
	p.NewRecord(entity.KindClass, "cv", "String", at(3))
	p.AddEnum("cv", "BorderTypes")
	p.AddTypedef("cv", "uchar_ptr", ast.Pointer(ast.Prim("uchar")))
	env := newEnv(ttt, p)

	tests := []struct {
		name      string
		typ       *ast.TypeExpr
		wantCopy  bool
		wantConst bool
		wantArray int
		wantStr   model.StringKind
	}{
		{name: "int", typ: ast.Prim("int"), wantCopy: true},
		{name: "const double", typ: ast.Prim("double").Const(), wantCopy: true, wantConst: true},
		{name: "enum", typ: p.Named("cv", "BorderTypes"), wantCopy: true},
		{name: "value record", typ: p.Named("cv", "Scalar"), wantCopy: true},
		{name: "fixed array", typ: ast.Array(ast.Prim("float"), 3), wantCopy: true, wantArray: 3},
		{name: "unsized array", typ: ast.UnsizedArray(ast.Prim("float"))},
		{name: "pointer", typ: ast.Pointer(ast.Prim("int"))},
		{name: "typedef to pointer", typ: p.Named("cv", "uchar_ptr")},
		{name: "reference to const", typ: ast.Reference(p.Named("cv", "Scalar").Const()), wantConst: true},
		{name: "std::string", typ: p.Named("cv", "std::string"), wantStr: model.StringStd},
		{name: "cv::String", typ: p.Named("cv", "String"), wantStr: model.StringCv},
		{name: "const char*", typ: ast.Pointer(ast.Prim("char").Const()), wantStr: model.StringCharPtr},
		{name: "template parameter", typ: ast.TemplateParam("T")},
		{name: "void", typ: ast.Prim("void")},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			r := model.NewTypeRef(tt.typ, env)
			require.Equal(t, tt.wantCopy, r.IsCopy(), "IsCopy")
			require.Equal(t, tt.wantConst, r.IsConst(), "IsConst")

			_, size, ok := r.AsFixedArray()
			require.Equal(t, tt.wantArray != 0, ok, "AsFixedArray")
			require.Equal(t, tt.wantArray, size)

			kind, ok := r.AsString()
			require.Equal(t, tt.wantStr != 0, ok, "AsString")
			require.Equal(t, tt.wantStr, kind)
		})
	}
}

func TestTypeRefUnknown(t *testing.T) {
	r := model.NewTypeRef(nil, nil)
	require.Equal(t, entity.TypeUnknown, r.Kind())
	require.False(t, r.IsCopy())
	require.Empty(t, r.DependentTypes(model.ForReturn(model.DefinitionModule)))
	_, ok := r.Class()
	require.False(t, ok)
}

func TestTypeRefContainers(t *testing.T) {
	p := ast.NewProgram()
	env := newEnv(t, p)
	vec := model.NewTypeRef(p.Named("", "std::vector", ast.Prim("int")), env)
	ptr := model.NewTypeRef(p.Named("", "std::shared_ptr", ast.Prim("int")), env)
	tup := model.NewTypeRef(p.Named("", "std::tuple", ast.Prim("int"), ast.Prim("float")), env)

	require.True(t, vec.IsVector())
	require.False(t, vec.IsSmartPtr())
	require.True(t, ptr.IsSmartPtr())
	require.True(t, tup.IsTuple())
	require.Len(t, tup.TemplateArgs(), 2)
	require.False(t, vec.IsCopy())
}
