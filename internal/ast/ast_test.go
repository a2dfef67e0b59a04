package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmmoran/cxxbind/internal/ast"
	"github.com/cmmoran/cxxbind/internal/entity"
)

func loc(line int) *entity.Location {
	return &entity.Location{File: "core.hpp", Line: line, Column: 1}
}

func TestParseSpelling(ttt *testing.T) {
	p := ast.NewProgram()
	p.NewRecord(entity.KindClass, "cv", "Mat", loc(1))
	p.NewRecord(entity.KindStruct, "cv", "Point", loc(2))

	tests := []struct {
		spelling string
		scope    string
		want     string
		kind     entity.TypeKind
	}{
		{spelling: "int", want: "int", kind: entity.TypePrimitive},
		{spelling: "unsigned   int", want: "unsigned int", kind: entity.TypePrimitive},
		{spelling: "const int", want: "const int", kind: entity.TypePrimitive},
		{spelling: "Mat", scope: "cv", want: "cv::Mat", kind: entity.TypeRecord},
		{spelling: "const Mat&", scope: "cv::Mat", want: "const cv::Mat&", kind: entity.TypeReference},
		{spelling: "cv::Point*", want: "cv::Point*", kind: entity.TypePointer},
		{spelling: "int* const", want: "int* const", kind: entity.TypePointer},
		{spelling: "const char*", want: "const char*", kind: entity.TypePointer},
		{spelling: "std::vector<cv::Point>", want: "std::vector<cv::Point>", kind: entity.TypeRecord},
		{spelling: "std::vector<std::vector<int> >&&", want: "std::vector<std::vector<int>>&&", kind: entity.TypeRValueReference},
		{spelling: "Vec<float, 3>", scope: "cv", want: "Vec<float, 3>", kind: entity.TypeRecord},
		{spelling: "std::map<int, Point>", scope: "cv", want: "std::map<int, cv::Point>", kind: entity.TypeRecord},
	}
	for _, tt := range tests {
		ttt.Run(tt.spelling, func(t *testing.T) {
			got, ok := p.ResolveSpelling(tt.scope, tt.spelling)
			require.True(t, ok)
			require.Equal(t, tt.want, got.Spelling())
			require.Equal(t, tt.kind, got.Kind())
		})
	}

	_, ok := p.ResolveSpelling("", "   ")
	require.False(ttt, ok)
	_, ok = p.ResolveSpelling("", "const")
	require.False(ttt, ok)
}

func TestLookupAndDefinition(t *testing.T) {
	p := ast.NewProgram()
	fwd := p.ForwardDecl(entity.KindClass, "cv", "Algorithm", loc(1))
	def := p.NewRecord(entity.KindClass, "cv", "Algorithm", loc(10))
	only := p.ForwardDecl(entity.KindClass, "cv", "Stream", loc(20))

	got, ok := p.Lookup("cv::Algorithm")
	require.True(t, ok)
	require.Same(t, def, got)
	require.Equal(t, fwd.USR(), def.USR())

	d, ok := fwd.Definition()
	require.True(t, ok)
	require.Equal(t, def.USR(), d.USR())
	l, _ := d.Location()
	require.Equal(t, 10, l.Line)

	_, ok = only.Definition()
	require.False(t, ok)
	require.Len(t, p.Records(), 3)
}

func TestNameResolution(t *testing.T) {
	p := ast.NewProgram()
	p.NewRecord(entity.KindClass, "cv", "Mat", loc(1))
	p.NewRecord(entity.KindClass, "cv::cuda", "GpuMat", loc(2))
	p.AddEnum("cv", "BorderTypes")
	p.AddTypedef("cv", "MatPtr", ast.Pointer(p.Named("cv", "Mat")))

	inner := p.Named("cv::cuda", "Mat")
	require.Equal(t, "cv::Mat", inner.QualifiedName())
	require.Equal(t, entity.TypeRecord, inner.Kind())

	rel := p.Named("cv", "cuda::GpuMat")
	require.Equal(t, "cv::cuda::GpuMat", rel.QualifiedName())

	require.Equal(t, entity.TypeEnum, p.Named("cv::cuda", "BorderTypes").Kind())

	td := p.Named("cv", "MatPtr").Const()
	require.Equal(t, entity.TypeTypedef, td.Kind())
	under, ok := td.Underlying()
	require.True(t, ok)
	require.Equal(t, entity.TypePointer, under.Kind())
	require.True(t, under.IsConst())

	require.Equal(t, entity.TypeUnknown, p.Named("cv", "Unknown").Kind())
	_, ok = p.Named("cv", "Unknown").Declaration()
	require.False(t, ok)
}

func TestSpecializationLookup(t *testing.T) {
	p := ast.NewProgram()
	tpl := p.NewRecord(entity.KindClass, "cv", "Ptr", loc(1)).MarkTemplate("T")
	spec := p.NewRecord(entity.KindClass, "cv", "Ptr<int>", loc(2)).MarkSpecializationOf("Ptr")

	d, ok := p.Named("cv", "Ptr", ast.Prim("int")).Declaration()
	require.True(t, ok)
	require.Equal(t, spec.USR(), d.USR())

	d, ok = p.Named("cv", "Ptr", ast.Prim("float")).Declaration()
	require.True(t, ok)
	require.Equal(t, tpl.USR(), d.USR())

	pattern, ok := spec.Template()
	require.True(t, ok)
	require.Equal(t, tpl.USR(), pattern.USR())
	_, ok = tpl.Template()
	require.False(t, ok)

	k, ok := tpl.TemplateKind()
	require.True(t, ok)
	require.Equal(t, entity.TemplateClass, k)
	require.Equal(t, []string{"T"}, tpl.TemplateParams())
}

func TestAliasedBases(t *testing.T) {
	p := ast.NewProgram()
	p.NewRecord(entity.KindClass, "cv", "Feature2D", loc(1))
	p.AddTypedef("cv", "FeatureDetector", p.Named("cv", "Feature2D"))
	p.AddTypedef("cv", "DescriptorExtractor", p.Named("cv", "FeatureDetector"))
	p.AddTypedef("cv", "Loop", p.Named("cv", "Loop"))

	blob := p.NewRecord(entity.KindClass, "cv", "SimpleBlobDetector", loc(10))
	blob.AddBase(p.Named("cv", "FeatureDetector"))
	blob.AddBase(p.Named("cv", "DescriptorExtractor"))
	blob.AddBase(p.Named("cv", "Loop"))

	var got []string
	var defined []bool
	for b := range blob.Bases() {
		got = append(got, b.Namespace()+"::"+b.Name())
		_, ok := b.Definition()
		defined = append(defined, ok)
	}
	require.Equal(t, []string{"cv::Feature2D", "cv::Feature2D", "cv::Loop"}, got)
	require.Equal(t, []bool{true, true, false}, defined)
}

func TestIsAbstractRecord(t *testing.T) {
	p := ast.NewProgram()
	base := p.NewRecord(entity.KindClass, "cv", "Algorithm", loc(1))
	base.AddMethod("compute", ast.Prim("void"), loc(2), ast.Param("x", ast.Prim("int"))).Virtual(true)
	base.AddMethod("empty", ast.Prim("bool"), loc(3)).ConstMethod().Virtual(true)

	partial := p.NewRecord(entity.KindClass, "cv", "Partial", loc(10))
	partial.AddBase(p.Named("cv", "Algorithm"))
	partial.AddMethod("compute", ast.Prim("void"), loc(11), ast.Param("y", ast.Prim("int"))).Virtual(false)

	full := p.NewRecord(entity.KindClass, "cv", "Full", loc(20))
	full.AddBase(p.Named("cv", "Partial"))
	full.AddMethod("empty", ast.Prim("bool"), loc(21)).ConstMethod().Virtual(false)

	nonConst := p.NewRecord(entity.KindClass, "cv", "Mismatch", loc(30))
	nonConst.AddBase(p.Named("cv", "Partial"))
	nonConst.AddMethod("empty", ast.Prim("bool"), loc(31)).Virtual(false)

	require.True(t, base.IsAbstractRecord())
	require.True(t, partial.IsAbstractRecord())
	require.False(t, full.IsAbstractRecord())
	require.True(t, nonConst.IsAbstractRecord(), "a non-const method does not override a const one")
}

func TestMembers(t *testing.T) {
	p := ast.NewProgram()
	d := p.NewRecord(entity.KindClass, "cv", "Mat", loc(1))
	d.SetMemberAccess(entity.AccessPrivate)
	f := d.AddField("flags", ast.Prim("int"), loc(2))
	d.SetMemberAccess(entity.AccessPublic)
	m := d.AddMethod("at", ast.Reference(ast.Prim("uchar")), loc(3), ast.Param("i", ast.Prim("int"))).ConstMethod()
	ctor := d.AddMethod("Mat", nil, loc(4))
	c := d.AddConst("MAGIC_VAL", "0x42FF0000", loc(5))

	require.Equal(t, entity.AccessPrivate, f.Access())
	require.Equal(t, "cv::Mat", f.Namespace())
	require.Equal(t, entity.KindConstructor, ctor.Kind())

	name, ok := m.DisplayName()
	require.True(t, ok)
	require.Equal(t, "at(int)", name)
	require.True(t, m.IsConstMethod())
	require.NotEqual(t, d.USR(), m.USR())

	v, ok := c.Value()
	require.True(t, ok)
	require.Equal(t, "0x42FF0000", v)

	var n int
	for range d.Methods() {
		n++
		break
	}
	require.Equal(t, 1, n)
	require.True(t, entity.Any(d.Fields()))
	require.True(t, entity.Any(d.Consts()))
	require.False(t, entity.Any(d.Bases()))
}
