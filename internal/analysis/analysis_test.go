package analysis_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/cxxbind/internal/analysis"
	"github.com/cmmoran/cxxbind/internal/ast"
	"github.com/cmmoran/cxxbind/internal/entity"
	"github.com/cmmoran/cxxbind/internal/model"
	"github.com/cmmoran/cxxbind/pkg/parser"
)

func at(line int) *entity.Location {
	return &entity.Location{File: "opencv2/core.hpp", Line: line, Column: 1}
}

// program covers every way a class can end up in a report: value and boxed
// classes, a hierarchy, a method template, a class template with one
// specialization, a forward-only declaration and a global struct.
func program() *ast.Program {
	p := ast.NewProgram()

	pt := p.NewRecord(entity.KindStruct, "cv", "Point", at(10))
	pt.AddField("x", ast.Prim("int"), at(11))
	pt.AddField("y", ast.Prim("int"), at(12))

	algo := p.NewRecord(entity.KindClass, "cv", "Algorithm", at(20))
	algo.AddMethod("clear", ast.Prim("void"), at(21)).Virtual(false)
	algo.AddMethod("empty", ast.Prim("bool"), at(22)).Virtual(false).ConstMethod()

	orb := p.NewRecord(entity.KindClass, "cv", "ORB", at(30))
	orb.AddBase(p.Named("cv", "Algorithm"))
	orb.AddConst("kBytes", "32", at(31))
	orb.AddMethod("create", p.Named("cv", "Ptr", p.Named("cv", "ORB")), at(32),
		ast.Param("nfeatures", ast.Prim("int"))).Static()
	orb.AddMethod("levels", p.Named("cv", "std::vector", ast.Prim("int")), at(33)).ConstMethod()

	mat := p.NewRecord(entity.KindClass, "cv", "Mat", at(40))
	mat.AddField("rows", ast.Prim("int"), at(41))
	mat.AddField("data", ast.Pointer(ast.Prim("int")), at(42))
	mat.AddMethod("at", ast.Reference(ast.TemplateParam("T")), at(43),
		ast.Param("i", ast.Prim("int"))).MarkTemplateMethod("T")

	p.NewRecord(entity.KindClass, "cv", "Ptr", at(50)).MarkTemplate("T")
	p.NewRecord(entity.KindClass, "cv", "Ptr<cv::Mat>", at(55)).MarkSpecializationOf("Ptr")
	p.ForwardDecl(entity.KindClass, "cv", "Impl", at(60))
	p.NewRecord(entity.KindStruct, "", "Legacy", at(70)).AddField("v", ast.Prim("int"), at(71))
	p.NewRecord(entity.KindClass, "cv::detail", "Internal", at(80))
	return p
}

func run(t *testing.T, p *ast.Program, opts ...parser.Option) *analysis.Report {
	t.Helper()
	o := parser.NewOptions()
	for _, fn := range opts {
		fn(o)
	}
	env, err := model.NewEnv(o, p.Records(), model.WithTypeResolver(p))
	require.NoError(t, err)
	r, err := analysis.Run(context.Background(), env, p.Records(), o)
	require.NoError(t, err)
	return r
}

func decision(t *testing.T, r *analysis.Report, name string) analysis.Decision {
	t.Helper()
	d, ok := r.Decision(name)
	require.Truef(t, ok, "no decision for %s in %v", name, r.Names())
	return d
}

func TestRunDecisions(t *testing.T) {
	r := run(t, program())

	require.Equal(t, []string{
		"cv::Algorithm",
		"cv::Mat",
		"cv::ORB",
		"cv::Point",
		"cv::detail::Internal",
	}, r.Names())

	kinds := make(map[string]model.Kind)
	for _, d := range r.Decisions {
		kinds[d.Name] = d.Kind
	}
	require.Equal(t, map[string]model.Kind{
		"cv::Algorithm":        model.KindBoxed,
		"cv::Mat":              model.KindBoxed,
		"cv::ORB":              model.KindBoxed,
		"cv::Point":            model.KindSimple,
		"cv::detail::Internal": model.KindSimple,
	}, kinds)

	want := []analysis.Skip{
		{Name: "Legacy", Reason: "excluded"},
		{Name: "cv::Impl", Reason: "not_definition"},
		{Name: "cv::Ptr", Reason: "template"},
		{Name: "cv::Ptr<cv::Mat>", Reason: "unimplemented_specialization"},
	}
	if diff := cmp.Diff(want, r.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, analysis.Summary{
		Classes:     5,
		Simple:      2,
		Boxed:       3,
		Skipped:     4,
		Diagnostics: 3,
	}, r.Summary)
}

func TestRunPoint(t *testing.T) {
	d := decision(t, run(t, program()), "cv::Point")

	assert.Equal(t, "Point", d.Target)
	assert.Empty(t, d.Trait)
	assert.Equal(t, "opencv2/core.hpp:10:1", d.Location)
	assert.Contains(t, d.Props, "simple")
	assert.Contains(t, d.Props, "has_fields")

	var names []string
	for _, m := range d.Methods {
		names = append(names, m.Name)
	}
	require.Equal(t, []string{"x", "set_x", "y", "set_y"}, names)

	getter, setter := d.Methods[0], d.Methods[1]
	assert.Equal(t, model.FuncFieldGetter, getter.Kind)
	assert.True(t, getter.Const)
	assert.Equal(t, "int", getter.Returns)
	assert.Empty(t, getter.Args)
	assert.Equal(t, model.FuncFieldSetter, setter.Kind)
	assert.Equal(t, []analysis.Param{{Name: "val", Type: "int"}}, setter.Args)
	assert.Empty(t, setter.Returns)

	require.Len(t, d.Fields, 2)
	assert.True(t, d.Fields[0].Copy)
}

func TestRunHierarchy(t *testing.T) {
	r := run(t, program())

	algo := decision(t, r, "cv::Algorithm")
	assert.Equal(t, "AlgorithmTrait", algo.Trait)
	assert.Contains(t, algo.Props, "has_descendants")
	assert.Contains(t, algo.Props, "by_ptr")

	orb := decision(t, r, "cv::ORB")
	assert.Equal(t, []string{"cv::Algorithm"}, orb.Bases)
	assert.Equal(t, []string{"cv::Algorithm"}, orb.AllBases)
	assert.Equal(t, []analysis.Const{{Name: "kBytes", Value: "32"}}, orb.Consts)

	require.Len(t, orb.Methods, 2)
	create := orb.Methods[0]
	assert.Equal(t, "create", create.Name)
	assert.Equal(t, "cv::ORB::create", create.Native)
	assert.Equal(t, model.FuncStaticMethod, create.Kind)
	assert.True(t, create.Static)
	assert.Equal(t, []analysis.Param{{Name: "nfeatures", Type: "int"}}, create.Args)
	assert.True(t, orb.Methods[1].Const)

	kinds := make(map[model.DependentKind]bool)
	for _, dep := range orb.DependentTypes {
		kinds[dep.Kind] = true
	}
	assert.Equal(t, map[model.DependentKind]bool{
		model.DependentSmartPtr: true,
		model.DependentVector:   true,
	}, kinds)
	assert.Contains(t, r.DependentTypes, analysis.Dependent{Kind: model.DependentVector, Name: "std::vector<int>"})
}

func TestRunDiagnostics(ttt *testing.T) {
	tests := []struct {
		name       string
		opts       []parser.Option
		wantCodes  map[string]analysis.DiagnosticCode
		wantMethod string
	}{
		{
			name: "defaults",
			wantCodes: map[string]analysis.DiagnosticCode{
				"cv::Impl":         analysis.DiagForwardOnly,
				"cv::Mat":          analysis.DiagDroppedGeneric,
				"cv::Ptr<cv::Mat>": analysis.DiagUnlistedSpecialization,
			},
		},
		{
			name: "specialized generic and implemented template",
			opts: []parser.Option{
				parser.WithFuncSpecialization("cv::Mat::at", parser.Specialization{"T": "int"}),
				parser.WithImplementedGenerics("cv::Ptr<cv::Mat>"),
			},
			wantCodes: map[string]analysis.DiagnosticCode{
				"cv::Impl": analysis.DiagForwardOnly,
			},
			wantMethod: "at_int",
		},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			r := run(t, program(), tt.opts...)

			got := make(map[string]analysis.DiagnosticCode)
			for _, d := range r.Diagnostics {
				got[d.Class] = d.Code
			}
			require.Equal(t, tt.wantCodes, got)

			if tt.wantMethod == "" {
				return
			}
			mat := decision(t, r, "cv::Mat")
			var names []string
			for _, m := range mat.Methods {
				names = append(names, m.Name)
			}
			require.Contains(t, names, tt.wantMethod)

			spec := decision(t, r, "cv::Ptr<cv::Mat>")
			require.Equal(t, "cv::Ptr", spec.Template)
		})
	}
}

func TestRunExclusion(t *testing.T) {
	r := run(t, program(), parser.WithExcludePatterns(`cv::detail::.*`, `cv::Mat::data`))

	_, ok := r.Decision("cv::detail::Internal")
	require.False(t, ok)
	require.Contains(t, r.Skipped, analysis.Skip{Name: "cv::detail::Internal", Reason: "excluded"})

	mat := decision(t, r, "cv::Mat")
	var names []string
	for _, m := range mat.Methods {
		names = append(names, m.Name)
	}
	require.Equal(t, []string{"rows", "set_rows"}, names)
	require.True(t, mat.Fields[1].Excluded)
}

func TestRunExport(t *testing.T) {
	r := run(t, program(), parser.WithExport("cv::Point", false), parser.WithExport("cv::Mat", true))

	assert.Equal(t, model.KindBoxed, decision(t, r, "cv::Point").Kind)
	assert.Equal(t, "PointTrait", decision(t, r, "cv::Point").Trait)
	assert.Equal(t, model.KindSimple, decision(t, r, "cv::Mat").Kind)
}

func TestRunIsDeterministic(t *testing.T) {
	first := run(t, program(), parser.WithWorkers(1))
	for range 5 {
		again := run(t, program(), parser.WithWorkers(8))
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("reports differ between runs (-first +again):\n%s", diff)
		}
	}
}

func TestRunInvariant(t *testing.T) {
	p := ast.NewProgram()
	p.ForwardDecl(entity.KindClass, "cv", "Missing", at(1))
	p.NewRecord(entity.KindClass, "cv", "Broken", at(2)).AddBase(p.Named("cv", "Missing"))

	env, err := model.NewEnv(nil, p.Records(), model.WithTypeResolver(p))
	require.NoError(t, err)
	_, err = analysis.Run(context.Background(), env, p.Records(), nil)
	require.Error(t, err)

	var ie *model.InvariantError
	require.True(t, errors.As(err, &ie))
	require.Equal(t, model.InvariantBaseDefinition, ie.Code)
	require.Contains(t, err.Error(), "analyze cv::Broken")
}

func TestRunAliasedBase(t *testing.T) {
	p := ast.NewProgram()
	feat := p.NewRecord(entity.KindClass, "cv", "Feature2D", at(10))
	feat.AddMethod("detect", ast.Prim("void"), at(11)).Virtual(false)
	p.AddTypedef("cv", "FeatureDetector", p.Named("cv", "Feature2D"))
	p.AddTypedef("cv", "DescriptorExtractor", p.Named("cv", "Feature2D"))

	blob := p.NewRecord(entity.KindClass, "cv", "SimpleBlobDetector", at(20))
	blob.AddBase(p.Named("cv", "FeatureDetector"))
	blob.AddField("minArea", ast.Prim("float"), at(21))
	brief := p.NewRecord(entity.KindClass, "cv", "BriefExtractor", at(30))
	brief.AddBase(p.Named("cv", "DescriptorExtractor"))

	r := run(t, p)
	require.Equal(t, model.KindBoxed, decision(t, r, "cv::Feature2D").Kind)
	for _, name := range []string{"cv::SimpleBlobDetector", "cv::BriefExtractor"} {
		d := decision(t, r, name)
		assert.Equal(t, model.KindBoxed, d.Kind, name)
		assert.Equal(t, []string{"cv::Feature2D"}, d.Bases, name)
	}
}

func TestRunCanceled(t *testing.T) {
	p := program()
	env, err := model.NewEnv(nil, p.Records(), model.WithTypeResolver(p))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = analysis.Run(ctx, env, p.Records(), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunLogs(t *testing.T) {
	p := program()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	env, err := model.NewEnv(nil, p.Records(), model.WithTypeResolver(p), model.WithLogger(logger))
	require.NoError(t, err)

	_, err = analysis.Run(context.Background(), env, p.Records(), nil)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"msg":"analysis finished"`)
	require.Contains(t, buf.String(), `"class":"cv::Mat"`)
}

func TestSummaryString(ttt *testing.T) {
	tests := []struct {
		name string
		s    analysis.Summary
		want string
	}{
		{
			name: "plural",
			s:    analysis.Summary{Classes: 5, Simple: 2, Boxed: 3, Skipped: 4, Diagnostics: 3},
			want: "5 classes surfaced (2 simple, 3 boxed, 0 system), 4 skipped, 3 diagnostics",
		},
		{
			name: "singular",
			s:    analysis.Summary{Classes: 1, System: 1, Diagnostics: 1},
			want: "1 class surfaced (0 simple, 0 boxed, 1 system), 0 skipped, 1 diagnostic",
		},
		{
			name: "no diagnostics",
			s:    analysis.Summary{},
			want: "0 classes surfaced (0 simple, 0 boxed, 0 system), 0 skipped",
		},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.s.String())
		})
	}
}
