package render_test

import (
	"bytes"
	"encoding/json"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cmmoran/cxxbind/internal/analysis"
	"github.com/cmmoran/cxxbind/internal/model"
	"github.com/cmmoran/cxxbind/internal/render"
)

func report() *analysis.Report {
	return &analysis.Report{
		Decisions: []analysis.Decision{
			{
				Name:   "cv::Feature2D",
				USR:    "c:@N@cv@S@Feature2D",
				Kind:   model.KindBoxed,
				Target: "Feature2D",
				Trait:  "Feature2DTrait",
				Bases:  []string{"cv::Algorithm"},
				Methods: []analysis.Method{
					{Name: "detect", Native: "cv::Feature2D::detect", Kind: model.FuncMethod},
				},
				DependentTypes: []analysis.Dependent{
					{Kind: model.DependentVector, Name: "std::vector<cv::KeyPoint>"},
				},
			},
			{
				Name:   "cv::Point",
				USR:    "c:@N@cv@S@Point",
				Kind:   model.KindSimple,
				Target: "Point",
			},
		},
		Skipped: []analysis.Skip{{Name: "cv::Ptr", Reason: "template"}},
		DependentTypes: []analysis.Dependent{
			{Kind: model.DependentVector, Name: "std::vector<cv::KeyPoint>"},
		},
		Summary: analysis.Summary{Classes: 2, Simple: 1, Boxed: 1, Skipped: 1},
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Write(&buf, report(), render.FormatYAML))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	decisions := got["decisions"].([]any)
	require.Len(t, decisions, 2)
	first := decisions[0].(map[string]any)
	require.Equal(t, "cv::Feature2D", first["name"])
	require.Equal(t, "boxed", first["kind"])
	require.Contains(t, buf.String(), "kind: vector")
	require.Contains(t, buf.String(), "reason: template")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render.Write(&buf, report(), render.FormatJSON))

	var got struct {
		Decisions []struct {
			Name    string `json:"name"`
			Kind    string `json:"kind"`
			Methods []struct {
				Kind string `json:"kind"`
			} `json:"methods"`
		} `json:"decisions"`
		Summary analysis.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "simple", got.Decisions[1].Kind)
	require.Equal(t, "method", got.Decisions[0].Methods[0].Kind)
	require.Equal(t, 2, got.Summary.Classes)
}

func TestWriteGoTable(t *testing.T) {
	var buf bytes.Buffer
	err := render.Write(&buf, report(), render.FormatGo, render.WithPackage("example.com/bindings/cv", "cv"))
	require.NoError(t, err)

	src := buf.String()
	require.Contains(t, src, "// Code generated by cxxbind. DO NOT EDIT.")
	require.Contains(t, src, "package cv")
	require.Contains(t, src, `"cv::Feature2D": {`)
	require.Contains(t, src, `"Feature2DTrait"`)
	require.Contains(t, src, `"vector std::vector<cv::KeyPoint>"`)

	_, err = parser.ParseFile(token.NewFileSet(), "table.go", src, parser.AllErrors)
	require.NoError(t, err)
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorContains(t, render.Write(&buf, report(), "xml"), `unknown report format "xml"`)
}

func TestWriteInvalidKind(ttt *testing.T) {
	r := report()
	r.Decisions[1].Kind = model.Kind(42)
	for _, format := range []string{render.FormatYAML, render.FormatJSON} {
		ttt.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.ErrorContains(t, render.Write(&buf, r, format), "unknown class kind 42")
		})
	}
}
