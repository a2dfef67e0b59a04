package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/cxxbind/pkg/parser"
)

func TestNameFilter(ttt *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		match    []string
		noMatch  []string
	}{
		{
			name:     "namespace wildcard",
			patterns: []string{`cv::detail::.*`},
			match:    []string{"cv::detail::Tracker", "cv::detail::a::B"},
			noMatch:  []string{"cv::Mat", "cv::detailed::X", "xcv::detail::Y"},
		},
		{
			name:     "whole name only",
			patterns: []string{`cv::Mat`},
			match:    []string{"cv::Mat"},
			noMatch:  []string{"cv::Mat::data", "cv::MatExpr", "cv::Mat_<float>"},
		},
		{
			name:     "alternation is grouped",
			patterns: []string{`cv::A|cv::B`, ` cv::ml::.* `, ""},
			match:    []string{"cv::A", "cv::B", "cv::ml::SVM"},
			noMatch:  []string{"cv::AB", "cv::C"},
		},
		{
			name:    "no patterns",
			noMatch: []string{"", "cv::Mat"},
		},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			f, err := parser.CompilePatterns(tt.patterns)
			require.NoError(t, err)
			for _, n := range tt.match {
				assert.Truef(t, f.Match(n), "%s should match", n)
			}
			for _, n := range tt.noMatch {
				assert.Falsef(t, f.Match(n), "%s should not match", n)
			}
		})
	}
}

func TestCompilePatternsInvalid(t *testing.T) {
	_, err := parser.CompilePatterns([]string{`cv::Mat`, `cv::(`})
	require.ErrorContains(t, err, `pattern "cv::("`)
	require.Panics(t, func() { parser.MustCompilePatterns(`[`) })
}

func TestNilNameFilter(t *testing.T) {
	var f *parser.NameFilter
	assert.False(t, f.Match("cv::Mat"))
	assert.False(t, (&parser.NameFilter{}).Match("cv::Mat"))
}

func TestNameSet(t *testing.T) {
	s := parser.NewNameSet(parser.DefaultSystemTypes, []string{" cv::Vec3b ", ""})
	assert.True(t, s.Contains("std::vector"))
	assert.True(t, s.Contains("cv::Vec3b"))
	assert.False(t, s.Contains(""))
	assert.False(t, s.Contains("cv::vec3b"))
}
