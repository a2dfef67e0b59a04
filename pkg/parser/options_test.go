package parser_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmmoran/cxxbind/pkg/parser"
)

func TestNormalizeDefaults(t *testing.T) {
	o := &parser.Options{}
	o.Normalize()

	abs, err := filepath.Abs(".")
	require.NoError(t, err)
	assert.Equal(t, abs, o.InDir)
	assert.Equal(t, "bindings", o.OutDir)
	assert.Equal(t, "classes.yaml", o.OutFile)
	assert.Equal(t, "yaml", o.Format)
	assert.Equal(t, []string{".hpp", ".h", ".hh", ".hxx"}, o.Extensions)
	assert.Equal(t, runtime.GOMAXPROCS(0), o.Workers)
	assert.Equal(t, parser.DefaultMaxBaseDepth, o.MaxBaseDepth)
}

func TestNormalizeExportOverrides(ttt *testing.T) {
	tests := []struct {
		name      string
		overrides []string
		want      map[string]parser.ExportConfig
		wantPanic bool
	}{
		{
			name:      "simple and boxed",
			overrides: []string{"cv::Point=simple", " cv::Mat = Boxed "},
			want: map[string]parser.ExportConfig{
				"cv::Point": {Simple: true},
				"cv::Mat":   {Simple: false},
			},
		},
		{
			name:      "later override wins",
			overrides: []string{"cv::Size=simple", "cv::Size=boxed"},
			want:      map[string]parser.ExportConfig{"cv::Size": {Simple: false}},
		},
		{
			name:      "missing kind",
			overrides: []string{"cv::Point"},
			wantPanic: true,
		},
		{
			name:      "unknown kind",
			overrides: []string{"cv::Point=value"},
			wantPanic: true,
		},
	}
	for _, tt := range tests {
		ttt.Run(tt.name, func(t *testing.T) {
			o := parser.NewOptions()
			if tt.wantPanic {
				require.Panics(t, func() { o.Normalize(tt.overrides...) })
				return
			}
			o.Normalize(tt.overrides...)
			require.Equal(t, tt.want, o.Exports)
		})
	}
}

func TestNormalizeKeepsFormat(t *testing.T) {
	o := parser.NewOptions()
	parser.WithOutFile("classes.json")(o)
	parser.WithFormat("go")(o)
	o.Normalize()
	assert.Equal(t, "go", o.Format)

	o = parser.NewOptions()
	parser.WithOutFile("classes.json")(o)
	o.Normalize()
	assert.Equal(t, "json", o.Format)
}

func TestFormatFromFile(ttt *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{file: "classes.yaml", want: "yaml"},
		{file: "classes.yml", want: "yaml"},
		{file: "classes.JSON", want: "json"},
		{file: "table.go", want: "go"},
		{file: "classes", want: "yaml"},
	}
	for _, tt := range tests {
		ttt.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.FormatFromFile(tt.file))
		})
	}
}

func TestOptionsApply(t *testing.T) {
	o := parser.NewOptions()
	for _, fn := range []parser.Option{
		parser.WithInDir("include"),
		parser.WithWorkers(3),
		parser.WithMaxBaseDepth(8),
		parser.WithExtensions(".inl"),
		parser.WithSystemIncludeDirs("/usr/include"),
		parser.WithExportMacros("CV_DEPRECATED"),
		parser.WithExcludePatterns(`cv::detail::.*`),
		parser.WithIgnorePatterns(`cv::gapi::.*`),
		parser.WithSystemTypes(" cv::String "),
		parser.WithImplementedGenerics(" cv::Point_<int> "),
		parser.WithFuncSpecialization("cv::Mat::at", parser.Specialization{"_Tp": "int"}),
		parser.WithFuncSpecialization("cv::Mat::at", parser.Specialization{"_Tp": "float"}),
		parser.WithExport("cv::Size", true),
	} {
		fn(o)
	}

	assert.Equal(t, "include", o.InDir)
	assert.Equal(t, 3, o.Workers)
	assert.Equal(t, 8, o.MaxBaseDepth)
	assert.Contains(t, o.Extensions, ".inl")
	assert.Contains(t, o.ExportMacros, "CV_DEPRECATED")
	assert.Contains(t, o.ExportMacros, "CV_EXPORTS_W")
	assert.Equal(t, []string{"/usr/include"}, o.SystemIncludeDirs)
	assert.Equal(t, []string{`cv::detail::.*`}, o.ExcludePatterns)
	assert.Equal(t, []string{`cv::gapi::.*`}, o.IgnorePatterns)
	assert.Equal(t, []string{"cv::String"}, o.SystemTypes)
	assert.Equal(t, []string{"cv::Point_<int>"}, o.ImplementedGenerics)
	assert.Equal(t, []parser.Specialization{{"_Tp": "int"}, {"_Tp": "float"}}, o.FuncSpecializations["cv::Mat::at"])
	assert.Equal(t, map[string]parser.ExportConfig{"cv::Size": {Simple: true}}, o.Exports)
}
