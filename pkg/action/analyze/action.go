// Package analyze is the end-to-end action: parse the headers, build the
// analysis environment, classify every class and write the report.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/txtar"

	"github.com/cmmoran/cxxbind/internal/analysis"
	"github.com/cmmoran/cxxbind/internal/ast"
	"github.com/cmmoran/cxxbind/internal/model"
	headers "github.com/cmmoran/cxxbind/internal/parser"
	"github.com/cmmoran/cxxbind/internal/render"
	"github.com/cmmoran/cxxbind/pkg/parser"
)

// Generate analyzes the headers below opts.InDir and writes the report to
// opts.OutDir/opts.OutFile. It returns the report and the file written.
func Generate(ctx context.Context, opts *parser.Options) (*analysis.Report, string, error) {
	r, err := Analyze(ctx, opts)
	if err != nil {
		return nil, "", err
	}
	outFile, err := Write(r, opts)
	if err != nil {
		return nil, "", err
	}
	return r, outFile, nil
}

// Analyze parses the headers below opts.InDir and the system include
// directories and classifies them.
func Analyze(ctx context.Context, opts *parser.Options) (*analysis.Report, error) {
	p, err := headers.New(opts, headers.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	prog, err := p.ParseDir(ctx)
	if err != nil {
		return nil, err
	}
	return run(ctx, opts, prog)
}

// AnalyzeArchive is Analyze over the headers of a txtar archive.
func AnalyzeArchive(ctx context.Context, opts *parser.Options, a *txtar.Archive) (*analysis.Report, error) {
	p, err := headers.New(opts, headers.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	prog, err := p.ParseArchive(ctx, a)
	if err != nil {
		return nil, err
	}
	return run(ctx, opts, prog)
}

func run(ctx context.Context, opts *parser.Options, prog *ast.Program) (*analysis.Report, error) {
	records := prog.Records()
	env, err := model.NewEnv(opts, records, model.WithTypeResolver(prog), model.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	r, err := analysis.Run(ctx, env, records, opts)
	if err != nil {
		return nil, err
	}
	for _, d := range r.Diagnostics {
		slog.Debug("diagnostic", "severity", d.Severity, "code", d.Code, "class", d.Class, "subject", d.Subject)
	}
	slog.Info("analysis summary", "summary", r.Summary.String())
	return r, nil
}

// Write renders r into opts.OutDir/opts.OutFile in opts.Format, or the
// format the file extension implies.
func Write(r *analysis.Report, opts *parser.Options) (string, error) {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	outFile := filepath.Clean(filepath.Join(opts.OutDir, opts.OutFile))
	format := opts.Format
	if format == "" {
		format = parser.FormatFromFile(opts.OutFile)
	}

	var renderOpts []render.Option
	if format == render.FormatGo {
		pkgPath, err := ImportPath(opts.OutDir)
		if err != nil {
			slog.Debug("output directory is not inside a Go module", "dir", opts.OutDir, "error", err)
		}
		renderOpts = append(renderOpts, render.WithPackage(pkgPath, PackageName(opts.OutDir)))
	}

	f, err := os.OpenFile(outFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("open report: %w", err)
	}
	if err := render.Write(f, r, format, renderOpts...); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	return outFile, nil
}

// ImportPath derives the Go import path of dir from the nearest go.mod
// above it.
func ImportPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	modDir, err := findGoModDir(abs)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(modDir, "go.mod"))
	if err != nil {
		return "", err
	}
	mf, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return "", err
	}
	if mf.Module == nil {
		return "", fmt.Errorf("%s has no module directive", filepath.Join(modDir, "go.mod"))
	}
	rel, err := filepath.Rel(modDir, abs)
	if err != nil {
		return "", err
	}
	return path.Join(mf.Module.Mod.Path, filepath.ToSlash(rel)), nil
}

// findGoModDir walks up from dir until it finds go.mod.
func findGoModDir(from string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(from, "go.mod")); err == nil {
			return from, nil
		}
		parent := filepath.Dir(from)
		if parent == from {
			return "", fmt.Errorf("no go.mod found")
		}
		from = parent
	}
}

// PackageName turns the last element of dir into a package name.
func PackageName(dir string) string {
	base := strings.ToLower(filepath.Base(filepath.Clean(dir)))
	var b strings.Builder
	for _, r := range base {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return "bindings"
	}
	return name
}
