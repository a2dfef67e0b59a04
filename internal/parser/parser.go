// Package parser is the C++ header front-end. It parses headers with
// tree-sitter and fills an ast.Program with the namespaces, records, members
// and type references it finds.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/txtar"

	"github.com/cmmoran/cxxbind/internal/ast"
	config "github.com/cmmoran/cxxbind/pkg/parser"
)

// Parser holds the state of one header parse run. Successive Parse calls
// add to the same program.
type Parser struct {
	Opts config.Options

	prog   *ast.Program
	macros *regexp.Regexp
	logger *slog.Logger
}

type Option func(*Parser)

func WithLogger(l *slog.Logger) Option { return func(p *Parser) { p.logger = l } }

// WithProgram makes the parser add to an existing program.
func WithProgram(prog *ast.Program) Option { return func(p *Parser) { p.prog = prog } }

// New builds a parser for opts. Export macros are compiled here.
func New(opts *config.Options, parserOpts ...Option) (*Parser, error) {
	if opts == nil {
		opts = config.NewOptions()
	}
	macros, err := macroPattern(opts.ExportMacros)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		Opts:   *opts,
		macros: macros,
	}
	for _, fn := range parserOpts {
		fn(p)
	}
	if p.prog == nil {
		p.prog = ast.NewProgram()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p, nil
}

// Program is the declaration graph built so far.
func (p *Parser) Program() *ast.Program {
	return p.prog
}

// ParseDir parses every header below Opts.InDir and the system include
// directories.
func (p *Parser) ParseDir(ctx context.Context) (*ast.Program, error) {
	roots := append([]string{p.Opts.InDir}, p.Opts.SystemIncludeDirs...)
	files, err := collect(roots, p.Opts.Extensions)
	if err != nil {
		return nil, err
	}
	srcs, err := readSources(files, p.Opts.SystemIncludeDirs)
	if err != nil {
		return nil, err
	}
	return p.parse(ctx, srcs)
}

// ParseArchive parses the header members of a txtar archive. Member names
// below a system include directory are system headers. An IgnoreFile member
// filters the others.
func (p *Parser) ParseArchive(ctx context.Context, a *txtar.Archive) (*ast.Program, error) {
	var gi *ignore.GitIgnore
	for _, f := range a.Files {
		if f.Name == IgnoreFile {
			gi = ignore.CompileIgnoreLines(strings.Split(string(f.Data), "\n")...)
		}
	}
	srcs := make([]source, 0, len(a.Files))
	for _, f := range a.Files {
		if !hasExtension(f.Name, p.Opts.Extensions) || (gi != nil && gi.MatchesPath(f.Name)) {
			continue
		}
		srcs = append(srcs, source{
			name:   f.Name,
			data:   f.Data,
			system: underAny(f.Name, p.Opts.SystemIncludeDirs),
		})
	}
	return p.parse(ctx, srcs)
}

// ParseSource parses a single header held in memory.
func (p *Parser) ParseSource(ctx context.Context, name string, src []byte) (*ast.Program, error) {
	return p.parse(ctx, []source{{
		name:   name,
		data:   src,
		system: underAny(name, p.Opts.SystemIncludeDirs),
	}})
}

// parse builds the syntax trees concurrently, one tree-sitter parser per
// file, then walks them in input order so the program is deterministic.
func (p *Parser) parse(ctx context.Context, srcs []source) (*ast.Program, error) {
	trees := make([]*sitter.Tree, len(srcs))
	g, gctx := errgroup.WithContext(ctx)
	if p.Opts.Workers > 0 {
		g.SetLimit(p.Opts.Workers)
	}
	for i := range srcs {
		srcs[i].data = blank(p.macros, srcs[i].data)
		g.Go(func() error {
			sp := sitter.NewParser()
			sp.SetLanguage(cpp.GetLanguage())
			tree, err := sp.ParseCtx(gctx, nil, srcs[i].data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", srcs[i].name, err)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, src := range srcs {
		root := trees[i].RootNode()
		if root.HasError() {
			p.logger.Debug("header has syntax errors, continuing with what parsed", "file", src.name)
		}
		w := &walker{
			prog:   p.prog,
			file:   filepath.ToSlash(src.name),
			src:    src.data,
			system: src.system,
		}
		w.declarations(root, "")
		p.logger.Debug("parsed header", "file", src.name, "records", w.records, "system", src.system)
	}
	return p.prog, nil
}
