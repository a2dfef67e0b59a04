// Package analysis runs the classification over a whole program and collects
// one decision per surfaced class together with the non-fatal findings.
package analysis

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cmmoran/cxxbind/internal/entity"
	"github.com/cmmoran/cxxbind/internal/model"
	"github.com/cmmoran/cxxbind/pkg/parser"
)

// outcome is what analyzing one class produced. Exactly one of decision and
// skip is set, or neither for a redundant declaration.
type outcome struct {
	decision *Decision
	skip     *Skip
	diags    []Diagnostic
	deps     []model.DependentType
}

// Run classifies classes, which must be the same declarations env was built
// from. Classes are analyzed in parallel, bounded by opts.Workers. An
// invariant violation in any class aborts the pass with an error.
func Run(ctx context.Context, env *model.Env, classes []entity.Entity, opts *parser.Options) (*Report, error) {
	if opts == nil {
		opts = parser.NewOptions()
	}
	logger := env.Logger()
	decls := canonical(classes)

	results := make([]outcome, len(decls))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, e := range decls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var out outcome
			if err := model.CatchInvariant(func() { out = analyze(model.NewClass(e, env), logger) }); err != nil {
				return fmt.Errorf("analyze %s: %w", qualify(e.Namespace(), e.Name()), err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &Report{}
	var deps model.DependentSet
	for _, out := range results {
		switch {
		case out.decision != nil:
			r.Decisions = append(r.Decisions, *out.decision)
		case out.skip != nil:
			r.Skipped = append(r.Skipped, *out.skip)
		}
		r.Diagnostics = append(r.Diagnostics, out.diags...)
	}

	slices.SortFunc(r.Decisions, func(a, b Decision) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(r.Skipped, func(a, b Skip) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Reason, b.Reason))
	})
	slices.SortFunc(r.Diagnostics, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Class, b.Class),
			cmp.Compare(a.Code, b.Code),
			cmp.Compare(a.Subject, b.Subject),
		)
	})

	// the program-wide set follows the sorted decisions
	byName := make(map[string][]model.DependentType, len(results))
	for _, out := range results {
		if out.decision != nil {
			byName[out.decision.Name] = out.deps
		}
	}
	for _, d := range r.Decisions {
		deps.AddAll(byName[d.Name])
	}
	for d := range deps.All() {
		r.DependentTypes = appendDependent(r.DependentTypes, d)
	}

	r.Summary = summarize(r)
	logger.Info("analysis finished",
		"classes", r.Summary.Classes,
		"skipped", r.Summary.Skipped,
		"diagnostics", r.Summary.Diagnostics,
		"dependent_types", len(r.DependentTypes),
	)
	return r, nil
}

// canonical keeps one declaration per USR, the definition when there is one,
// in first-seen order.
func canonical(classes []entity.Entity) []entity.Entity {
	index := make(map[string]int, len(classes))
	var out []entity.Entity
	for _, c := range classes {
		if !c.Kind().IsRecord() {
			continue
		}
		pick := c
		if def, ok := c.Definition(); ok {
			pick = def
		}
		if i, seen := index[c.USR()]; seen {
			out[i] = pick
			continue
		}
		index[c.USR()] = len(out)
		out = append(out, pick)
	}
	return out
}

func analyze(c model.Class, logger *slog.Logger) outcome {
	name := c.FullName()
	logger = logger.With("class", name)

	if reason, ignored := c.IgnoreReason(); ignored {
		out := outcome{skip: &Skip{Name: name, Reason: reason.String()}}
		switch reason {
		case model.IgnoreNotDefinition:
			out.diags = append(out.diags, Diagnostic{
				Severity: SeverityInfo,
				Code:     DiagForwardOnly,
				Class:    name,
				Message:  fmt.Sprintf("%s is declared but never defined", name),
			})
		case model.IgnoreUnimplementedSpecialization:
			pattern := ""
			if t, ok := c.AsTemplate(); ok {
				pattern = t.FullName()
			}
			out.diags = append(out.diags, Diagnostic{
				Severity: SeverityWarning,
				Code:     DiagUnlistedSpecialization,
				Class:    name,
				Subject:  pattern,
				Message:  fmt.Sprintf("specialization %s is not listed as an implemented generic", name),
			})
		}
		logger.Debug("class ignored", "reason", reason)
		return out
	}
	if c.IsExcluded() {
		logger.Debug("class excluded")
		return outcome{skip: &Skip{Name: name, Reason: "excluded"}}
	}

	deps := c.DependentTypes()
	d := decide(c, deps)
	out := outcome{decision: &d, deps: deps}
	for _, f := range c.DroppedGenerics() {
		out.diags = append(out.diags, Diagnostic{
			Severity: SeverityWarning,
			Code:     DiagDroppedGeneric,
			Class:    name,
			Subject:  f.Identifier(),
			Message:  fmt.Sprintf("generic method %s has no configured specializations and is dropped", f.Identifier()),
		})
	}
	logger.Debug("class decided", "kind", d.Kind, "methods", len(d.Methods), "dependent_types", len(d.DependentTypes))
	return out
}

func decide(c model.Class, deps []model.DependentType) Decision {
	d := Decision{
		Name:   c.FullName(),
		USR:    c.ID(),
		Kind:   c.Kind(),
		Target: c.TargetLeafName(),
		Props:  c.Props(),
	}
	if loc, ok := c.Entity().Location(); ok {
		d.Location = loc.String()
	}
	if c.IsTrait() {
		d.Trait = c.TraitName()
	}
	if t, ok := c.AsTemplate(); ok {
		d.Template = t.FullName()
	}
	for _, b := range c.Bases() {
		d.Bases = append(d.Bases, b.FullName())
	}
	for _, b := range c.AllBases() {
		d.AllBases = append(d.AllBases, b.FullName())
	}

	fields := c.Fields()
	for _, f := range fields {
		t := f.TypeRef()
		d.Fields = append(d.Fields, Field{
			Name:     f.Name(),
			Type:     t.Spelling(),
			Copy:     t.IsCopy(),
			Excluded: f.IsExcluded(),
		})
	}
	for _, m := range c.Methods() {
		if m.IsExcluded() {
			d.Excluded = append(d.Excluded, m.Identifier())
			continue
		}
		d.Methods = append(d.Methods, method(m))
	}
	for m := range c.FieldMethods(fields) {
		d.Methods = append(d.Methods, method(m))
	}
	for _, k := range c.Consts() {
		d.Consts = append(d.Consts, Const{Name: k.Name(), Value: k.Value()})
	}
	for _, dep := range deps {
		d.DependentTypes = appendDependent(d.DependentTypes, dep)
	}
	return d
}

func method(f model.Func) Method {
	m := Method{
		Name:     f.TargetName(),
		Native:   f.Identifier(),
		Kind:     f.Kind(),
		Static:   f.IsStatic(),
		Const:    f.IsConst(),
		Abstract: f.IsAbstract(),
		Clone:    f.IsClone(),
	}
	for _, a := range f.Arguments() {
		m.Args = append(m.Args, Param{Name: a.Name, Type: a.Type.Spelling()})
	}
	if r, ok := f.ReturnType(); ok {
		m.Returns = r.Spelling()
	}
	return m
}

// appendDependent adds d unless an entry of the same kind and name is
// already there. Types differing only in constness report once.
func appendDependent(out []Dependent, d model.DependentType) []Dependent {
	dep := Dependent{Kind: d.Kind, Name: d.Name()}
	if slices.Contains(out, dep) {
		return out
	}
	return append(out, dep)
}

func summarize(r *Report) Summary {
	s := Summary{
		Classes:     len(r.Decisions),
		Skipped:     len(r.Skipped),
		Diagnostics: len(r.Diagnostics),
	}
	for _, d := range r.Decisions {
		switch d.Kind {
		case model.KindSimple:
			s.Simple++
		case model.KindBoxed:
			s.Boxed++
		case model.KindSystem:
			s.System++
		case model.KindExcluded:
		}
	}
	return s
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "::" + name
}

// Names lists the decided class names, mostly for logging and tests.
func (r *Report) Names() []string {
	out := make([]string, 0, len(r.Decisions))
	for _, d := range r.Decisions {
		out = append(out, d.Name)
	}
	return out
}

// Decision finds the decision of a fully qualified class name.
func (r *Report) Decision(name string) (Decision, bool) {
	i, ok := slices.BinarySearchFunc(r.Decisions, name, func(d Decision, n string) int {
		return strings.Compare(d.Name, n)
	})
	if !ok {
		return Decision{}, false
	}
	return r.Decisions[i], true
}
