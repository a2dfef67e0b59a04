package render

import (
	"github.com/dave/jennifer/jen"

	"github.com/cmmoran/cxxbind/internal/analysis"
)

// GoTable turns the decisions into a Go file declaring a Class type, a
// Classes map keyed by native name and the program-wide DependentTypes list.
// Generators written in Go can import it instead of reading the report.
func GoTable(r *analysis.Report, pkgPath, pkgName string) *jen.File {
	var f *jen.File
	if pkgPath != "" {
		f = jen.NewFilePathName(pkgPath, pkgName)
	} else {
		f = jen.NewFile(pkgName)
	}
	f.HeaderComment("Code generated by cxxbind. DO NOT EDIT.")

	f.Comment("Class is the representation decided for one native class.")
	f.Type().Id("Class").Struct(
		jen.Id("Name").String(),
		jen.Id("Kind").String(),
		jen.Id("Target").String(),
		jen.Id("Trait").String(),
		jen.Id("Template").String(),
		jen.Id("Bases").Index().String(),
		jen.Id("Methods").Index().String(),
		jen.Id("DependentTypes").Index().String(),
	)

	f.Line()
	f.Comment("Classes maps fully qualified native names to their decisions.")
	f.Var().Id("Classes").Op("=").Map(jen.String()).Id("Class").Values(jen.DictFunc(func(d jen.Dict) {
		for _, dec := range r.Decisions {
			d[jen.Lit(dec.Name)] = classValue(dec)
		}
	}))

	f.Line()
	f.Comment("DependentTypes lists every ancillary type the surfaced classes need.")
	f.Var().Id("DependentTypes").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, dep := range r.DependentTypes {
			g.Lit(dep.Kind.String() + " " + dep.Name)
		}
	})
	return f
}

func classValue(dec analysis.Decision) jen.Code {
	fields := jen.Dict{
		jen.Id("Name"):   jen.Lit(dec.Name),
		jen.Id("Kind"):   jen.Lit(dec.Kind.String()),
		jen.Id("Target"): jen.Lit(dec.Target),
	}
	if dec.Trait != "" {
		fields[jen.Id("Trait")] = jen.Lit(dec.Trait)
	}
	if dec.Template != "" {
		fields[jen.Id("Template")] = jen.Lit(dec.Template)
	}
	if len(dec.Bases) > 0 {
		fields[jen.Id("Bases")] = stringSlice(dec.Bases)
	}
	if len(dec.Methods) > 0 {
		names := make([]string, 0, len(dec.Methods))
		for _, m := range dec.Methods {
			names = append(names, m.Name)
		}
		fields[jen.Id("Methods")] = stringSlice(names)
	}
	if len(dec.DependentTypes) > 0 {
		deps := make([]string, 0, len(dec.DependentTypes))
		for _, dep := range dec.DependentTypes {
			deps = append(deps, dep.Kind.String()+" "+dep.Name)
		}
		fields[jen.Id("DependentTypes")] = stringSlice(deps)
	}
	return jen.Values(fields)
}

func stringSlice(ss []string) jen.Code {
	return jen.Index().String().ValuesFunc(func(g *jen.Group) {
		for _, s := range ss {
			g.Lit(s)
		}
	})
}
