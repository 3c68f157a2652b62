package plan

import (
	"errors"
	"fmt"
	"go/types"

	"go.uber.org/zap"

	"insertable-generator/internal/analyze"
	"insertable-generator/internal/diagnostic"
	"insertable-generator/internal/match"
	"insertable-generator/internal/metadata"
)

// maxSuggestions bounds the names offered for an unused exclusion.
const maxSuggestions = 2

// Resolver performs the resolution pipeline for one package.
type Resolver struct {
	pkg    *analyze.Package
	config Config
	logger *zap.Logger
}

// NewResolver creates a new Resolver. A nil logger discards output.
func NewResolver(pkg *analyze.Package, config Config, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Resolver{
		pkg:    pkg,
		config: config,
		logger: logger.With(zap.String("package", pkg.Path)),
	}
}

// Resolve runs the pipeline for every type carrying //insertable:generate.
// Failures are reported as error diagnostics; the plan is always returned.
func (r *Resolver) Resolve() *ResolvedPlan {
	plan := &ResolvedPlan{
		Package:           r.pkg,
		ByValueMethod:     r.config.ByValueMethod,
		ByReferenceMethod: r.config.ByReferenceMethod,
	}

	for _, src := range r.pkg.Marked(metadata.MarkerGenerate) {
		proj, err := r.resolveType(src, &plan.Diagnostics)
		if err != nil {
			r.logger.Debug("type rejected", zap.String("type", src.ID.Name), zap.Error(err))
			plan.Diagnostics.AddError(err, src.ID.Name, src.Pos)

			continue
		}

		plan.Diagnostics.AddInfo(diagnostic.CodeGenerated,
			fmt.Sprintf("%s with %d of %d fields", proj.Name, len(proj.Fields), len(src.Fields)),
			src.ID.Name, src.Pos)

		r.logger.Debug("type resolved",
			zap.String("type", src.ID.Name),
			zap.String("projection", proj.Name),
			zap.Int("fields", len(proj.Fields)),
			zap.Int("excluded", len(proj.Excluded)))

		plan.Projections = append(plan.Projections, proj)
	}

	return plan
}

func (r *Resolver) resolveType(src *analyze.SourceType, diags *diagnostic.Diagnostics) (Projection, error) {
	if err := checkDeclaration(src); err != nil {
		return Projection{}, bind(err, src)
	}

	md, err := metadata.Extract(src.Directives, r.config.Metadata)
	if err != nil {
		return Projection{}, bind(err, src)
	}

	filtered, err := Filter(src.Fields, md.Exclusions)
	if err != nil {
		return Projection{}, bind(err, src)
	}

	if !md.Exclusions.Defaulted {
		r.reportUnused(src, md.Exclusions, filtered.Unused, diags)
	}

	proj, err := Synthesize(src, md, filtered)
	if err != nil {
		return Projection{}, bind(err, src)
	}

	if err := r.checkNames(src, proj); err != nil {
		return Projection{}, bind(err, src)
	}

	if err := r.checkUnqualified(src, proj); err != nil {
		return Projection{}, bind(err, src)
	}

	return proj, nil
}

func checkDeclaration(src *analyze.SourceType) error {
	if !src.IsStruct() {
		return diagnostic.UnsupportedShape("%s type cannot be projected, only struct types are supported", src.Kind)
	}

	if src.HasTypeParams {
		return diagnostic.UnsupportedShape("generic types are not supported")
	}

	return nil
}

// checkNames rejects projections whose generated names clash with
// hand-written declarations of the package.
func (r *Resolver) checkNames(src *analyze.SourceType, proj Projection) error {
	if r.pkg.Declared[proj.Name] {
		return diagnostic.UnsupportedShape("projection name %s collides with an existing declaration", proj.Name)
	}

	for _, method := range []string{r.config.ByValueMethod, r.config.ByReferenceMethod} {
		if r.pkg.HasMethod(src.ID.Name, method) {
			return diagnostic.UnsupportedShape("%s already declares method %s", src.ID.Name, method)
		}

		if f := src.Field(method); f != nil {
			return diagnostic.UnsupportedShape("field %s collides with conversion method %s", f.Name, method).WithPos(f.Pos)
		}
	}

	if proj.UsesMapsPackage() && r.pkg.Declared[mapsPackage] {
		return diagnostic.UnsupportedShape("package-level %s hides the maps package needed to copy arrays of maps", mapsPackage)
	}

	return nil
}

// checkUnqualified rejects fields whose types name something only a dot
// import of the declaring file provides. The generated file has no dot imports.
func (r *Resolver) checkUnqualified(src *analyze.SourceType, proj Projection) error {
	if !src.HasDotImport() {
		return nil
	}

	for _, f := range proj.Fields {
		for _, id := range f.Source.Idents {
			if r.pkg.Declared[id] || types.Universe.Lookup(id) != nil {
				continue
			}

			return diagnostic.UnsupportedShape(
				"type %s of field %s refers to %s through a dot import; import the package by name",
				f.Source.TypeExpr, f.Source.Name, id).WithPos(f.Source.Pos)
		}
	}

	return nil
}

func (r *Resolver) reportUnused(
	src *analyze.SourceType,
	list metadata.ExclusionList,
	unused []string,
	diags *diagnostic.Diagnostics,
) {
	if len(unused) == 0 {
		return
	}

	known := make([]string, 0, 2*len(src.Fields))
	for _, f := range src.Fields {
		known = append(known, f.Name, f.Column)
	}

	for _, name := range unused {
		suggestions := match.Suggest(name, known, match.DefaultSuggestThreshold, maxSuggestions)
		diags.AddWarning(diagnostic.CodeUnusedExclusion,
			fmt.Sprintf("exclusion %s matches no field", name),
			src.ID.Name, list.Pos, suggestions...)
	}
}

// bind attaches the type name and position to a generation error.
func bind(err error, src *analyze.SourceType) error {
	var genErr *diagnostic.GenerationError
	if errors.As(err, &genErr) {
		return genErr.At(src.ID.Name, src.Pos)
	}

	return fmt.Errorf("%s: %w", src.ID.Name, err)
}
