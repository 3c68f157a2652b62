package main

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"insertable-generator/internal/analyze"
	"insertable-generator/internal/config"
	"insertable-generator/internal/diagnostic"
	"insertable-generator/internal/gen"
	"insertable-generator/internal/plan"
)

// result is the outcome of one package. File is nil when the package has no
// projections; Obsolete lists earlier outputs the file does not replace.
type result struct {
	Plan     *plan.ResolvedPlan
	File     *gen.GeneratedFile
	Obsolete []string
}

// process resolves and renders every package matching patterns without
// touching the filesystem. Packages run in parallel; diagnostics of all
// packages are reported before an error is returned.
func process(ctx context.Context, cfg *config.Config, log *zap.Logger, patterns []string) ([]result, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	pkgs, err := analyze.NewAnalyzer("").LoadPackages(ctx, patterns...)
	if err != nil {
		return nil, err
	}

	planCfg := cfg.PlanConfig()
	generator := gen.NewGenerator(cfg.GeneratorConfig())
	results := make([]result, len(pkgs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, pkg := range pkgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			p := plan.NewResolver(pkg, planCfg, log).Resolve()
			results[i].Plan = p

			if p.Diagnostics.HasErrors() {
				return nil
			}

			file, err := generator.Generate(p)
			if err != nil {
				return fmt.Errorf("package %s: %w", pkg.Path, err)
			}

			results[i].File = file
			results[i].Obsolete = gen.Obsolete(pkg.OutputFiles, file)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if n := report(log, results); n > 0 {
		return nil, fmt.Errorf("generation failed with %d error(s), nothing was written", n)
	}

	return results, nil
}

// report logs the diagnostics of every package and returns the error count.
func report(log *zap.Logger, results []result) int {
	var all diagnostic.Diagnostics

	for _, r := range results {
		all.Merge(r.Plan.Diagnostics)
	}

	for _, d := range all.Infos {
		log.Debug(d.String())
	}

	for _, d := range all.Warnings {
		log.Warn(d.String())
	}

	for _, d := range all.Errors {
		log.Error(d.String())
	}

	return len(all.Errors)
}
