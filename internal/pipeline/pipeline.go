// Package pipeline drives the four compilation phases — parse,
// validate, collide, emit — over a rule glob and a Globals document,
// aggregating diagnostics into one *diag.Report the way the teacher's
// CI tooling aggregates validator results before deciding a process
// exit code (spec.md §4, §7).
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/svt/orm/internal/collision"
	"github.com/svt/orm/internal/collision/cache"
	"github.com/svt/orm/internal/collision/pool"
	"github.com/svt/orm/internal/diag"
	"github.com/svt/orm/internal/emit/cachetier"
	"github.com/svt/orm/internal/emit/lbtier"
	"github.com/svt/orm/internal/globals"
	"github.com/svt/orm/internal/metrics"
	"github.com/svt/orm/internal/rules"
	"github.com/svt/orm/internal/schema"
	"gopkg.in/yaml.v3"
)

// Config bundles everything one compile/check run needs.
type Config struct {
	RulesGlob   string
	GlobalsPath string
	CachePath   string
	CheckOnly   bool // -c/--check: validate + collide, skip emission
	Workers     int
}

// Result is the pipeline's output: diagnostics plus, when emission ran,
// the lowered per-domain cache-tier configs and the LB-tier config.
type Result struct {
	Report     *diag.Report
	CacheTier  map[string]*cachetier.DomainConfig
	LBTier     *lbtier.Config
	Merged     *rules.Merged
}

// Run executes the full pipeline. Each phase runs to completion and
// reports every diagnostic it finds; Run returns after any phase that
// recorded a fatal diagnostic, so emit never runs over invalid or
// colliding rules (spec.md §4.4), and CheckOnly stops before emit.
func Run(ctx context.Context, cfg Config, log *slog.Logger, m *metrics.Registry) (*Result, error) {
	report := &diag.Report{}
	result := &Result{Report: report}

	phaseStart := time.Now()
	docs, globalsDoc := parsePhase(cfg, report, log, m)
	observePhase(m, "parse", phaseStart)
	if report.HasFatal() {
		return result, nil
	}

	phaseStart = time.Now()
	validatePhase(docs, report, log, m)
	observePhase(m, "validate", phaseStart)
	if report.HasFatal() {
		return result, nil
	}

	domainOrder := rules.DomainOrder(docs)
	merged := rules.Merge(docs, domainOrder)
	rules.ApplyDefaults(merged, globalsDoc.Defaults.HTTPSRedirection)
	result.Merged = merged
	for _, list := range merged.ByDomain {
		m.RulesParsed.Add(float64(len(list)))
	}

	phaseStart = time.Now()
	store, err := collidePhase(ctx, cfg, merged, report, log, m)
	observePhase(m, "collide", phaseStart)
	if err != nil {
		return result, fmt.Errorf("pipeline: collide phase: %w", err)
	}
	if store != nil {
		defer store.Close()
	}
	if report.HasFatal() || cfg.CheckOnly {
		return result, nil
	}

	phaseStart = time.Now()
	if err := emitPhase(merged, globalsDoc, result, report, log); err != nil {
		return result, fmt.Errorf("pipeline: emit phase: %w", err)
	}
	observePhase(m, "emit", phaseStart)

	return result, nil
}

func observePhase(m *metrics.Registry, phase string, start time.Time) {
	m.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

func parsePhase(cfg Config, report *diag.Report, log *slog.Logger, m *metrics.Registry) ([]*rules.Document, *globals.Globals) {
	log.Info("parse phase starting", "phase", "parse", "rules_glob", cfg.RulesGlob)

	globalsData, err := os.ReadFile(cfg.GlobalsPath)
	if err != nil {
		report.Fatal(diag.KindInput, diag.Location{File: cfg.GlobalsPath}, "reading globals file: %v", err)
		return nil, nil
	}
	g, err := globals.Parse(globalsData)
	if err != nil {
		report.Fatal(diag.KindInput, diag.Location{File: cfg.GlobalsPath}, "%v", err)
		return nil, nil
	}

	files := rules.ListRuleFiles(cfg.RulesGlob, report)
	if report.HasFatal() {
		return nil, g
	}

	var docs []*rules.Document
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			report.Fatal(diag.KindInput, diag.Location{File: file}, "reading rule file: %v", err)
			continue
		}
		fileDocs := rules.ParseDocuments(bytes.NewReader(data), file, report)
		docs = append(docs, fileDocs...)
		m.RuleFilesLoaded.Inc()
		log.Debug("loaded rule file", "phase", "parse", "file", file, "documents", len(fileDocs))
	}

	return docs, g
}

func validatePhase(docs []*rules.Document, report *diag.Report, log *slog.Logger, m *metrics.Registry) {
	validator, err := schema.New()
	if err != nil {
		report.Fatal(diag.KindSchema, diag.Location{}, "compiling bundled schema: %v", err)
		return
	}

	for _, doc := range docs {
		data, err := os.ReadFile(doc.SourceFile)
		if err != nil {
			continue // already reported as an input error during parse
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		for {
			var generic any
			if err := dec.Decode(&generic); err != nil {
				break
			}
			diags := validator.Validate(generic, doc.SourceFile)
			if len(diags) > 0 {
				m.SchemaViolations.Add(float64(len(diags)))
			}
			report.Diagnostics = append(report.Diagnostics, diags...)
		}
		log.Debug("validated rule file", "phase", "validate", "file", doc.SourceFile)
	}
}

func collidePhase(ctx context.Context, cfg Config, merged *rules.Merged, report *diag.Report, log *slog.Logger, m *metrics.Registry) (*cache.Store, error) {
	var store *cache.Store
	if cfg.CachePath != "" {
		var err error
		store, err = cache.Open(ctx, cfg.CachePath, 4096)
		if err != nil {
			return nil, fmt.Errorf("opening fsm cache: %w", err)
		}
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = pool.Workers()
	}
	engine := &collision.Engine{Workers: workers, Cache: store}
	collisions, collideReport, err := engine.Check(ctx, merged)
	if err != nil {
		return store, fmt.Errorf("running collision engine: %w", err)
	}
	m.CollisionsFound.Add(float64(len(collisions)))
	report.Merge(collideReport)

	log.Info("collision phase complete", "phase", "collide", "collisions", len(collisions))
	return store, nil
}

func emitPhase(merged *rules.Merged, g *globals.Globals, result *Result, report *diag.Report, log *slog.Logger) error {
	result.CacheTier = make(map[string]*cachetier.DomainConfig, len(merged.ByDomain))
	globalSB, globalNB := cachetier.LowerGlobalActions(g.GlobalActions)

	for domain, list := range merged.ByDomain {
		cfg, err := cachetier.LowerDomain(domain, list)
		if err != nil {
			report.Fatal(diag.KindEmitter, diag.Location{}, "domain %q: %v", domain, err)
			continue
		}
		cfg.GlobalSB = globalSB
		cfg.GlobalNB = globalNB
		result.CacheTier[domain] = cfg
	}
	if report.HasFatal() {
		return nil
	}

	lbCfg, err := lbtier.Build(merged.ByDomain, g)
	if err != nil {
		report.Fatal(diag.KindEmitter, diag.Location{}, "%v", err)
		return nil
	}
	result.LBTier = lbCfg

	log.Info("emit phase complete", "phase", "emit", "domains", len(result.CacheTier))
	return nil
}
