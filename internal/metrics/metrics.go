// Package metrics is the pipeline's Prometheus instrumentation
// (spec.md §2.5 of SPEC_FULL.md): a handful of counters/histograms
// registered against a private registry, which WriteText renders to the
// text-exposition format on request — this compiler has no long-lived
// process to scrape, so there is no HTTP server here, only the registry
// and the one-shot render spec.md's Non-goals (no runtime traffic
// handling) leave room for. The ormc command does not call WriteText.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Registry bundles one run's metrics behind a private
// prometheus.Registry so concurrent test runs (and concurrent
// invocations of the compiler within one process, e.g. from the test
// suite) never share state through the global default registry.
type Registry struct {
	reg *prometheus.Registry

	RulesParsed           prometheus.Counter
	RuleFilesLoaded       prometheus.Counter
	SchemaViolations      prometheus.Counter
	CollisionsFound       prometheus.Counter
	FSMCacheHits          prometheus.Counter
	FSMCacheMisses        prometheus.Counter
	PhaseDuration         *prometheus.HistogramVec
	CollisionPairsChecked prometheus.Counter
}

// New constructs a fresh Registry for one compiler invocation.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		RulesParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "ormc_rules_parsed_total",
			Help: "Total number of rules successfully parsed across all input files.",
		}),
		RuleFilesLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "ormc_rule_files_loaded_total",
			Help: "Total number of rule YAML files read by the loader.",
		}),
		SchemaViolations: factory.NewCounter(prometheus.CounterOpts{
			Name: "ormc_schema_violations_total",
			Help: "Total number of schema validation diagnostics emitted.",
		}),
		CollisionsFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "ormc_collisions_found_total",
			Help: "Total number of colliding rule pairs reported by the Collision Engine.",
		}),
		FSMCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ormc_fsm_cache_hits_total",
			Help: "Total number of per-rule automaton lookups served from the persistent FSM cache.",
		}),
		FSMCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "ormc_fsm_cache_misses_total",
			Help: "Total number of per-rule automata that had to be built rather than loaded from cache.",
		}),
		CollisionPairsChecked: factory.NewCounter(prometheus.CounterOpts{
			Name: "ormc_collision_pairs_checked_total",
			Help: "Total number of same-domain rule pairs submitted for intersection-nonempty checking.",
		}),
		PhaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ormc_phase_duration_seconds",
			Help:    "Wall-clock duration of each pipeline phase.",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"phase"}),
	}
}

// WriteText renders every registered metric family to the Prometheus
// text-exposition format (spec.md §2.5: rendered on request, not
// served live).
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gathering metric families: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: encoding metric family %q: %w", mf.GetName(), err)
		}
	}
	return nil
}
