package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rule parsing metrics
var (
	ScriptsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sievefilter_scripts_parsed_total",
			Help: "Total number of scripts parsed into rule sets",
		},
		[]string{"result"},
	)

	RulesParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sievefilter_rules_parsed_total",
			Help: "Total number of rules extracted from scripts",
		},
		[]string{"status"},
	)

	CommandBindFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sievefilter_command_bind_failures_total",
			Help: "Total number of commands rejected while binding arguments",
		},
		[]string{"reason"},
	)

	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sievefilter_parse_duration_seconds",
			Help:    "Time spent parsing and validating a script",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)
)

// Script cache metrics
var (
	ScriptCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sievefilter_script_cache_hits_total",
			Help: "Total number of parsed script cache hits",
		},
	)

	ScriptCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sievefilter_script_cache_misses_total",
			Help: "Total number of parsed script cache misses",
		},
	)

	ScriptCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sievefilter_script_cache_entries",
			Help: "Current number of parsed scripts held in the cache",
		},
	)
)

// WriteTextfile writes every registered metric to path in the text
// exposition format read by node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
