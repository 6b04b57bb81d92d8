/*
Package metrics provides Prometheus metrics for synchronization runs.

The metrics package defines and registers the counters and gauges one run
produces: inventory volume, fallback decisions, and record write outcomes.
Because the process exits after each run, there is no HTTP endpoint to
scrape; instead the registry can be exported to a textfile so the
node_exporter textfile collector carries the numbers to Prometheus.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                          │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Dedicated Registry                │          │
	│  │  - prometheus.NewRegistry, not the global  │          │
	│  │  - MustRegister at package init            │          │
	│  │  - No runtime metrics; runs are seconds    │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Package-Level Collectors         │          │
	│  │  Counters: inventory and record outcomes   │          │
	│  │  Gauges: run duration, last-run timestamp  │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Textfile Export                 │          │
	│  │  WriteFile(path) → text exposition format  │          │
	│  │  node_exporter textfile collector scrapes  │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Metrics Catalog

Inventory:

	burrow_guests_listed_total        guests returned by cluster listings
	burrow_templates_skipped_total    template guests excluded
	burrow_addresses_predicted_total  hosts given a predicted address
	burrow_hosts_dropped_total        hosts dropped with no usable address

Reconciliation:

	burrow_records_created_total      records created
	burrow_records_updated_total      records updated
	burrow_records_skipped_total      records already in the desired state
	burrow_records_failed_total       record writes that failed

Run:

	burrow_run_duration_seconds           duration of the last run
	burrow_last_run_timestamp_seconds     unix time the last run finished

# Textfile Export

A short-lived job cannot host a scrape endpoint: by the time Prometheus
comes around, the process is gone. The standard pattern is to write the
registry to a file in the node_exporter textfile collector directory at
the end of the run:

	metrics_file: /var/lib/node_exporter/textfile/burrow.prom

node_exporter then serves those numbers alongside its own on every
scrape. Counters reset to zero each process start, so rate() is not
meaningful across them; the values describe the most recent run, which
is exactly what a periodic job wants to report.

# Usage

Counting from working code:

	metrics.GuestsListed.Add(float64(len(guests)))
	metrics.TemplatesSkipped.Inc()
	metrics.RecordsCreated.Inc()

Finishing a run:

	metrics.ObserveRun(time.Since(start))
	if cfg.MetricsFile != "" {
		if err := metrics.WriteFile(cfg.MetricsFile); err != nil {
			// warn and move on; metrics never fail a run
		}
	}

# Integration Points

This package integrates with:

  - pkg/inventory: counts listings, template skips, predictions, drops
  - pkg/reconciler: counts record outcomes
  - cmd/burrow: observes run duration and writes the textfile

# Design Patterns

Dedicated Registry Pattern:
  - A package-private Registry instead of prometheus.DefaultRegisterer
  - Repeated test runs and embedding callers never hit duplicate
    registration panics

Package-Level Collector Pattern:
  - Exported collector variables, registered once in init
  - Call sites stay one line; no plumbing a metrics handle through
    every constructor

Textfile Handoff Pattern:
  - WriteFile is the job's entire exposition surface
  - Export failure is a warning, not a run failure

# Alerting Rules

Staleness:

	time() - burrow_last_run_timestamp_seconds > 900

	The job stopped running or stopped exporting; with a 5-minute
	schedule, 15 minutes of silence means two misses.

Write Failures:

	burrow_records_failed_total > 0

	The last run could not converge every record; the run logs name
	the failing entries.

# Troubleshooting

Metrics File Missing:
  - Check: metrics_file set in the configuration
  - Check: the directory exists and the job's user can write it
  - Note: the run logs a warning when the export fails

Counters Look Too Small:
  - Cause: counters reset every run by design
  - Meaning: each export describes one run, not a lifetime

# See Also

  - Textfile collector: https://github.com/prometheus/node_exporter#textfile-collector
  - Prometheus client: https://github.com/prometheus/client_golang
  - Exposition formats: https://prometheus.io/docs/instrumenting/exposition_formats/
*/
package metrics
