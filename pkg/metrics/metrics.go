package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// registry is dedicated to this process rather than the global default
// so repeated runs and tests never collide with other registrations
var registry = prometheus.NewRegistry()

var (
	// Inventory metrics
	GuestsListed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_guests_listed_total",
			Help: "Total number of guest instances returned by cluster listings",
		},
	)

	TemplatesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_templates_skipped_total",
			Help: "Total number of template guests excluded from resolution",
		},
	)

	AddressesPredicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_addresses_predicted_total",
			Help: "Total number of hosts given a predicted address instead of an agent-reported one",
		},
	)

	HostsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_hosts_dropped_total",
			Help: "Total number of hosts dropped with no usable address",
		},
	)

	// Reconciliation metrics
	RecordsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_records_created_total",
			Help: "Total number of DNS records created",
		},
	)

	RecordsUpdated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_records_updated_total",
			Help: "Total number of DNS records updated",
		},
	)

	RecordsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_records_skipped_total",
			Help: "Total number of DNS records already in the desired state",
		},
	)

	RecordsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_records_failed_total",
			Help: "Total number of DNS record writes that failed",
		},
	)

	// Run metrics
	RunDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_run_duration_seconds",
			Help: "Duration of the last synchronization run in seconds",
		},
	)

	LastRun = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last synchronization run",
		},
	)
)

func init() {
	// Register all metrics
	registry.MustRegister(GuestsListed)
	registry.MustRegister(TemplatesSkipped)
	registry.MustRegister(AddressesPredicted)
	registry.MustRegister(HostsDropped)
	registry.MustRegister(RecordsCreated)
	registry.MustRegister(RecordsUpdated)
	registry.MustRegister(RecordsSkipped)
	registry.MustRegister(RecordsFailed)
	registry.MustRegister(RunDuration)
	registry.MustRegister(LastRun)
}

// ObserveRun records the duration and completion time of a run
func ObserveRun(d time.Duration) {
	RunDuration.Set(d.Seconds())
	LastRun.SetToCurrentTime()
}

// WriteFile exports the registry in the text exposition format for the
// node_exporter textfile collector. The job exits after each run, so a
// textfile is how its counters survive for scraping.
func WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}
