package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteFile(t *testing.T) {
	GuestsListed.Add(3)
	RecordsCreated.Inc()
	ObserveRun(1500 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "burrow.prom")
	if err := WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Reading textfile: %v", err)
	}

	// Every registered metric renders, whether touched or not
	names := []string{
		"burrow_guests_listed_total",
		"burrow_templates_skipped_total",
		"burrow_addresses_predicted_total",
		"burrow_hosts_dropped_total",
		"burrow_records_created_total",
		"burrow_records_updated_total",
		"burrow_records_skipped_total",
		"burrow_records_failed_total",
		"burrow_run_duration_seconds",
		"burrow_last_run_timestamp_seconds",
	}
	for _, name := range names {
		if !strings.Contains(string(data), name) {
			t.Errorf("Metric %s missing from textfile", name)
		}
	}

	if !strings.Contains(string(data), "burrow_run_duration_seconds 1.5") {
		t.Errorf("Expected run duration 1.5s in textfile:\n%s", data)
	}
}

func TestWriteFileBadPath(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, "missing", "burrow.prom")); err == nil {
		t.Error("Expected error for unwritable path")
	}
}
