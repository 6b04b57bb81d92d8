/*
Package reconciler converges a DNS zone's A records toward a desired set of
host entries.

The reconciler is the second of the two synchronization phases. Given the
entries produced from resolved hosts, it resolves the zone name to its
provider id once, then processes every entry independently: look the record
up by its fully qualified name, then skip, update, or create so the zone ends
up matching the desired state with the minimum number of write calls.

# Architecture

	┌──────────────────── RECORD RECONCILER ───────────────────┐
	│                                                          │
	│  ┌────────────────────────────────────────────┐          │
	│  │           Zone Resolution (barrier)        │          │
	│  │  - ZoneID(zone) exactly once per run       │          │
	│  │  - Failure aborts before any record call   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          Deduplication (last wins)         │          │
	│  │  - Duplicate names collapse before fan-out │          │
	│  │  - Deterministic instead of racy           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │      Per-Entry Convergence (fan-out)       │          │
	│  │  FindRecord(fqdn)                          │          │
	│  │    absent          → CreateRecord          │          │
	│  │    equal content   → skip                  │          │
	│  │    drifted content → UpdateRecord(id)      │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │               Result                       │          │
	│  │  Created / Updated / Skipped / Failed      │          │
	│  │  Errors: accumulated per-entry failures    │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Core Components

Reconciler:
  - Owns the concurrency bound and the DNS API dependency
  - Sync(ctx, zone, entries) is the whole phase-two contract

Entry:
  - One desired record: fully qualified Name plus Addr

Result:
  - Counts per outcome plus an accumulated multierror
  - Failed entries never fail Sync; the zone lookup is the only
    run-aborting step

FQDN:
  - Builds {host}.{subdomain}.{zone}, omitting an empty subdomain

# Convergence Decisions

Per entry, exactly one of four things happens:

	existing record │ content      │ action   │ API calls
	────────────────┼──────────────┼──────────┼──────────
	absent          │ n/a          │ create   │ 1 lookup + 1 write
	present         │ equal        │ skip     │ 1 lookup
	present         │ different    │ update   │ 1 lookup + 1 write
	lookup fails    │ n/a          │ failed   │ 1 lookup

Updates always carry the existing record's provider id; creates never
do. A skip is the expected steady state: a run over an unchanged
cluster issues zero writes.

# Record Policy

Every write uses fixed parameters: type A, TTL 120, priority 10,
proxied false. These are policy, not configuration. TTLs stay short
because guest addresses move; records stay unproxied because they point
at lab-internal addresses no edge should front.

# Failure Isolation

One entry's lookup or write failure is logged at error level, counted
in Result.Failed, and appended to Result.Errors. It never cancels
sibling entries and never fails Sync. The zone lookup is different: if
the zone cannot be resolved, every subsequent write would be
meaningless, so Sync fails before touching any record.

# Usage

	rec := reconciler.New(client, cfg.Concurrency, log.WithComponent("reconciler"))

	entries := []reconciler.Entry{
		{Name: reconciler.FQDN("web1", "lab", "example.com"), Addr: "10.6.0.42"},
	}

	res, err := rec.Sync(ctx, "example.com", entries)
	if err != nil {
		// zone lookup failed; nothing was written
	}
	if res.Failed > 0 {
		// individual failures, already logged; res.Errors has them all
	}

# Integration Points

This package integrates with:

  - pkg/cloudflare: the API interface matches its client methods
  - pkg/metrics: counts created, updated, skipped and failed records
  - pkg/log: info per outcome, error per failed entry, warning on
    duplicate desired names
  - cmd/burrow: feeds resolved hosts in as entries

# Design Patterns

Explicit Barrier Pattern:
  - The zone id is resolved once and passed as a value to every entry
    operation; no lazily cached instance state, no ordering ambiguity

Last-Writer-Wins Dedup Pattern:
  - Duplicate names collapse deterministically before any goroutine
    starts, replacing a lookup/write race with a logged decision

Accumulated Error Pattern:
  - Per-entry errors collect into one multierror on the Result
  - Callers get both the counts and the full failure detail

# Performance Characteristics

API Traffic:
  - 1 zone lookup per run
  - 1 record lookup per entry, plus 1 write per create/update
  - Steady state (all skips): N+1 reads, 0 writes for N entries

Concurrency:
  - Entries converge through an errgroup bounded by the configured
    limit; Result counters update under one mutex, held only for the
    increment

# Troubleshooting

Sync Returns an Error:
  - Meaning: the zone lookup failed; zero records were touched
  - Check: zone spelling, token's zone scope

Entries Keep Failing:
  - Symptom: Result.Failed > 0 run after run
  - Check: the per-entry error lines name each record and cause
  - Note: failed entries retry naturally on the next scheduled run

Both Create and Update Fire for One Name:
  - Symptom: duplicate records appear in the zone
  - Cause: two desired entries shared a name in one run, which dedup
    makes impossible; check for two guests with the same name feeding
    different runs instead

# See Also

  - pkg/cloudflare for the wire-level client
  - pkg/inventory for phase one
  - DNS records API: https://developers.cloudflare.com/api/
*/
package reconciler
