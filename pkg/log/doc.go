/*
Package log provides structured logging for the synchronizer using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific child loggers, configurable levels, and a per-run
correlation id. Runs are short and scheduled, so everything goes to standard
output where cron or the systemd journal picks it up; there is no file
handling and no rotation concern in-process.

# Architecture

	┌───────────────────── LOGGING SYSTEM ─────────────────────┐
	│                                                          │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Global Logger                   │          │
	│  │  - Zerolog instance                        │          │
	│  │  - Initialized via log.Init()              │          │
	│  │  - Thread-safe for concurrent use          │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Configuration                    │          │
	│  │  - Level: debug/info/warn/error            │          │
	│  │  - Format: JSON or console (human)         │          │
	│  │  - Output: stdout or custom writer         │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Child Loggers                    │          │
	│  │  - WithComponent("inventory")              │          │
	│  │  - WithRunID("4be1...")                    │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │             Log Output                     │          │
	│  │                                            │          │
	│  │  JSON:                                     │          │
	│  │  {"level":"info","component":"reconciler", │          │
	│  │   "run_id":"4be1...","name":"web1...",     │          │
	│  │   "message":"record created"}              │          │
	│  │                                            │          │
	│  │  Console:                                  │          │
	│  │  10:30AM INF record created                │          │
	│  │          component=reconciler name=web1... │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Severity Mapping

The synchronizer uses levels with fixed meanings:

Debug:
  - Per-call detail: one line per API request, agent answer, listing
  - Off in production; the volume scales with guest count

Info:
  - Lifecycle events: records created, updated and skipped, predicted
    addresses in use, the end-of-run summary

Warn:
  - Surprises that do not stop the run: dropped hosts, duplicate
    desired names, metrics export failures

Error:
  - Single-entry failures: one record's lookup or write failed while
    the rest of the run continued

Fatal:
  - Run-aborting failures: configuration, inventory listing, zone
    lookup. Logged via WithLevel so the command layer controls the
    process exit instead of the logger

# Usage

Initializing:

	import "github.com/cuemby/burrow/pkg/log"

	// JSON output (scheduled runs)
	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

	// Console output (interactive use)
	log.Init(log.Config{
		Level: log.DebugLevel,
	})

Run correlation:

	// Every line of this run carries the same run_id
	log.Logger = log.WithRunID(uuid.NewString())

Component loggers:

	invLog := log.WithComponent("inventory")
	invLog.Info().
		Str("name", "web1").
		Str("addr", "10.6.0.101").
		Msg("using predicted address")

Fatal without exiting the logger's caller:

	log.Logger.WithLevel(zerolog.FatalLevel).
		Err(err).
		Msg("inventory resolution failed")
	return err // the command layer turns this into exit 1

# Integration Points

This package integrates with:

  - cmd/burrow: initializes the logger and stamps the run id
  - pkg/inventory: component logger, debug through warn
  - pkg/reconciler: component logger, info through error
  - pkg/proxmox, pkg/cloudflare: per-call debug detail

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger, initialized once in the command layer
  - Child loggers derive from it, inheriting run-level fields

Context Logger Pattern:
  - WithComponent and WithRunID return children with fields attached
  - Call sites never repeat the fields by hand

Deferred Exit Pattern:
  - Fatal severity is logged with WithLevel, which does not exit
  - The process exit code belongs to the command layer, keeping the
    logger side-effect free

# Log Output Examples

JSON (scheduled runs):

	{"level":"info","run_id":"4be1a...","component":"inventory","name":"db1","vmid":102,"addr":"10.6.0.102","time":"2026-08-21T10:30:00Z","message":"using predicted address"}
	{"level":"error","run_id":"4be1a...","component":"reconciler","name":"bad.example.com","error":"api down","time":"2026-08-21T10:30:02Z","message":"record convergence failed"}

Console (interactive):

	10:30:00 INF using predicted address component=inventory name=db1 vmid=102 addr=10.6.0.102
	10:30:02 ERR record convergence failed component=reconciler name=bad.example.com error="api down"

# Troubleshooting

No Log Output:
  - Check: log.Init() called before any logging
  - Check: level threshold (debug lines vanish at info level)

Lines Missing run_id:
  - Cause: lines emitted before the run id was stamped onto the global
  - Expected for configuration-load failures, which happen first

Mixed Runs in Aggregation:
  - Solution: group by run_id; each scheduled invocation gets its own

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
  - 12-Factor App Logs: https://12factor.net/logs
*/
package log
