package reconciler

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cuemby/burrow/pkg/cloudflare"
	"github.com/cuemby/burrow/pkg/metrics"
)

// Fixed record policy: every record this job writes is a short-TTL,
// unproxied A record. Not configurable.
const (
	recordType     = "A"
	recordTTL      = 120
	recordPriority = 10
)

// API is the slice of the DNS provider client the reconciler depends on
type API interface {
	ZoneID(ctx context.Context, name string) (string, error)
	FindRecord(ctx context.Context, zoneID, fqdn string) (*cloudflare.Record, error)
	CreateRecord(ctx context.Context, zoneID string, rec cloudflare.Record) error
	UpdateRecord(ctx context.Context, zoneID, recordID string, rec cloudflare.Record) error
}

// Entry is one desired DNS record
type Entry struct {
	Name string // fully qualified
	Addr string
}

// Result sums up one reconciliation run
type Result struct {
	Created int
	Updated int
	Skipped int
	Failed  int

	// Errors accumulates every per-entry failure; nil when all
	// entries converged
	Errors error
}

// Reconciler converges a zone's records toward a desired entry set
type Reconciler struct {
	api    API
	limit  int
	logger zerolog.Logger
}

// New creates a record reconciler
func New(api API, concurrency int, logger zerolog.Logger) *Reconciler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Reconciler{
		api:    api,
		limit:  concurrency,
		logger: logger,
	}
}

// FQDN builds the record name for a host: {host}.{subdomain}.{zone},
// omitting the subdomain when empty
func FQDN(host, subdomain, zone string) string {
	if subdomain == "" {
		return host + "." + zone
	}
	return host + "." + subdomain + "." + zone
}

// Sync resolves the zone id, then converges every entry independently.
// A zone lookup failure fails the whole call before any write; a
// per-entry failure is counted and accumulated but never cancels
// sibling entries or fails Sync itself.
func (r *Reconciler) Sync(ctx context.Context, zone string, entries []Entry) (*Result, error) {
	zoneID, err := r.api.ZoneID(ctx, zone)
	if err != nil {
		return nil, fmt.Errorf("resolve zone %s: %w", zone, err)
	}

	entries = r.dedupe(entries)

	res := &Result{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for _, e := range entries {
		g.Go(func() error {
			out, err := r.converge(gctx, zoneID, e)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				res.Errors = multierror.Append(res.Errors, fmt.Errorf("%s: %w", e.Name, err))
				metrics.RecordsFailed.Inc()
				r.logger.Error().
					Err(err).
					Str("name", e.Name).
					Msg("record convergence failed")
				return nil
			}
			switch out {
			case outcomeCreated:
				res.Created++
			case outcomeUpdated:
				res.Updated++
			case outcomeSkipped:
				res.Skipped++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// dedupe collapses duplicate desired names, keeping the last entry in
// input order so callers get deterministic behavior instead of two
// chains racing for the same record
func (r *Reconciler) dedupe(entries []Entry) []Entry {
	seen := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if i, ok := seen[e.Name]; ok {
			r.logger.Warn().
				Str("name", e.Name).
				Str("replaced", out[i].Addr).
				Str("content", e.Addr).
				Msg("duplicate desired name, keeping last entry")
			out[i] = e
			continue
		}
		seen[e.Name] = len(out)
		out = append(out, e)
	}
	return out
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeUpdated
	outcomeCreated
)

// converge performs one entry's lookup-then-write chain against the
// already-resolved zone
func (r *Reconciler) converge(ctx context.Context, zoneID string, e Entry) (outcome, error) {
	existing, err := r.api.FindRecord(ctx, zoneID, e.Name)
	if err != nil {
		return 0, fmt.Errorf("lookup record: %w", err)
	}

	rec := cloudflare.Record{
		Type:     recordType,
		Name:     e.Name,
		Content:  e.Addr,
		TTL:      recordTTL,
		Priority: recordPriority,
		Proxied:  false,
	}

	switch {
	case existing == nil:
		if err := r.api.CreateRecord(ctx, zoneID, rec); err != nil {
			return 0, fmt.Errorf("create record: %w", err)
		}
		metrics.RecordsCreated.Inc()
		r.logger.Info().
			Str("name", e.Name).
			Str("content", e.Addr).
			Msg("record created")
		return outcomeCreated, nil

	case existing.Content == e.Addr:
		metrics.RecordsSkipped.Inc()
		r.logger.Info().
			Str("name", e.Name).
			Str("content", e.Addr).
			Msg("record already in desired state")
		return outcomeSkipped, nil

	default:
		if err := r.api.UpdateRecord(ctx, zoneID, existing.ID, rec); err != nil {
			return 0, fmt.Errorf("update record: %w", err)
		}
		metrics.RecordsUpdated.Inc()
		r.logger.Info().
			Str("name", e.Name).
			Str("old", existing.Content).
			Str("content", e.Addr).
			Msg("record updated")
		return outcomeUpdated, nil
	}
}
