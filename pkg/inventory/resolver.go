package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/proxmox"
)

// maxPredictableID is the largest guest id that still fits the last
// octet of a predicted address
const maxPredictableID = 254

// API is the slice of the hypervisor client the resolver depends on
type API interface {
	ListGuests(ctx context.Context, node string) ([]proxmox.Guest, error)
	NetworkInterfaces(ctx context.Context, node string, vmid int) ([]proxmox.NetworkInterface, error)
}

// Host is a guest with a usable address, ready to become a DNS entry
type Host struct {
	Name string
	ID   int
	Addr string

	// Predicted marks an address synthesized from the network prefix
	// and the guest id rather than reported by the agent
	Predicted bool
}

// Config holds the resolver's settings
type Config struct {
	// Prefix is the network prefix a usable address must contain,
	// e.g. "10.6.0"
	Prefix string

	// Nodes are the cluster nodes whose guests are synchronized
	Nodes []string

	// Concurrency bounds outstanding agent queries
	Concurrency int
}

// Resolver turns the cluster's guest inventory into resolved hosts
type Resolver struct {
	api    API
	prefix string
	nodes  []string
	limit  int
	logger zerolog.Logger
}

// New creates an inventory resolver
func New(api API, cfg Config, logger zerolog.Logger) *Resolver {
	limit := cfg.Concurrency
	if limit < 1 {
		limit = 1
	}
	return &Resolver{
		api:    api,
		prefix: cfg.Prefix,
		nodes:  cfg.Nodes,
		limit:  limit,
		logger: logger,
	}
}

// target pairs a guest with the node it was listed on; agent queries
// go through that node
type target struct {
	node  string
	guest proxmox.Guest
}

// Resolve lists guests across all configured nodes and determines an
// address for each non-template guest. A listing failure aborts the
// whole call; per-guest agent failures only affect that guest, which
// falls back to a predicted address or is dropped.
func (r *Resolver) Resolve(ctx context.Context) ([]Host, error) {
	var targets []target
	for _, node := range r.nodes {
		guests, err := r.api.ListGuests(ctx, node)
		if err != nil {
			return nil, fmt.Errorf("list guests on node %s: %w", node, err)
		}
		metrics.GuestsListed.Add(float64(len(guests)))

		for _, guest := range guests {
			if guest.IsTemplate() {
				metrics.TemplatesSkipped.Inc()
				r.logger.Debug().
					Str("name", guest.Name).
					Int("vmid", guest.VMID).
					Msg("skipping template")
				continue
			}
			targets = append(targets, target{node: node, guest: guest})
		}
	}

	// One slot per guest so concurrent workers never share state;
	// dropped guests leave their slot nil
	resolved := make([]*Host, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i, t := range targets {
		g.Go(func() error {
			resolved[i] = r.resolveHost(gctx, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hosts := make([]Host, 0, len(resolved))
	for _, h := range resolved {
		if h != nil {
			hosts = append(hosts, *h)
		}
	}
	return hosts, nil
}

// resolveHost determines one guest's address. Returns nil when the
// guest has no usable address and none can be predicted.
func (r *Resolver) resolveHost(ctx context.Context, t target) *Host {
	addr, err := r.agentAddress(ctx, t.node, t.guest.VMID)
	if err != nil {
		var agentErr *proxmox.AgentError
		if errors.As(err, &agentErr) {
			r.logger.Debug().
				Str("name", t.guest.Name).
				Int("vmid", t.guest.VMID).
				Str("class", agentErr.Class).
				Msg("guest agent unavailable")
		} else {
			r.logger.Debug().
				Err(err).
				Str("name", t.guest.Name).
				Int("vmid", t.guest.VMID).
				Msg("agent query failed")
		}
	}

	if addr != "" {
		return &Host{Name: t.guest.Name, ID: t.guest.VMID, Addr: addr}
	}

	if t.guest.VMID > maxPredictableID {
		metrics.HostsDropped.Inc()
		r.logger.Warn().
			Str("name", t.guest.Name).
			Int("vmid", t.guest.VMID).
			Msg("no usable address and id exceeds the predictable range, dropping host")
		return nil
	}

	predicted := fmt.Sprintf("%s.%d", r.prefix, t.guest.VMID)
	metrics.AddressesPredicted.Inc()
	r.logger.Info().
		Str("name", t.guest.Name).
		Int("vmid", t.guest.VMID).
		Str("addr", predicted).
		Msg("using predicted address")
	return &Host{Name: t.guest.Name, ID: t.guest.VMID, Addr: predicted, Predicted: true}
}

// agentAddress returns the first agent-reported address containing the
// configured prefix, verbatim. Empty when the agent reports nothing
// usable.
func (r *Resolver) agentAddress(ctx context.Context, node string, vmid int) (string, error) {
	ifaces, err := r.api.NetworkInterfaces(ctx, node, vmid)
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		for _, ip := range iface.IPAddresses {
			if strings.Contains(ip.Address, r.prefix) {
				return ip.Address, nil
			}
		}
	}
	return "", nil
}
