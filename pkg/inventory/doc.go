/*
Package inventory resolves the cluster's guest inventory into hosts with
usable addresses.

The inventory package is the first of the two synchronization phases. It lists
guest instances across the configured cluster nodes, filters out templates,
and determines one IP address per guest: preferably the address the in-guest
agent reports, otherwise a deterministic predicted address derived from the
guest id. Guests with neither are dropped. The output is the desired state the
record reconciler converges DNS toward.

# Architecture

	┌──────────────────── INVENTORY RESOLVER ──────────────────┐
	│                                                          │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Guest Listing (sequential)        │          │
	│  │  - ListGuests per configured node          │          │
	│  │  - Any listing failure aborts the call     │          │
	│  │  - Templates filtered out                  │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │      Address Resolution (bounded fan-out)  │          │
	│  │  - One agent query per guest               │          │
	│  │  - errgroup with configurable limit        │          │
	│  │  - Per-guest failures stay per-guest       │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │            Per-Guest Outcome               │          │
	│  │  agent address containing prefix → verbatim│          │
	│  │  no address, id ≤ 254 → {prefix}.{id}      │          │
	│  │  no address, id > 254 → dropped (warning)  │          │
	│  └────────────────────────────────────────────┘          │
	└──────────────────────────────────────────────────────────┘

# Core Components

Resolver:
  - Owns the node list, network prefix and concurrency bound
  - Resolve(ctx) is the whole phase-one contract

Host:
  - Name, numeric ID, resolved Addr
  - Predicted marks synthesized addresses for logging and metrics

API:
  - The two hypervisor client methods the resolver consumes
  - An interface so tests substitute a fake cluster

# Address Selection

The agent reports interfaces in order; the first address whose textual
form contains the configured prefix substring wins and is used verbatim.
No normalization happens: what the agent printed is what lands in DNS.
Loopback and link-local addresses never match a private network prefix,
which is what makes the simple substring test sufficient in practice.

# Predicted Addresses

When the agent is unreachable, reports an error, or reports no matching
address, the resolver falls back to predicting {prefix}.{id}. The
prediction leans on a provisioning convention: guests get static leases
whose last octet equals their guest id. Ids above 254 cannot fit the
last octet of such a pool, so those guests are dropped with a warning
instead of synthesizing a nonsense address.

# Failure Model

Listing failures are fatal to the call: without a complete inventory the
desired state would silently shrink and records for living guests could
go stale unnoticed. Agent failures are per-guest and recovered locally;
one unreachable agent must not hide every other guest from DNS. The two
belong to different failure domains and are treated accordingly.

# Usage

	resolver := inventory.New(client, inventory.Config{
		Prefix:      cfg.Network.Prefix,
		Nodes:       cfg.Proxmox.Nodes,
		Concurrency: cfg.Concurrency,
	}, log.WithComponent("inventory"))

	hosts, err := resolver.Resolve(ctx)
	if err != nil {
		// no partial results; abort the run
	}
	for _, h := range hosts {
		// h.Addr is real or predicted, h.Predicted tells which
	}

# Integration Points

This package integrates with:

  - pkg/proxmox: the API interface matches its client methods
  - pkg/metrics: counts guests listed, templates skipped, predictions,
    and dropped hosts
  - pkg/log: debug per agent call, info for predictions, warnings for
    dropped hosts
  - cmd/burrow: consumes the resolved hosts as phase-one output

# Design Patterns

Bounded Fan-Out Pattern:
  - errgroup.SetLimit caps in-flight agent queries
  - Workers write to their own slice slot, so no locking is needed
  - Worker functions always return nil; isolation is the point

Fallback Chain Pattern:
  - Observed address → predicted address → dropped
  - Each step is logged at a severity matching its surprise level

Interface Seam Pattern:
  - The resolver depends on a two-method interface, not the concrete
    client, keeping tests free of HTTP

# Performance Characteristics

Listing:
  - Sequential per node; node counts are small and a deterministic
    first-failure abort is worth more than parallel listing

Resolution:
  - One agent query per guest, bounded by Concurrency (default 8)
  - A cluster of 50 guests completes in 50/8 rounds of the slowest
    agent call rather than 50 sequential calls

# Troubleshooting

Every Guest Predicted:
  - Symptom: all hosts log "using predicted address"
  - Cause: guest agent not installed, or prefix does not match the
    guests' actual subnet
  - Check: one NetworkInterfaces call by hand; compare prefix config

Guests Missing from DNS:
  - Symptom: a guest never gets a record
  - Check: template flag (templates are skipped by design)
  - Check: guest id over 254 with no agent; those are dropped, and the
    warning names them

Run Aborts During Listing:
  - Symptom: "list guests on node X" error
  - Cause: node name wrong, node down, or token lacks VM.Audit there
  - Note: this abort is deliberate; partial inventories are worse than
    no run

# See Also

  - pkg/proxmox for the wire-level client
  - pkg/reconciler for phase two
  - QEMU guest agent: https://pve.proxmox.com/wiki/Qemu-guest-agent
*/
package inventory
