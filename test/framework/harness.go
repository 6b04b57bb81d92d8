package framework

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cuemby/burrow/pkg/cloudflare"
	"github.com/cuemby/burrow/pkg/inventory"
	"github.com/cuemby/burrow/pkg/proxmox"
	"github.com/cuemby/burrow/pkg/reconciler"
)

// Harness wires real hypervisor and DNS clients against the fake APIs
// and drives full synchronization passes the way the sync command does
type Harness struct {
	Proxmox    *FakeProxmox
	Cloudflare *FakeCloudflare

	cfg        HarnessConfig
	resolver   *inventory.Resolver
	reconciler *reconciler.Reconciler
}

// NewHarness starts both fake APIs and builds the pipeline against them
func NewHarness(cfg HarnessConfig, nodes map[string][]GuestFixture) (*Harness, error) {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}

	fakePVE := NewFakeProxmox(nodes)
	fakeCF := NewFakeCloudflare(cfg.Zone)

	pve, err := proxmox.NewClient(proxmox.ClientConfig{
		BaseURL:     fakePVE.URL(),
		TokenID:     "test@pam!harness",
		TokenSecret: "secret",
	}, zerolog.Nop())
	if err != nil {
		fakePVE.Close()
		fakeCF.Close()
		return nil, fmt.Errorf("harness: hypervisor client: %w", err)
	}

	cf, err := cloudflare.NewClient(cloudflare.ClientConfig{
		BaseURL: fakeCF.URL(),
		Token:   "cf-token",
	}, zerolog.Nop())
	if err != nil {
		fakePVE.Close()
		fakeCF.Close()
		return nil, fmt.Errorf("harness: DNS client: %w", err)
	}

	return &Harness{
		Proxmox:    fakePVE,
		Cloudflare: fakeCF,
		cfg:        cfg,
		resolver: inventory.New(pve, inventory.Config{
			Prefix:      cfg.Prefix,
			Nodes:       cfg.Nodes,
			Concurrency: cfg.Concurrency,
		}, zerolog.Nop()),
		reconciler: reconciler.New(cf, cfg.Concurrency, zerolog.Nop()),
	}, nil
}

// Close shuts both fake APIs down
func (h *Harness) Close() {
	h.Proxmox.Close()
	h.Cloudflare.Close()
}

// FQDN builds the record name a host resolves to under the harness zone
func (h *Harness) FQDN(host string) string {
	return reconciler.FQDN(host, h.cfg.Subdomain, h.cfg.Zone)
}

// Run performs one full synchronization pass: resolve the inventory,
// build desired entries sorted by guest id, converge the zone
func (h *Harness) Run(ctx context.Context) ([]inventory.Host, *reconciler.Result, error) {
	hosts, err := h.resolver.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(hosts, func(i, j int) bool { return hosts[i].ID < hosts[j].ID })

	entries := make([]reconciler.Entry, 0, len(hosts))
	for _, host := range hosts {
		entries = append(entries, reconciler.Entry{
			Name: h.FQDN(host.Name),
			Addr: host.Addr,
		})
	}

	res, err := h.reconciler.Sync(ctx, h.cfg.Zone, entries)
	if err != nil {
		return hosts, nil, err
	}
	return hosts, res, nil
}
