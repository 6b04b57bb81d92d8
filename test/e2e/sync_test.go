package e2e

import (
	"context"
	"sort"
	"testing"

	"github.com/cuemby/burrow/test/framework"
)

func newHarness(t *testing.T, nodes map[string][]framework.GuestFixture) *framework.Harness {
	t.Helper()

	names := make([]string, 0, len(nodes))
	for node := range nodes {
		names = append(names, node)
	}
	sort.Strings(names)

	h, err := framework.NewHarness(framework.HarnessConfig{
		Prefix:    "10.6.0",
		Nodes:     names,
		Zone:      "example.com",
		Subdomain: "lab",
	}, nodes)
	if err != nil {
		t.Fatalf("Failed to build harness: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}

// TestSyncEndToEnd drives a full pass over the fake APIs: listing,
// agent queries, prediction fallback, and record convergence
func TestSyncEndToEnd(t *testing.T) {
	h := newHarness(t, map[string][]framework.GuestFixture{
		"pve1": {
			{VMID: 101, Name: "web1", Addrs: []string{"10.6.0.42"}},
			{VMID: 102, Name: "db1", AgentDown: true},
			{VMID: 9000, Name: "base-image", Template: true},
		},
		"pve2": {
			{VMID: 201, Name: "edge1", Addrs: []string{"192.168.1.7"}},
			{VMID: 300, Name: "big1", AgentDown: true},
		},
	})

	// web1 drifted, edge1 already converged
	h.Cloudflare.Seed("web1.lab.example.com", "10.6.0.40")
	h.Cloudflare.Seed("edge1.lab.example.com", "10.6.0.201")

	hosts, res, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Template excluded, big1 dropped (no address, id beyond the
	// predictable range), everything else resolved
	if len(hosts) != 3 {
		t.Fatalf("Expected 3 resolved hosts, got %d: %+v", len(hosts), hosts)
	}
	for _, host := range hosts {
		if host.Name == "base-image" || host.Name == "big1" {
			t.Errorf("Host %s should not have been resolved", host.Name)
		}
	}

	if res.Created != 1 || res.Updated != 1 || res.Skipped != 1 || res.Failed != 0 {
		t.Fatalf("Unexpected result: %+v", res)
	}

	// Agent-reported address used verbatim
	web1 := h.Cloudflare.Record("web1.lab.example.com")
	if web1 == nil || web1.Content != "10.6.0.42" {
		t.Errorf("Unexpected web1 record: %+v", web1)
	}

	// Agent down with id 102 predicts 10.6.0.102
	db1 := h.Cloudflare.Record("db1.lab.example.com")
	if db1 == nil || db1.Content != "10.6.0.102" {
		t.Errorf("Unexpected db1 record: %+v", db1)
	}

	// No address matching the prefix predicts 10.6.0.201, which the
	// seeded record already holds
	edge1 := h.Cloudflare.Record("edge1.lab.example.com")
	if edge1 == nil || edge1.Content != "10.6.0.201" {
		t.Errorf("Unexpected edge1 record: %+v", edge1)
	}

	if rec := h.Cloudflare.Record("big1.lab.example.com"); rec != nil {
		t.Errorf("Dropped host should have no record, got %+v", rec)
	}
}

// TestSyncIdempotent verifies the second pass over unchanged state
// issues zero write calls
func TestSyncIdempotent(t *testing.T) {
	h := newHarness(t, map[string][]framework.GuestFixture{
		"pve1": {
			{VMID: 101, Name: "web1", Addrs: []string{"10.6.0.42"}},
			{VMID: 102, Name: "db1", AgentDown: true},
		},
	})

	if _, _, err := h.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	creates, updates := h.Cloudflare.Writes()
	if creates != 2 || updates != 0 {
		t.Fatalf("First run should create both records, got creates=%d updates=%d", creates, updates)
	}

	_, res, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if res.Skipped != 2 || res.Created != 0 || res.Updated != 0 {
		t.Fatalf("Second run should skip everything: %+v", res)
	}

	creates, updates = h.Cloudflare.Writes()
	if creates != 2 || updates != 0 {
		t.Errorf("Second run issued writes: creates=%d updates=%d", creates, updates)
	}
}

// TestSyncFollowsAddressChange verifies a guest whose address moved
// between runs gets exactly one update
func TestSyncFollowsAddressChange(t *testing.T) {
	h := newHarness(t, map[string][]framework.GuestFixture{
		"pve1": {{VMID: 101, Name: "web1", Addrs: []string{"10.6.0.42"}}},
	})

	if _, _, err := h.Run(context.Background()); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	h.Proxmox.SetAddrs(101, "10.6.0.99")

	_, res, err := h.Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if res.Updated != 1 {
		t.Fatalf("Expected one update, got %+v", res)
	}

	rec := h.Cloudflare.Record("web1.lab.example.com")
	if rec == nil || rec.Content != "10.6.0.99" {
		t.Errorf("Record should follow the new address, got %+v", rec)
	}

	creates, updates := h.Cloudflare.Writes()
	if creates != 1 || updates != 1 {
		t.Errorf("Unexpected write counts: creates=%d updates=%d", creates, updates)
	}
}

// TestSyncNodeFailureAborts verifies a listing failure ends the run
// before any record traffic
func TestSyncNodeFailureAborts(t *testing.T) {
	h := newHarness(t, map[string][]framework.GuestFixture{
		"pve1": {{VMID: 101, Name: "web1", Addrs: []string{"10.6.0.42"}}},
		"pve2": {{VMID: 201, Name: "web2", Addrs: []string{"10.6.0.43"}}},
	})

	h.Proxmox.FailNode("pve2")

	_, _, err := h.Run(context.Background())
	if err == nil {
		t.Fatal("Expected the run to fail")
	}

	creates, updates := h.Cloudflare.Writes()
	if creates != 0 || updates != 0 {
		t.Errorf("Failed run issued writes: creates=%d updates=%d", creates, updates)
	}
}
