package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/burrow/pkg/proxmox"
)

type fakeAPI struct {
	mu         sync.Mutex
	guests     map[string][]proxmox.Guest
	ifaces     map[int][]proxmox.NetworkInterface
	agentErrs  map[int]error
	listErrs   map[string]error
	agentCalls map[int]string // vmid -> node the query went through
}

func (f *fakeAPI) ListGuests(ctx context.Context, node string) ([]proxmox.Guest, error) {
	if err := f.listErrs[node]; err != nil {
		return nil, err
	}
	return f.guests[node], nil
}

func (f *fakeAPI) NetworkInterfaces(ctx context.Context, node string, vmid int) ([]proxmox.NetworkInterface, error) {
	f.mu.Lock()
	if f.agentCalls == nil {
		f.agentCalls = make(map[int]string)
	}
	f.agentCalls[vmid] = node
	f.mu.Unlock()

	if err := f.agentErrs[vmid]; err != nil {
		return nil, err
	}
	return f.ifaces[vmid], nil
}

func eth0(addrs ...string) []proxmox.NetworkInterface {
	ips := make([]proxmox.IPAddress, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, proxmox.IPAddress{Address: a, Type: "ipv4"})
	}
	return []proxmox.NetworkInterface{{Name: "eth0", IPAddresses: ips}}
}

// TestResolver_Resolve tests address selection and fallback behavior
func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		guests    []proxmox.Guest
		ifaces    map[int][]proxmox.NetworkInterface
		agentErrs map[int]error
		want      []Host
	}{
		{
			name:   "agent address used verbatim",
			guests: []proxmox.Guest{{VMID: 101, Name: "web1"}},
			ifaces: map[int][]proxmox.NetworkInterface{
				101: {
					{Name: "lo", IPAddresses: []proxmox.IPAddress{{Address: "127.0.0.1"}}},
					{Name: "eth0", IPAddresses: []proxmox.IPAddress{{Address: "10.6.0.42"}}},
				},
			},
			want: []Host{{Name: "web1", ID: 101, Addr: "10.6.0.42"}},
		},
		{
			name: "templates excluded",
			guests: []proxmox.Guest{
				{VMID: 9000, Name: "base-image", Template: 1},
				{VMID: 101, Name: "web1"},
			},
			ifaces: map[int][]proxmox.NetworkInterface{101: eth0("10.6.0.42")},
			want:   []Host{{Name: "web1", ID: 101, Addr: "10.6.0.42"}},
		},
		{
			name:      "agent failure falls back to prediction",
			guests:    []proxmox.Guest{{VMID: 102, Name: "db1"}},
			agentErrs: map[int]error{102: errors.New("connection refused")},
			want:      []Host{{Name: "db1", ID: 102, Addr: "10.6.0.102", Predicted: true}},
		},
		{
			name:   "structured agent error falls back to prediction",
			guests: []proxmox.Guest{{VMID: 103, Name: "cache1"}},
			agentErrs: map[int]error{
				103: &proxmox.AgentError{Class: "Unrouteable", Desc: "No QEMU guest agent configured"},
			},
			want: []Host{{Name: "cache1", ID: 103, Addr: "10.6.0.103", Predicted: true}},
		},
		{
			name:   "no matching address falls back to prediction",
			guests: []proxmox.Guest{{VMID: 104, Name: "edge1"}},
			ifaces: map[int][]proxmox.NetworkInterface{104: eth0("192.168.1.5", "fe80::1")},
			want:   []Host{{Name: "edge1", ID: 104, Addr: "10.6.0.104", Predicted: true}},
		},
		{
			name:      "unresolvable guest beyond predictable range dropped",
			guests:    []proxmox.Guest{{VMID: 300, Name: "big1"}},
			agentErrs: map[int]error{300: errors.New("connection refused")},
			want:      []Host{},
		},
		{
			name: "per-guest failures stay isolated",
			guests: []proxmox.Guest{
				{VMID: 101, Name: "web1"},
				{VMID: 102, Name: "db1"},
				{VMID: 300, Name: "big1"},
			},
			ifaces:    map[int][]proxmox.NetworkInterface{101: eth0("10.6.0.42")},
			agentErrs: map[int]error{102: errors.New("timeout"), 300: errors.New("timeout")},
			want: []Host{
				{Name: "web1", ID: 101, Addr: "10.6.0.42"},
				{Name: "db1", ID: 102, Addr: "10.6.0.102", Predicted: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{
				guests:    map[string][]proxmox.Guest{"pve1": tt.guests},
				ifaces:    tt.ifaces,
				agentErrs: tt.agentErrs,
			}
			resolver := New(api, Config{
				Prefix:      "10.6.0",
				Nodes:       []string{"pve1"},
				Concurrency: 4,
			}, zerolog.Nop())

			hosts, err := resolver.Resolve(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, hosts)
		})
	}
}

// TestResolver_ListFailureAborts tests that a listing error fails the
// whole call with no partial result
func TestResolver_ListFailureAborts(t *testing.T) {
	api := &fakeAPI{
		guests:   map[string][]proxmox.Guest{"pve1": {{VMID: 101, Name: "web1"}}},
		ifaces:   map[int][]proxmox.NetworkInterface{101: eth0("10.6.0.42")},
		listErrs: map[string]error{"pve2": errors.New("auth failure")},
	}
	resolver := New(api, Config{
		Prefix:      "10.6.0",
		Nodes:       []string{"pve1", "pve2"},
		Concurrency: 4,
	}, zerolog.Nop())

	hosts, err := resolver.Resolve(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pve2")
	assert.Nil(t, hosts)

	// The failure happens during listing, before any agent query
	assert.Empty(t, api.agentCalls)
}

// TestResolver_MultiNode tests that agent queries go through the node
// each guest was listed on
func TestResolver_MultiNode(t *testing.T) {
	api := &fakeAPI{
		guests: map[string][]proxmox.Guest{
			"pve1": {{VMID: 101, Name: "web1"}},
			"pve2": {{VMID: 201, Name: "web2"}},
		},
		ifaces: map[int][]proxmox.NetworkInterface{
			101: eth0("10.6.0.42"),
			201: eth0("10.6.0.43"),
		},
	}
	resolver := New(api, Config{
		Prefix:      "10.6.0",
		Nodes:       []string{"pve1", "pve2"},
		Concurrency: 4,
	}, zerolog.Nop())

	hosts, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	assert.Len(t, hosts, 2)
	assert.Equal(t, "pve1", api.agentCalls[101])
	assert.Equal(t, "pve2", api.agentCalls[201])
}
