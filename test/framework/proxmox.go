package framework

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// FakeProxmox simulates the Proxmox VE HTTP API for tests. It serves
// guest listings per node and agent interface queries per guest, and
// its fixtures can be mutated between runs to simulate guests booting,
// migrating or losing their agent.
type FakeProxmox struct {
	srv *httptest.Server

	mu        sync.Mutex
	nodes     map[string][]GuestFixture
	downNodes map[string]bool
	requests  int
}

// NewFakeProxmox starts a fake API serving the given guests per node
func NewFakeProxmox(nodes map[string][]GuestFixture) *FakeProxmox {
	f := &FakeProxmox{
		nodes:     nodes,
		downNodes: make(map[string]bool),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the fake API's base URL
func (f *FakeProxmox) URL() string {
	return f.srv.URL
}

// Close shuts the fake API down
func (f *FakeProxmox) Close() {
	f.srv.Close()
}

// Requests returns how many API calls the fake has served
func (f *FakeProxmox) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// SetAddrs points a guest's agent at a new address list, clearing any
// simulated agent outage. Used to simulate a guest whose agent came up
// or whose address changed between runs.
func (f *FakeProxmox) SetAddrs(vmid int, addrs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for node, guests := range f.nodes {
		for i, g := range guests {
			if g.VMID == vmid {
				guests[i].Addrs = addrs
				guests[i].AgentDown = false
				f.nodes[node] = guests
				return
			}
		}
	}
}

// FailNode makes listing the given node answer with a server error
func (f *FakeProxmox) FailNode(node string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downNodes[node] = true
}

func (f *FakeProxmox) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests++
	f.mu.Unlock()

	if !strings.HasPrefix(r.Header.Get("Authorization"), "PVEAPIToken=") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	// /api2/json/nodes/{node}/qemu
	// /api2/json/nodes/{node}/qemu/{vmid}/agent/network-get-interfaces
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 5 && parts[4] == "qemu":
		f.handleListing(w, parts[3])
	case len(parts) == 8 && parts[6] == "agent" && parts[7] == "network-get-interfaces":
		vmid, err := strconv.Atoi(parts[5])
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.handleAgent(w, parts[3], vmid)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *FakeProxmox) handleListing(w http.ResponseWriter, node string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.downNodes[node] {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	guests, ok := f.nodes[node]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	type wireGuest struct {
		VMID     int    `json:"vmid"`
		Name     string `json:"name"`
		Template int    `json:"template,omitempty"`
		Status   string `json:"status"`
	}
	out := make([]wireGuest, 0, len(guests))
	for _, g := range guests {
		wg := wireGuest{VMID: g.VMID, Name: g.Name, Status: "running"}
		if g.Template {
			wg.Template = 1
			wg.Status = "stopped"
		}
		out = append(out, wg)
	}

	writeJSON(w, map[string]interface{}{"data": out})
}

func (f *FakeProxmox) handleAgent(w http.ResponseWriter, node string, vmid int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, g := range f.nodes[node] {
		if g.VMID != vmid {
			continue
		}

		if g.AgentDown {
			writeJSON(w, map[string]interface{}{
				"data": map[string]interface{}{
					"result": map[string]interface{}{
						"error": map[string]string{
							"class": "Unrouteable",
							"desc":  "QEMU guest agent is not running",
						},
					},
				},
			})
			return
		}

		// Loopback first, like a real agent answer
		type wireAddr struct {
			Address string `json:"ip-address"`
			Type    string `json:"ip-address-type"`
			Prefix  int    `json:"prefix"`
		}
		type wireIface struct {
			Name  string     `json:"name"`
			Addrs []wireAddr `json:"ip-addresses"`
		}
		ifaces := []wireIface{
			{Name: "lo", Addrs: []wireAddr{{Address: "127.0.0.1", Type: "ipv4", Prefix: 8}}},
		}
		eth := wireIface{Name: "eth0"}
		for _, a := range g.Addrs {
			eth.Addrs = append(eth.Addrs, wireAddr{Address: a, Type: "ipv4", Prefix: 24})
		}
		ifaces = append(ifaces, eth)

		writeJSON(w, map[string]interface{}{
			"data": map[string]interface{}{"result": ifaces},
		})
		return
	}

	w.WriteHeader(http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(fmt.Sprintf("framework: encode response: %v", err))
	}
}
