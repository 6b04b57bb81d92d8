package proxmox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		BaseURL:     server.URL,
		TokenID:     "sync@pam!burrow",
		TokenSecret: "secret",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client
}

func TestClient_ListGuests(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request shape
		if r.URL.Path != "/api2/json/nodes/pve1/qemu" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "PVEAPIToken=sync@pam!burrow=secret" {
			t.Errorf("Unexpected auth header: %s", got)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"vmid":101,"name":"web1","template":0,"status":"running"},
			{"vmid":9000,"name":"base-image","template":1,"status":"stopped"}
		]}`))
	}))

	guests, err := client.ListGuests(context.Background(), "pve1")
	if err != nil {
		t.Fatalf("ListGuests() error: %v", err)
	}

	if len(guests) != 2 {
		t.Fatalf("Expected 2 guests, got %d", len(guests))
	}
	if guests[0].VMID != 101 || guests[0].Name != "web1" {
		t.Errorf("Unexpected first guest: %+v", guests[0])
	}
	if guests[0].IsTemplate() {
		t.Error("Guest 101 should not be a template")
	}
	if !guests[1].IsTemplate() {
		t.Error("Guest 9000 should be a template")
	}
}

func TestClient_ListGuestsServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.ListGuests(context.Background(), "pve1")
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
}

func TestClient_NetworkInterfaces(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api2/json/nodes/pve1/qemu/101/agent/network-get-interfaces" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"result":[
			{"name":"lo","ip-addresses":[{"ip-address":"127.0.0.1","ip-address-type":"ipv4","prefix":8}]},
			{"name":"eth0","ip-addresses":[
				{"ip-address":"10.6.0.42","ip-address-type":"ipv4","prefix":24},
				{"ip-address":"fe80::1","ip-address-type":"ipv6","prefix":64}
			]}
		]}}`))
	}))

	ifaces, err := client.NetworkInterfaces(context.Background(), "pve1", 101)
	if err != nil {
		t.Fatalf("NetworkInterfaces() error: %v", err)
	}

	if len(ifaces) != 2 {
		t.Fatalf("Expected 2 interfaces, got %d", len(ifaces))
	}
	if ifaces[1].Name != "eth0" {
		t.Errorf("Unexpected interface name: %s", ifaces[1].Name)
	}
	if len(ifaces[1].IPAddresses) != 2 || ifaces[1].IPAddresses[0].Address != "10.6.0.42" {
		t.Errorf("Unexpected addresses: %+v", ifaces[1].IPAddresses)
	}
}

func TestClient_NetworkInterfacesAgentError(t *testing.T) {
	// An installed-but-not-running agent answers with a structured
	// error object instead of an interface list
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"result":{"error":{"class":"Unrouteable","desc":"No QEMU guest agent configured"}}}}`))
	}))

	_, err := client.NetworkInterfaces(context.Background(), "pve1", 101)
	if err == nil {
		t.Fatal("Expected error for agent error payload")
	}

	var agentErr *AgentError
	if !errors.As(err, &agentErr) {
		t.Fatalf("Expected *AgentError, got %T: %v", err, err)
	}
	if agentErr.Class != "Unrouteable" {
		t.Errorf("Unexpected error class: %s", agentErr.Class)
	}
}

func TestClient_NetworkInterfacesNullResult(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"result":null}}`))
	}))

	ifaces, err := client.NetworkInterfaces(context.Background(), "pve1", 101)
	if err != nil {
		t.Fatalf("NetworkInterfaces() error: %v", err)
	}
	if len(ifaces) != 0 {
		t.Errorf("Expected no interfaces, got %d", len(ifaces))
	}
}

func TestClient_SkipTLSVerify(t *testing.T) {
	// httptest TLS servers use a self-signed certificate, the same
	// situation the toggle exists for
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	strict, err := NewClient(ClientConfig{
		BaseURL:     server.URL,
		TokenID:     "id",
		TokenSecret: "secret",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if _, err := strict.ListGuests(context.Background(), "pve1"); err == nil {
		t.Error("Expected certificate error with verification enabled")
	}

	relaxed, err := NewClient(ClientConfig{
		BaseURL:       server.URL,
		TokenID:       "id",
		TokenSecret:   "secret",
		SkipTLSVerify: true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if _, err := relaxed.ListGuests(context.Background(), "pve1"); err != nil {
		t.Errorf("Expected success with verification disabled, got: %v", err)
	}
}

func TestClient_RequiredSettings(t *testing.T) {
	cases := []ClientConfig{
		{TokenID: "id", TokenSecret: "secret"},
		{BaseURL: "https://pve.lab:8006", TokenSecret: "secret"},
		{BaseURL: "https://pve.lab:8006", TokenID: "id"},
	}

	for _, cfg := range cases {
		if _, err := NewClient(cfg, zerolog.Nop()); err == nil {
			t.Errorf("Expected error for config %+v", cfg)
		}
	}
}
