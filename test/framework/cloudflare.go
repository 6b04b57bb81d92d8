package framework

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// RecordFixture is one DNS record held by the fake provider, tagged
// with the provider's wire names so it serves both directions
type RecordFixture struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl"`
	Priority int    `json:"priority"`
	Proxied  bool   `json:"proxied"`
}

// FakeCloudflare simulates the Cloudflare v4 API for tests: zone lookup
// by name, record lookup by exact name, record create and update. It
// keeps record state across calls so consecutive runs against it behave
// like a real zone, and it counts writes so tests can assert idempotence.
type FakeCloudflare struct {
	srv *httptest.Server

	mu      sync.Mutex
	zone    string
	zoneID  string
	records map[string]*RecordFixture
	nextID  int
	creates int
	updates int
	lookups int
}

// NewFakeCloudflare starts a fake API serving the given zone
func NewFakeCloudflare(zone string) *FakeCloudflare {
	f := &FakeCloudflare{
		zone:    zone,
		zoneID:  "zone-" + zone,
		records: make(map[string]*RecordFixture),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// URL returns the fake API's base URL
func (f *FakeCloudflare) URL() string {
	return f.srv.URL
}

// Close shuts the fake API down
func (f *FakeCloudflare) Close() {
	f.srv.Close()
}

// Seed installs a record before a run
func (f *FakeCloudflare) Seed(name, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("rec-%d", f.nextID)
	f.records[name] = &RecordFixture{
		ID: id, Type: "A", Name: name, Content: content, TTL: 120,
	}
}

// Record returns the current state of the named record, nil when absent
func (f *FakeCloudflare) Record(name string) *RecordFixture {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[name]
	if !ok {
		return nil
	}
	copied := *rec
	return &copied
}

// Writes returns how many creates and updates the fake has served
func (f *FakeCloudflare) Writes() (creates, updates int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.updates
}

func (f *FakeCloudflare) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		f.fail(w, http.StatusForbidden, 9106, "Missing X-Auth-Key, X-Auth-Email or Authorization headers")
		return
	}

	// /zones
	// /zones/{zoneID}/dns_records
	// /zones/{zoneID}/dns_records/{recordID}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "zones":
		f.handleZones(w, r)
	case len(parts) == 3 && parts[0] == "zones" && parts[2] == "dns_records":
		f.handleRecords(w, r, parts[1])
	case len(parts) == 4 && parts[0] == "zones" && parts[2] == "dns_records":
		f.handleRecord(w, r, parts[1], parts[3])
	default:
		f.fail(w, http.StatusNotFound, 7000, "No route for that URI")
	}
}

func (f *FakeCloudflare) handleZones(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	type wireZone struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	zones := []wireZone{}
	if r.URL.Query().Get("name") == f.zone {
		zones = append(zones, wireZone{ID: f.zoneID, Name: f.zone})
	}
	f.succeed(w, zones)
}

func (f *FakeCloudflare) handleRecords(w http.ResponseWriter, r *http.Request, zoneID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if zoneID != f.zoneID {
		f.fail(w, http.StatusNotFound, 7003, "Could not route to /zones/"+zoneID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		f.lookups++
		matches := []*RecordFixture{}
		if rec, ok := f.records[r.URL.Query().Get("name")]; ok {
			matches = append(matches, rec)
		}
		f.succeed(w, matches)

	case http.MethodPost:
		var rec RecordFixture
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			f.fail(w, http.StatusBadRequest, 9002, "Could not parse JSON body")
			return
		}
		f.creates++
		f.nextID++
		rec.ID = fmt.Sprintf("rec-%d", f.nextID)
		f.records[rec.Name] = &rec
		f.succeed(w, rec)

	default:
		f.fail(w, http.StatusMethodNotAllowed, 7001, "Method not allowed")
	}
}

func (f *FakeCloudflare) handleRecord(w http.ResponseWriter, r *http.Request, zoneID, recordID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if zoneID != f.zoneID || r.Method != http.MethodPut {
		f.fail(w, http.StatusNotFound, 7000, "No route for that URI")
		return
	}

	var existing *RecordFixture
	for _, rec := range f.records {
		if rec.ID == recordID {
			existing = rec
			break
		}
	}
	if existing == nil {
		f.fail(w, http.StatusNotFound, 81044, "Record does not exist")
		return
	}

	var rec RecordFixture
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		f.fail(w, http.StatusBadRequest, 9002, "Could not parse JSON body")
		return
	}
	f.updates++
	rec.ID = recordID
	delete(f.records, existing.Name)
	f.records[rec.Name] = &rec
	f.succeed(w, rec)
}

func (f *FakeCloudflare) succeed(w http.ResponseWriter, result interface{}) {
	writeJSON(w, map[string]interface{}{
		"success": true,
		"errors":  []interface{}{},
		"result":  result,
	})
}

func (f *FakeCloudflare) fail(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"errors":  []map[string]interface{}{{"code": code, "message": message}},
		"result":  nil,
	}); err != nil {
		panic(fmt.Sprintf("framework: encode response: %v", err))
	}
}
