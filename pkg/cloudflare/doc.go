/*
Package cloudflare provides an HTTP client for the Cloudflare v4 DNS API.

The cloudflare package covers the four operations record convergence needs:
resolving a zone name to its identifier, looking up a single record by its
fully qualified name, creating a record, and updating one. All calls carry a
bearer token and unwrap the provider's response envelope, so callers deal in
records and errors rather than HTTP.

# Architecture

	┌──────────────────── CLOUDFLARE CLIENT ───────────────────┐
	│                                                          │
	│  ┌────────────────────────────────────────────┐          │
	│  │              Client                        │          │
	│  │  - Base URL (api.cloudflare.com/client/v4) │          │
	│  │  - Bearer token auth                       │          │
	│  │  - Per-request timeout                     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Envelope Unwrapping              │          │
	│  │  {"success": bool,                         │          │
	│  │   "errors": [{code, message}],             │          │
	│  │   "result": ...}                           │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                    │
	│  ┌───────────┬──────▼──────┬───────────────┐             │
	│  │  ZoneID   │ FindRecord  │ Create/Update │             │
	│  │  by name  │ by fqdn     │ Record        │             │
	│  └───────────┴─────────────┴───────────────┘             │
	└──────────────────────────────────────────────────────────┘

# Core Components

Client:
  - Bearer-token HTTP client over the v4 API
  - Base URL overridable, which is how tests point it at a fake server

Record:
  - An A record as the API reports and accepts it
  - Proxied serializes even when false; the API treats absence and
    false differently from a caller's point of view

ErrZoneNotFound:
  - Sentinel returned when the account holds no zone with the asked name
  - Matched with errors.Is where zone lookup failure aborts a run

# Response Envelope

Every v4 endpoint wraps its payload:

	{"success": true, "errors": [], "result": [...]}

A response is treated as failed when the HTTP status is outside 2xx OR
success is false; in both cases the returned error carries the
provider's error codes and messages:

	cloudflare: GET /zones failed (status 403): 9109: Invalid access token

# Usage

Creating a client:

	client, err := cloudflare.NewClient(cloudflare.ClientConfig{
		Token: apiToken,
	}, log.WithComponent("cloudflare"))
	if err != nil {
		return err
	}

Resolving a zone:

	zoneID, err := client.ZoneID(ctx, "example.com")
	if errors.Is(err, cloudflare.ErrZoneNotFound) {
		// no zone, nothing to converge
	}

Converging one record:

	rec, err := client.FindRecord(ctx, zoneID, "web1.example.com")
	if err != nil {
		return err
	}
	switch {
	case rec == nil:
		err = client.CreateRecord(ctx, zoneID, desired)
	case rec.Content != desired.Content:
		err = client.UpdateRecord(ctx, zoneID, rec.ID, desired)
	}

# Integration Points

This package integrates with:

  - pkg/reconciler: performs the per-entry lookup and write calls
  - pkg/config: CloudflareConfig supplies token and timeout
  - pkg/log: component logger for per-call debug detail

# Design Patterns

Envelope Unwrapping Pattern:
  - One do() helper marshals the request, unwraps the envelope, and
    decodes result into the caller's shape
  - Endpoint methods stay four lines of intent each

Sentinel Error Pattern:
  - ErrZoneNotFound distinguishes "the API answered, no such zone"
    from transport failure
  - Wrapped with %w so errors.Is survives message decoration

Single-Name Lookup Pattern:
  - FindRecord filters server-side with ?name=&type=A
  - Avoids paginating the whole zone per host at the cost of one
    remote call per entry

# Performance Characteristics

Request Overhead:
  - One HTTP round trip per operation, no caching of records
  - Zone id is resolved once per run by the caller and threaded through

Timeouts:
  - Per-request timeout via http.Client (default 30s)
  - No retries; convergence runs again on the next schedule anyway

# Troubleshooting

Authentication Errors:
  - Symptom: "9109: Invalid access token" or status 403
  - Check: token has Zone.DNS edit permission for the zone
  - Check: token passed verbatim, no quoting artifacts from the config

Zone Not Found:
  - Symptom: ErrZoneNotFound despite the zone existing
  - Cause: token scoped to specific zones that exclude this one
  - Check: GET /zones?name={zone} with the same token via curl

Unexpected Skips:
  - Symptom: records never update although addresses changed
  - Cause: comparing against a proxied record whose content is the
    Cloudflare edge address
  - Check: records managed by this job should stay unproxied

# See Also

  - Cloudflare API: https://developers.cloudflare.com/api/
  - DNS records API: https://developers.cloudflare.com/api/operations/dns-records-for-a-zone-list-dns-records
  - API tokens: https://developers.cloudflare.com/fundamentals/api/get-started/create-token/
*/
package cloudflare
