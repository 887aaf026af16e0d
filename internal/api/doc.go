// Package api hosts the HTTP server and handlers for searching the index.
// Notable routes:
//   - GET / and /search?q= for the HTML search pages.
//   - GET /api/search?q= and /api/page?url= for JSON clients.
//   - GET /ping, /healthz for probes and /metrics for Prometheus scraping.
package api
