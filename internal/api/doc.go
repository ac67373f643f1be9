// Package api exposes the switch worker over HTTP.
//
// Endpoints:
//   - GET  /health            redis connectivity and worker counters
//   - GET  /ready             readiness check
//   - GET  /v1/schema/:node   parameter description of switch or salesforce-user
//   - POST /v1/route          route {"parameters": {...}, "items": [...]} synchronously
//
// Route answers 400 for parameters that fail validation and 422 when
// routing itself fails, e.g. for an out-of-range lane.
package api
