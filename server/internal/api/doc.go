// Package api implements the HTTP REST API of the estimation server.
//
// New(engine, store, metrics, logger) returns a Handler; Register mounts:
//
//	POST /api/v1/estimate        estimate one observation; cached by fingerprint
//	GET  /api/v1/estimates/{id}  a previously returned result; 404 once evicted
//	GET  /api/v1/humidity        humidity from ?region=&month=&weather=
//	GET  /api/v1/tables          the lookup tables and correction factors
//	GET  /api/v1/health          cache size, engine options and counters
//
// All endpoints respond with Content-Type: application/json. Estimate
// responses carry diagnostics derived from the result, ordered critical
// first. SetEngine swaps the engine options at runtime, for config reloads.
package api
