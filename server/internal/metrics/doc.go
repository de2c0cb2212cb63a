// Package metrics defines the Prometheus collectors of the estimation API and
// a Summary rollup read back from the registry for the health endpoint.
// Every method is safe to call on a nil *Metrics.
package metrics
