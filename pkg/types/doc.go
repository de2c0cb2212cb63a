// Package types defines the shared Go types used by the estimation core, the
// dtc CLI and the HTTP server. These are the canonical in-memory
// representations of a case observation and of an estimation result; their
// JSON and YAML tags are the wire shape of API requests and case files.
//
// Every value here is transient: it is built for one estimation call and
// discarded once the result has been rendered.
package types
