// Package render formats estimation results for the terminal.
//
// Three output modes are supported: ASCII tables (light box style), GitHub
// Markdown tables and indented JSON. Tables are built through the small
// TableBuilder abstraction over go-pretty so callers never touch the
// library directly.
package render
