// Package memory provides in-process implementations of the store ports.
// They honor the same version and append-only contracts as the persistent
// adapters and back the tests and the single-node "memory" storage mode.
package memory
