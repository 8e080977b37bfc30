// Package tracking turns heterogeneous carrier tracking responses into a
// canonical shape the order state machine can reason about.
//
// The package is pure: ParseResponse, Classify and Canonicalize have no side
// effects and return identical output for identical input.
package tracking
