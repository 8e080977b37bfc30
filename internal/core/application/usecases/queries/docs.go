// Package queries contains read-only operations over orders, promo codes and
// the per-customer mirror. Queries never mutate state.
package queries
