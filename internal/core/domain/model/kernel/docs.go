// Package kernel provides shared domain primitives for the buyback order core.
//
// The package includes:
//   - Address: a validated postal address used for label requests
//   - Clock: the injected time source every server-assigned timestamp comes from
//
// Address is an immutable value object and is safe for concurrent use.
package kernel
