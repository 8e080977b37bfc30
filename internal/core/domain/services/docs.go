// Package services provides the domain services of the tracking reconciliation
// engine: DirectionResolver picks which shipment leg to check, and
// TransitionEngine turns a classified tracking response into the next order
// status and the fields to stamp.
//
// Both services are pure. They read an order and return a decision; the
// record store is responsible for committing it.
package services
