// Package guard provides ConstructorGuard, which lets value objects, commands
// and queries detect that they were built by their constructor rather than
// declared as zero values.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the object is a zero
// value and the caller supplied no specific error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded as an unexported field. Only NewConstructorGuard
// sets the flag, so a zero-value struct always fails validation.
//
// Example:
//
//	var ErrRefreshTrackingCommandIsNotConstructed = errors.New("...")
//
//	type RefreshTrackingCommand struct {
//	    orderID int64
//	    guard   guard.ConstructorGuard
//	}
//
//	func (c RefreshTrackingCommand) Validate() error {
//	    return c.guard.Validate(ErrRefreshTrackingCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard. Otherwise it returns
// validationError, or ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
