// Package errs provides standardized error types for the buyback order core.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - ObjectNotFoundError: an order, promo code or print job does not exist
//   - NoTrackingNumberError: an order has no tracking number on either leg
//   - CredentialsMissingError: a carrier provider is not configured
//   - ProviderError: a tracking or label provider call failed (transient or not)
//   - PromoExhaustedError, PromoIneligibleError: promo redemption rejected
//   - StateConflictError: the requested action does not fit the current state
//   - VersionConflictError: an optimistic commit lost a race
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// Callers classify errors with errors.Is against the sentinels and extract
// details with errors.As against the struct types.
package errs
