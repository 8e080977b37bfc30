package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoTrackingNumber   = errors.New("no tracking number")
	ErrCredentialsMissing = errors.New("provider credentials missing")
	ErrProviderTransient  = errors.New("provider transient failure")
	ErrProviderFailed     = errors.New("provider request failed")
	ErrPromoExhausted     = errors.New("promo code exhausted")
	ErrPromoIneligible    = errors.New("promo code ineligible")
	ErrStateConflict      = errors.New("state conflict")
	ErrVersionConflict    = errors.New("version conflict")
)

// NoTrackingNumberError is returned when an order carries no tracking number
// on either leg, so there is nothing to ask a carrier about.
type NoTrackingNumberError struct {
	OrderID any
}

func NewNoTrackingNumberError(orderID any) *NoTrackingNumberError {
	return &NoTrackingNumberError{OrderID: orderID}
}

func (e *NoTrackingNumberError) Error() string {
	return fmt.Sprintf("%s: order %v", ErrNoTrackingNumber, e.OrderID)
}

func (e *NoTrackingNumberError) Unwrap() error {
	return ErrNoTrackingNumber
}

// CredentialsMissingError is a configuration fault: the named provider has no
// usable credentials. It is never retried.
type CredentialsMissingError struct {
	Provider string
	Setting  string
}

func NewCredentialsMissingError(provider, setting string) *CredentialsMissingError {
	return &CredentialsMissingError{Provider: provider, Setting: setting}
}

func (e *CredentialsMissingError) Error() string {
	return fmt.Sprintf("%s: %s (set %s)", ErrCredentialsMissing, e.Provider, e.Setting)
}

func (e *CredentialsMissingError) Unwrap() error {
	return ErrCredentialsMissing
}

// ProviderError describes a failed call to a tracking or label provider.
// StatusCode and Body hold the upstream response when one was received.
// Transient marks timeouts, transport failures, 429 and 5xx answers.
type ProviderError struct {
	Provider   string
	Operation  string
	StatusCode int
	Body       string
	Transient  bool
	Cause      error
}

func NewProviderTransientError(provider, operation string, statusCode int, body string, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Operation:  operation,
		StatusCode: statusCode,
		Body:       body,
		Transient:  true,
		Cause:      cause,
	}
}

func NewProviderFailedError(provider, operation string, statusCode int, body string) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Operation:  operation,
		StatusCode: statusCode,
		Body:       body,
	}
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	if e.Transient {
		b.WriteString(ErrProviderTransient.Error())
	} else {
		b.WriteString(ErrProviderFailed.Error())
	}
	fmt.Fprintf(&b, ": %s %s", e.Provider, e.Operation)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ", status %d", e.StatusCode)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		fmt.Fprintf(&b, ", body: %s", sanitize(body))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " (cause: %v)", e.Cause)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() []error {
	sentinel := ErrProviderFailed
	if e.Transient {
		sentinel = ErrProviderTransient
	}
	if e.Cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Cause}
}

// PromoExhaustedError is returned when a promo code has no uses left.
type PromoExhaustedError struct {
	Code string
}

func NewPromoExhaustedError(code string) *PromoExhaustedError {
	return &PromoExhaustedError{Code: code}
}

func (e *PromoExhaustedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrPromoExhausted, e.Code)
}

func (e *PromoExhaustedError) Unwrap() error {
	return ErrPromoExhausted
}

// PromoIneligibleError is returned when an order does not satisfy a promo
// code's constraints.
type PromoIneligibleError struct {
	Code   string
	Reason string
}

func NewPromoIneligibleError(code, reason string) *PromoIneligibleError {
	return &PromoIneligibleError{Code: code, Reason: reason}
}

func (e *PromoIneligibleError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPromoIneligible, e.Code, e.Reason)
}

func (e *PromoIneligibleError) Unwrap() error {
	return ErrPromoIneligible
}

// StateConflictError is returned when an action does not fit the current
// state of an entity, e.g. changing the status of a completed order.
type StateConflictError struct {
	Entity string
	ID     any
	Reason string
}

func NewStateConflictError(entity string, id any, reason string) *StateConflictError {
	return &StateConflictError{Entity: entity, ID: id, Reason: reason}
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s: %s %v: %s", ErrStateConflict, e.Entity, e.ID, e.Reason)
}

func (e *StateConflictError) Unwrap() error {
	return ErrStateConflict
}

// VersionConflictError is returned by stores when a commit's version
// precondition no longer holds. Callers re-read and retry.
type VersionConflictError struct {
	Entity   string
	Key      any
	Expected int64
}

func NewVersionConflictError(entity string, key any, expected int64) *VersionConflictError {
	return &VersionConflictError{Entity: entity, Key: key, Expected: expected}
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s: %s %v, expected version %d", ErrVersionConflict, e.Entity, e.Key, e.Expected)
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}
