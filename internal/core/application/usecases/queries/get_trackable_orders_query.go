package queries

import (
	"errors"

	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrGetTrackableOrdersQueryIsNotConstructed = errors.New(
	"GetTrackableOrdersQuery must be created via NewGetTrackableOrdersQuery constructor",
)

// GetTrackableOrdersQuery lists orders whose shipments are still moving.
// A limit of 0 means no limit.
type GetTrackableOrdersQuery struct {
	limit int

	guard guard.ConstructorGuard
}

func NewGetTrackableOrdersQuery(limit int) (GetTrackableOrdersQuery, error) {
	if limit < 0 {
		return GetTrackableOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, "unbounded")
	}
	return GetTrackableOrdersQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTrackableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackableOrdersQueryIsNotConstructed)
}

func (q GetTrackableOrdersQuery) Limit() int { return q.limit }
