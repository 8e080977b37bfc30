package queries

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrListPrintJobsQueryIsNotConstructed = errors.New(
	"ListPrintJobsQuery must be created via NewListPrintJobsQuery constructor",
)

// ListPrintJobsQuery lists the print jobs created at or after since. An
// empty since lists every job.
type ListPrintJobsQuery struct {
	since time.Time

	guard guard.ConstructorGuard
}

func NewListPrintJobsQuery(since string) (ListPrintJobsQuery, error) {
	var from time.Time
	if since = strings.TrimSpace(since); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return ListPrintJobsQuery{}, errs.NewValueIsInvalidErrorWithCause("since",
				fmt.Errorf("%q is not an RFC 3339 timestamp", since))
		}
		from = parsed
	}
	return ListPrintJobsQuery{since: from, guard: guard.NewConstructorGuard()}, nil
}

func (q ListPrintJobsQuery) Validate() error {
	return q.guard.Validate(ErrListPrintJobsQueryIsNotConstructed)
}

func (q ListPrintJobsQuery) Since() time.Time { return q.since }
