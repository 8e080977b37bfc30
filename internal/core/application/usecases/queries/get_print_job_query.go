package queries

import (
	"errors"
	"strings"

	"buyback/internal/pkg/errs"
	"buyback/internal/pkg/guard"
)

var ErrGetPrintJobQueryIsNotConstructed = errors.New(
	"GetPrintJobQuery must be created via NewGetPrintJobQuery constructor",
)

type GetPrintJobQuery struct {
	id string

	guard guard.ConstructorGuard
}

func NewGetPrintJobQuery(id string) (GetPrintJobQuery, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return GetPrintJobQuery{}, errs.NewValueIsRequiredError("printJobId")
	}
	return GetPrintJobQuery{id: id, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPrintJobQuery) Validate() error {
	return q.guard.Validate(ErrGetPrintJobQueryIsNotConstructed)
}

func (q GetPrintJobQuery) ID() string { return q.id }
