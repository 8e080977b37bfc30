package commands_test

import (
	"testing"

	"buyback/internal/core/application/usecases/commands"
	"buyback/internal/core/domain/model/order"
	"buyback/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreatePrintJobCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	e := newEnv(t)
	e.seed(t, 100001, map[string]any{"status": "kit_needs_printing"})
	e.seed(t, 100002, map[string]any{"status": "kit_needs_printing", "kitSentAt": "2024-09-30T10:00:00Z"})
	h := commands.NewCreatePrintJobCommandHandler(e.store, e.allocator, zap.NewNop())

	cmd, err := commands.NewCreatePrintJobCommand([]int64{100001, 100002})
	require.NoError(t, err)

	job, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "print-job-1", job.Folder)

	first := e.doc(t, 100001)
	assert.Equal(t, "kit_sent", first.Document["status"])
	assert.Equal(t, "2024-10-02T15:04:05Z", first.Document["kitSentAt"])
	assert.Equal(t, job.ID, first.Document["printJobId"])
	require.Len(t, first.Log, 2)
	assert.Equal(t, order.LogPrint, first.Log[1].Type)

	second := e.doc(t, 100002)
	assert.Equal(t, "2024-09-30T10:00:00Z", second.Document["kitSentAt"])

	stored, err := e.printJobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{100001, 100002}, stored.OrderIDs)
}

func TestCreatePrintJobCommandHandler_OrderNotReady(t *testing.T) {
	ctx := t.Context()
	e := newEnv(t)
	e.seed(t, 100001, map[string]any{"status": "kit_needs_printing"})
	e.seed(t, 100002, map[string]any{"status": "kit_sent"})
	h := commands.NewCreatePrintJobCommandHandler(e.store, e.allocator, zap.NewNop())

	cmd, _ := commands.NewCreatePrintJobCommand([]int64{100001, 100002})
	_, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrStateConflict)

	jobs, err := e.printJobs.List(ctx, checkTime.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, "kit_needs_printing", e.doc(t, 100001).Document["status"])
}

func TestCreatePrintJobCommandHandler_UnknownOrder(t *testing.T) {
	e := newEnv(t)
	h := commands.NewCreatePrintJobCommandHandler(e.store, e.allocator, zap.NewNop())

	cmd, _ := commands.NewCreatePrintJobCommand([]int64{424242})
	_, err := h.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestNewCreatePrintJobCommand_Validation(t *testing.T) {
	_, err := commands.NewCreatePrintJobCommand(nil)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = commands.NewCreatePrintJobCommand([]int64{1, 1})
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
