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

func TestUpdateOrderStatusCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	e := newEnv(t)
	e.seed(t, 100001, map[string]any{"status": "delivered_to_us"})
	h := commands.NewUpdateOrderStatusCommandHandler(e.store, zap.NewNop())

	cmd, err := commands.NewUpdateOrderStatusCommand(100001, "Received", "checked in at dock 2", false)
	require.NoError(t, err)

	updated, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.Received, updated.Status())

	log := updated.ActivityLog()
	require.Len(t, log, 2)
	assert.Equal(t, "Status changed to received", log[0].Message)
	assert.Equal(t, order.LogNote, log[1].Type)
	assert.Equal(t, "checked in at dock 2", log[1].Message)
}

func TestUpdateOrderStatusCommandHandler_SuppressLog(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 100001, map[string]any{"status": "received"})
	h := commands.NewUpdateOrderStatusCommandHandler(e.store, zap.NewNop())

	cmd, _ := commands.NewUpdateOrderStatusCommand(100001, "imei_checked", "", true)
	updated, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	assert.Equal(t, order.ImeiChecked, updated.Status())
	assert.Empty(t, updated.ActivityLog())
}

func TestUpdateOrderStatusCommandHandler_TerminalOrder(t *testing.T) {
	e := newEnv(t)
	e.seed(t, 100001, map[string]any{"status": "completed"})
	h := commands.NewUpdateOrderStatusCommandHandler(e.store, zap.NewNop())

	cmd, _ := commands.NewUpdateOrderStatusCommand(100001, "received", "", false)
	_, err := h.Handle(t.Context(), cmd)
	require.ErrorIs(t, err, errs.ErrStateConflict)
	assert.Equal(t, int64(1), e.doc(t, 100001).Version)
}

func TestNewUpdateOrderStatusCommand_UnknownStatus(t *testing.T) {
	_, err := commands.NewUpdateOrderStatusCommand(100001, "teleported", "", false)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	cmd, err := commands.NewUpdateOrderStatusCommand(100001, "phone_on_the_way_to_us", "", false)
	require.NoError(t, err)
	assert.Equal(t, order.PhoneOnTheWay, cmd.Status())
}
