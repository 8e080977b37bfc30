package printjob_test

import (
	"testing"
	"time"

	"buyback/internal/core/domain/model/printjob"
	"buyback/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ids := []int64{100001, 100002}

	job, err := printjob.New(42, ids, time.Unix(0, 0))

	require.NoError(t, err)
	assert.Equal(t, "print-job-42", job.Folder)
	assert.Equal(t, int64(42), job.Sequence)
	assert.NotEmpty(t, job.ID)
	ids[0] = 7
	assert.Equal(t, int64(100001), job.OrderIDs[0])
}

func TestValidateOrderIDs(t *testing.T) {
	require.ErrorIs(t, printjob.ValidateOrderIDs(nil), errs.ErrValueIsRequired)
	require.ErrorIs(t, printjob.ValidateOrderIDs([]int64{1, 1}), errs.ErrValueIsInvalid)
	require.ErrorIs(t, printjob.ValidateOrderIDs([]int64{0}), errs.ErrValueIsInvalid)
	require.NoError(t, printjob.ValidateOrderIDs([]int64{1, 2}))

	_, err := printjob.New(0, []int64{1}, time.Now())
	require.Error(t, err)
}
