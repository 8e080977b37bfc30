package pgerr_test

import (
	"errors"
	"fmt"
	"testing"

	"buyback/internal/adapters/out/postgres/pgerr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	serialization := &pgconn.PgError{Code: "40001"}
	deadlock := &pgconn.PgError{Code: "40P01"}

	assert.True(t, pgerr.IsUniqueViolation(unique))
	assert.False(t, pgerr.IsUniqueViolation(serialization))
	assert.True(t, pgerr.IsRetryable(serialization))
	assert.True(t, pgerr.IsRetryable(deadlock))
	assert.False(t, pgerr.IsRetryable(unique))
	assert.False(t, pgerr.IsUniqueViolation(errors.New("plain")))
	assert.False(t, pgerr.IsRetryable(nil))
}
