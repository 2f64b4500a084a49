package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPgCodeDrivers(t *testing.T) {
	pqErr := fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505", Message: "duplicate key"})
	assert.True(t, isUniqueViolation(pqErr))
	assert.False(t, isForeignKeyViolation(pqErr))

	pgxErr := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503", Message: "fk"})
	assert.True(t, isForeignKeyViolation(pgxErr))

	msg, ok := checkViolation(&pq.Error{Code: "23514", Message: "products_price_check"})
	assert.True(t, ok)
	assert.Equal(t, "products_price_check", msg)

	_, ok = checkViolation(&pgconn.PgError{Code: "22003", Message: "numeric field overflow"})
	assert.True(t, ok)

	_, _, ok = pgCode(errors.New("plain"))
	assert.False(t, ok)
}
