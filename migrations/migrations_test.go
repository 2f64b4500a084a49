package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMigrationIsEmbedded(t *testing.T) {
	body, err := files.ReadFile("00001_init.sql")
	require.NoError(t, err)

	sql := string(body)
	assert.Contains(t, sql, "-- +goose Up")
	assert.Contains(t, sql, "-- +goose Down")
	for _, table := range []string{"products", "categories", "orders", "order_items", "profiles", "cart_items", "auth_sessions"} {
		assert.Contains(t, sql, "CREATE TABLE "+table+" ", table)
	}
	assert.Contains(t, sql, "UNIQUE (user_id, product_id)")
}
