package repository

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

// sqlx.NewDb does not connect; it is enough to exercise Rebind.
func testDB() *sqlx.DB {
	return sqlx.NewDb(nil, "postgres")
}

func TestListQueryBuildsParameterizedSQL(t *testing.T) {
	db := testDB()
	q := newListQuery("products p", "p.id, p.name").
		Search("50% off_", "p.name", "p.description").
		Where("p.stock > 0").
		Where("p.price >= ?", "10.00").
		Sort("price", true, map[string]string{"price": "p.price"}, "p.created_at", "p.id").
		Page(12, 24)

	countSQL, countArgs := q.CountSQL(db)
	assert.Equal(t,
		`SELECT COUNT(*) FROM products p WHERE (p.name ILIKE $1 ESCAPE '\' OR p.description ILIKE $2 ESCAPE '\') AND p.stock > 0 AND p.price >= $3`,
		countSQL)
	assert.Equal(t, []interface{}{`%50\% off\_%`, `%50\% off\_%`, "10.00"}, countArgs)

	selectSQL, selectArgs := q.SelectSQL(db)
	assert.Equal(t,
		`SELECT p.id, p.name FROM products p WHERE (p.name ILIKE $1 ESCAPE '\' OR p.description ILIKE $2 ESCAPE '\') AND p.stock > 0 AND p.price >= $3 ORDER BY p.price DESC, p.id DESC LIMIT $4 OFFSET $5`,
		selectSQL)
	assert.Equal(t, []interface{}{`%50\% off\_%`, `%50\% off\_%`, "10.00", 12, 24}, selectArgs)
}

func TestListQuerySortWhitelist(t *testing.T) {
	db := testDB()
	q := newListQuery("categories", "id").
		Sort("name; DROP TABLE categories", false, map[string]string{"name": "name"}, "created_at", "id")

	query, args := q.SelectSQL(db)
	assert.Equal(t, "SELECT id FROM categories ORDER BY created_at ASC, id ASC", query)
	assert.Empty(t, args)
}

func TestListQueryBlankSearchIgnored(t *testing.T) {
	db := testDB()
	query, args := newListQuery("profiles", "id").Search("   ", "email").CountSQL(db)
	assert.Equal(t, "SELECT COUNT(*) FROM profiles", query)
	assert.Empty(t, args)
}
