package repository

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// listQuery builds the COUNT and page SELECT of a list view. Clauses use ?
// placeholders and every user-supplied value is bound, never interpolated;
// Rebind converts to the driver's placeholder style.
type listQuery struct {
	from    string
	columns string
	where   []string
	args    []interface{}
	orderBy string
	limit   int
	offset  int
}

func newListQuery(from, columns string) *listQuery {
	return &listQuery{from: from, columns: columns}
}

func (q *listQuery) Where(clause string, args ...interface{}) *listQuery {
	q.where = append(q.where, clause)
	q.args = append(q.args, args...)
	return q
}

// Search matches term case-insensitively against any of the columns.
func (q *listQuery) Search(term string, columns ...string) *listQuery {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := "%" + escapeLike(term) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col+` ILIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// Sort orders by the column registered for key in allowed, falling back to
// fallback when key is unknown. The id tiebreaker keeps pages stable.
func (q *listQuery) Sort(key string, desc bool, allowed map[string]string, fallback, idColumn string) *listQuery {
	col, ok := allowed[key]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	q.orderBy = fmt.Sprintf("%s %s, %s %s", col, dir, idColumn, dir)
	return q
}

func (q *listQuery) Page(limit, offset int) *listQuery {
	q.limit = limit
	q.offset = offset
	return q
}

func (q *listQuery) whereSQL() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

func (q *listQuery) CountSQL(db *sqlx.DB) (string, []interface{}) {
	query := "SELECT COUNT(*) FROM " + q.from + q.whereSQL()
	return db.Rebind(query), append([]interface{}{}, q.args...)
}

func (q *listQuery) SelectSQL(db *sqlx.DB) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.columns)
	b.WriteString(" FROM ")
	b.WriteString(q.from)
	b.WriteString(q.whereSQL())
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}
	args := append([]interface{}{}, q.args...)
	if q.limit > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.limit, q.offset)
	}
	return db.Rebind(b.String()), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
