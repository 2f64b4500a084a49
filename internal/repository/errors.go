package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

// pgCode extracts the SQLSTATE from either driver's error type.
func pgCode(err error) (code, message string, ok bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message, true
	}
	return "", "", false
}

func isUniqueViolation(err error) bool {
	code, _, ok := pgCode(err)
	return ok && code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, _, ok := pgCode(err)
	return ok && code == codeForeignKeyViolation
}

// checkViolation also covers values that overflow a NUMERIC column.
func checkViolation(err error) (string, bool) {
	code, msg, ok := pgCode(err)
	return msg, ok && (code == codeCheckViolation || code == codeNumericOutOfRange)
}
