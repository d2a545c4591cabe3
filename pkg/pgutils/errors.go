package pgutils

import "strings"

// Postgres error codes. See:
// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeNotNullViolation    = "23502"
	CodeCheckViolation      = "23514"
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint violation (23505).
func IsUniqueViolation(err error) bool {
	return containsErrorCode(err, CodeUniqueViolation)
}

// IsForeignKeyViolation reports whether err is a Postgres foreign-key violation (23503).
func IsForeignKeyViolation(err error) bool {
	return containsErrorCode(err, CodeForeignKeyViolation)
}

// IsNotNullViolation reports whether err is a Postgres not-null violation (23502).
func IsNotNullViolation(err error) bool {
	return containsErrorCode(err, CodeNotNullViolation)
}

func containsErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return msg != "" && (strings.Contains(msg, code) || strings.Contains(msg, "SQLSTATE "+code))
}
