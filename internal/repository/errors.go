package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Guard failures raised by conditional updates. Callers translate these into
// service-level conflicts.
var (
	ErrPaymentNotPending     = errors.New("payment is not pending")
	ErrScheduleNotSettleable = errors.New("schedule is not pending or overdue")
	ErrScheduleAlreadyPaid   = errors.New("schedule already paid")
	ErrCooperativeNotFound   = errors.New("cooperative not found")
)

// isUniqueViolation reports whether err broke the named unique index. The
// SQLite driver used in tests only reports the table and columns.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translateUnique turns a violation of constraint into gorm.ErrDuplicatedKey
func translateUnique(err error, constraint string) error {
	if isUniqueViolation(err, constraint) {
		return gorm.ErrDuplicatedKey
	}
	return err
}
