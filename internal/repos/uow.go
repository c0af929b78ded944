package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

// UnitOfWork runs a set of cross-store mutations as one database
// transaction: everything inside fn commits together or not at all.
// Services depend on this instead of the driver's transaction API.
type UnitOfWork struct{ db *sqlx.DB }

func NewUnitOfWork(db *sqlx.DB) *UnitOfWork { return &UnitOfWork{db: db} }

// Do begins a transaction, invokes fn with it, and commits if fn
// returns nil. Any error (from fn or commit) rolls everything back.
// Write conflicts surface as domain.ErrConcurrencyConflict so callers
// can retry the whole operation.
func (u *UnitOfWork) Do(fn func(tx sqlx.Ext) error) error {
	tx, err := u.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		if isBusy(err) {
			return domain.ErrConcurrencyConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		if isBusy(err) {
			return domain.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// isBusy recognizes SQLite lock contention from the modernc driver,
// which reports it only through the error text.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
