package sqlite

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/warp/records-engine/generic"
	msqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// classify wraps a driver error in a generic.StorageError whose Kind
// tells busy and constraint failures apart from everything else.
func classify(op, table string, err error) error {
	if err == nil {
		return nil
	}
	return &generic.StorageError{Op: op, Table: table, Kind: errorKind(err), Err: err}
}

func errorKind(err error) error {
	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		switch mattnErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return generic.ErrBusy
		case sqlite3.ErrConstraint:
			return generic.ErrConstraint
		}
		return generic.ErrStorage
	}

	var moderncErr *msqlite.Error
	if errors.As(err, &moderncErr) {
		// Extended result codes keep the primary code in the low byte.
		switch moderncErr.Code() & 0xff {
		case sqlitelib.SQLITE_BUSY, sqlitelib.SQLITE_LOCKED:
			return generic.ErrBusy
		case sqlitelib.SQLITE_CONSTRAINT:
			return generic.ErrConstraint
		}
	}
	return generic.ErrStorage
}
