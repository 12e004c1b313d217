package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/warp/records-engine/generic"
)

// Table is the SQLite generic.Repository for one record kind.
type Table[T, F any] struct {
	db   *sql.DB
	desc *generic.Descriptor[T, F]
	now  func() time.Time
}

var _ generic.Repository[struct{}, struct{}] = (*Table[struct{}, struct{}])(nil)

// NewTable binds a descriptor to the store. It panics on an inconsistent
// descriptor, which is a programming error.
func NewTable[T, F any](s *Store, d *generic.Descriptor[T, F]) *Table[T, F] {
	if err := d.Validate(); err != nil {
		panic(err)
	}
	return &Table[T, F]{db: s.db, desc: d, now: s.now}
}

// Create inserts one row and returns its id.
func (t *Table[T, F]) Create(ctx context.Context, fields F) (int64, error) {
	stmt, err := generic.BuildInsert(t.desc, fields, t.now())
	if err != nil {
		return 0, err
	}

	res, err := t.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, classify("insert into", t.desc.Table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify("insert into", t.desc.Table, err)
	}
	return id, nil
}

// List returns the rows matching filter, newest id first.
func (t *Table[T, F]) List(ctx context.Context, filter generic.Filter) ([]T, error) {
	stmt := generic.BuildSelect(t.desc, filter)

	rows, err := t.db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, classify("select from", t.desc.Table, err)
	}
	defer rows.Close()

	records := make([]T, 0)
	for rows.Next() {
		rec, err := t.desc.Scan(rows)
		if err != nil {
			return nil, classify("scan", t.desc.Table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("select from", t.desc.Table, err)
	}
	return records, nil
}

// Get returns the row with id. ok is false when it does not exist.
func (t *Table[T, F]) Get(ctx context.Context, id int64) (T, bool, error) {
	stmt := generic.BuildGet(t.desc, id)

	rec, err := t.desc.Scan(t.db.QueryRowContext(ctx, stmt.SQL, stmt.Args...))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, false, nil
	}
	if err != nil {
		var zero T
		return zero, false, classify("select from", t.desc.Table, err)
	}
	return rec, true, nil
}

// Update writes the fields present in the change-set. It reports false
// without touching the database when the change-set is empty, and false
// when no row has the id.
func (t *Table[T, F]) Update(ctx context.Context, id int64, fields F) (bool, error) {
	stmt, err := generic.BuildUpdate(t.desc, id, fields)
	if errors.Is(err, generic.ErrNothingToUpdate) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	res, err := t.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return false, classify("update", t.desc.Table, err)
	}
	return affected(res, "update", t.desc.Table)
}

// Delete removes the row with id. Rows referencing it are left alone.
func (t *Table[T, F]) Delete(ctx context.Context, id int64) (bool, error) {
	stmt := generic.BuildDelete(t.desc, id)

	res, err := t.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return false, classify("delete from", t.desc.Table, err)
	}
	return affected(res, "delete from", t.desc.Table)
}

func affected(res sql.Result, op, table string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(op, table, err)
	}
	return n > 0, nil
}
