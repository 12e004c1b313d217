/*
store.go - Repository contract for one record kind

PURPOSE:
  Defines the interface between callers (HTTP layer, seeding utility) and
  the database. One implementation serves every entity; it is driven by a
  Descriptor.

CONTRACT:
  Create: inserts one row, stamps created_at, returns the new id
  List:   newest id first, empty slice when nothing matches
  Get:    ok=false when the id does not exist (not an error)
  Update: false when the change-set is empty or the id does not exist
  Delete: false when the id does not exist

ATOMICITY:
  Every operation is a single statement. There are no multi-statement
  transactions and no retries; a busy engine surfaces as ErrBusy.

IMPLEMENTATIONS:
  - store/sqlite/table.go: SQLite

SEE ALSO:
  - descriptor.go: What a repository knows about its entity
  - crm/book.go: The three repositories bundled together
*/
package generic

import "context"

// Repository persists records of type T written through field sets F.
type Repository[T any, F any] interface {
	Create(ctx context.Context, fields F) (int64, error)
	List(ctx context.Context, filter Filter) ([]T, error)
	Get(ctx context.Context, id int64) (T, bool, error)
	Update(ctx context.Context, id int64, fields F) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
