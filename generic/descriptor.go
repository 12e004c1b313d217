/*
descriptor.go - Per-entity schema descriptor

PURPOSE:
  A Descriptor is everything the builders and the generic repository need
  to know about one record kind: its table, its writable columns with
  their required/nullable/default rules, which columns take part in the
  free-text search, which filter options it recognizes, and the
  statically typed function that maps a row to a record.

  One descriptor per entity replaces three hand-written repositories.

COLUMN ORDER:
  SelectColumns() is always: id, the declared columns in order, created_at.
  A descriptor's Scan function reads the row in exactly that order.

SEE ALSO:
  - query.go: Builders driven by a Descriptor
  - crm/descriptors.go: The Party, Opportunity and ActionItem descriptors
*/
package generic

import "fmt"

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// Column describes one writable column of an entity.
type Column[F any] struct {
	Name string

	// Required columns must be supplied with a value on create.
	Required bool

	// Nullable columns accept an explicit null on create and update.
	Nullable bool

	// Default is written on create when the field is absent.
	// Nil means no default: the column is left to NULL.
	Default any

	// Mutable columns can be changed by Update.
	Mutable bool

	// Get extracts the presence-tagged value from a field set.
	Get func(F) Field
}

// FilterOption is one recognized list filter. Value reports the value to
// compare against and whether the option is set in the Filter.
type FilterOption struct {
	Column string
	Value  func(Filter) (any, bool)
}

// Descriptor ties a record type T to its sparse field set F.
type Descriptor[T any, F any] struct {
	Table   string
	Columns []Column[F]

	// Search lists the text columns matched by Filter.Query.
	Search []string

	// Filters lists the equality filters this entity recognizes.
	Filters []FilterOption

	// Scan maps one row, read in SelectColumns order, to a record.
	Scan func(RowScanner) (T, error)
}

// SelectColumns returns the read column list.
func (d *Descriptor[T, F]) SelectColumns() []string {
	cols := make([]string, 0, len(d.Columns)+2)
	cols = append(cols, "id")
	for _, c := range d.Columns {
		cols = append(cols, c.Name)
	}
	return append(cols, "created_at")
}

// Validate checks that the descriptor is internally consistent.
func (d *Descriptor[T, F]) Validate() error {
	if d.Table == "" {
		return fmt.Errorf("descriptor: empty table name")
	}
	if d.Scan == nil {
		return fmt.Errorf("descriptor %s: missing Scan", d.Table)
	}
	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		if c.Get == nil {
			return fmt.Errorf("descriptor %s: column %s has no Get", d.Table, c.Name)
		}
		if c.Required && c.Default != nil {
			return fmt.Errorf("descriptor %s: column %s is required and has a default", d.Table, c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("descriptor %s: duplicate column %s", d.Table, c.Name)
		}
		seen[c.Name] = true
	}
	for _, s := range d.Search {
		if !seen[s] {
			return fmt.Errorf("descriptor %s: search column %s is not declared", d.Table, s)
		}
	}
	for _, f := range d.Filters {
		if !seen[f.Column] {
			return fmt.Errorf("descriptor %s: filter column %s is not declared", d.Table, f.Column)
		}
	}
	return nil
}

// =============================================================================
// FILTER
// =============================================================================

// Filter is the bag of optional list filters. Zero values mean "not set".
// Each entity only honours the options its descriptor declares.
type Filter struct {
	// Query is matched as a case-insensitive substring of the search columns.
	Query string

	Status   string
	Done     *bool
	ClientID int64
	DealID   int64
}

// StatusOption matches Filter.Status against column when non-empty.
func StatusOption(column string) FilterOption {
	return FilterOption{Column: column, Value: func(f Filter) (any, bool) {
		return f.Status, f.Status != ""
	}}
}

// DoneOption matches Filter.Done against an integer 0/1 column.
func DoneOption(column string) FilterOption {
	return FilterOption{Column: column, Value: func(f Filter) (any, bool) {
		if f.Done == nil {
			return nil, false
		}
		return BoolToInt(*f.Done), true
	}}
}

// ClientOption matches Filter.ClientID against column when non-zero.
func ClientOption(column string) FilterOption {
	return FilterOption{Column: column, Value: func(f Filter) (any, bool) {
		return f.ClientID, f.ClientID != 0
	}}
}

// DealOption matches Filter.DealID against column when non-zero.
func DealOption(column string) FilterOption {
	return FilterOption{Column: column, Value: func(f Filter) (any, bool) {
		return f.DealID, f.DealID != 0
	}}
}

// BoolToInt is the stored form of a boolean flag.
func BoolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
