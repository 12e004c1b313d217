/*
query.go - SQL builders for descriptor-driven repositories

PURPOSE:
  Turns a Descriptor plus caller input into a parameterized statement.
  The builders never touch a connection; the storage package executes
  what they return.

BUILDERS:
  BuildInsert: required/default/null rules at create time
  BuildSelect: filter predicate builder (1=1 AND ... ORDER BY id DESC)
  BuildGet:    point lookup by id
  BuildUpdate: partial update builder (only present fields are assigned)
  BuildDelete: unconditional delete by id

SEARCH:
  Filter.Query becomes an OR of
      casefold(col) LIKE ? ESCAPE '\'
  over the descriptor's search columns. FoldFunc must be registered as a
  SQL function by the driver and must apply the same folding as Fold.
  LIKE wildcards in the query are escaped, so matching is plain
  containment.

PARAMETERS:
  All values are bound with ? placeholders, never interpolated. Column
  and table names come from descriptors only.

SEE ALSO:
  - descriptor.go: Input of every builder
  - store/sqlite/driver.go: Registers FoldFunc
*/
package generic

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// FoldFunc is the SQL function name used for case-insensitive search.
const FoldFunc = "casefold"

// CreatedAtLayout is the stored format of created_at.
const CreatedAtLayout = time.RFC3339

// Fold applies Unicode case folding. A Caser is not safe for concurrent
// use, so one is built per call.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Statement is a parameterized SQL statement.
type Statement struct {
	SQL  string
	Args []any
}

// =============================================================================
// INSERT
// =============================================================================

// BuildInsert builds the INSERT for a new row. Absent fields take the
// column default; required fields must be present. An explicit null is
// accepted only on nullable columns: it never falls back to the default,
// so null on a NOT NULL column with a default is a ValidationError.
func BuildInsert[T, F any](d *Descriptor[T, F], fields F, createdAt time.Time) (Statement, error) {
	cols := make([]string, 0, len(d.Columns)+1)
	args := make([]any, 0, len(d.Columns)+1)

	for _, c := range d.Columns {
		f := c.Get(fields)
		switch f.State {
		case StateAbsent:
			if c.Required {
				return Statement{}, &ValidationError{Table: d.Table, Field: c.Name, Reason: "required"}
			}
			if c.Default == nil {
				continue
			}
			cols = append(cols, c.Name)
			args = append(args, c.Default)
		case StateNull:
			if !c.Nullable {
				return Statement{}, &ValidationError{Table: d.Table, Field: c.Name, Reason: "must not be null"}
			}
			cols = append(cols, c.Name)
			args = append(args, nil)
		case StatePresent:
			cols = append(cols, c.Name)
			args = append(args, f.Value)
		}
	}

	cols = append(cols, "created_at")
	args = append(args, createdAt.UTC().Format(CreatedAtLayout))

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Table, strings.Join(cols, ", "), placeholders(len(cols)))
	return Statement{SQL: q, Args: args}, nil
}

// =============================================================================
// SELECT
// =============================================================================

// BuildSelect builds the filtered list query. It starts from a predicate
// matching every row and AND-combines one predicate per set option.
func BuildSelect[T, F any](d *Descriptor[T, F], filter Filter) Statement {
	var (
		where strings.Builder
		args  []any
	)
	where.WriteString("1=1")

	if filter.Query != "" && len(d.Search) > 0 {
		pattern := "%" + escapeLike(Fold(filter.Query)) + "%"
		parts := make([]string, len(d.Search))
		for i, col := range d.Search {
			parts[i] = fmt.Sprintf(`%s(%s) LIKE ? ESCAPE '\'`, FoldFunc, col)
			args = append(args, pattern)
		}
		where.WriteString(" AND (" + strings.Join(parts, " OR ") + ")")
	}

	for _, opt := range d.Filters {
		v, ok := opt.Value(filter)
		if !ok {
			continue
		}
		where.WriteString(" AND " + opt.Column + " = ?")
		args = append(args, v)
	}

	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id DESC",
		strings.Join(d.SelectColumns(), ", "), d.Table, where.String())
	return Statement{SQL: q, Args: args}
}

// BuildGet builds the point lookup by id.
func BuildGet[T, F any](d *Descriptor[T, F], id int64) Statement {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?",
		strings.Join(d.SelectColumns(), ", "), d.Table)
	return Statement{SQL: q, Args: []any{id}}
}

// =============================================================================
// UPDATE / DELETE
// =============================================================================

// BuildUpdate builds a single UPDATE assigning only the fields present in
// the change-set, in the descriptor's column order. It returns
// ErrNothingToUpdate when no mutable field is populated.
func BuildUpdate[T, F any](d *Descriptor[T, F], id int64, fields F) (Statement, error) {
	var (
		sets []string
		args []any
	)

	for _, c := range d.Columns {
		if !c.Mutable {
			continue
		}
		f := c.Get(fields)
		switch f.State {
		case StateAbsent:
			continue
		case StateNull:
			if !c.Nullable {
				return Statement{}, &ValidationError{Table: d.Table, Field: c.Name, Reason: "must not be null"}
			}
			sets = append(sets, c.Name+" = ?")
			args = append(args, nil)
		case StatePresent:
			sets = append(sets, c.Name+" = ?")
			args = append(args, f.Value)
		}
	}

	if len(sets) == 0 {
		return Statement{}, ErrNothingToUpdate
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", d.Table, strings.Join(sets, ", "))
	return Statement{SQL: q, Args: args}, nil
}

// BuildDelete builds the delete by id.
func BuildDelete[T, F any](d *Descriptor[T, F], id int64) Statement {
	return Statement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE id = ?", d.Table),
		Args: []any{id},
	}
}

// Helper functions

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
