/*
Package generic provides the entity-agnostic data-access engine.

PURPOSE:
  This package contains the storage-independent pieces shared by every
  record kind: presence-tagged field values, the entity descriptor, the
  filter predicate builder and the partial update builder. Whether the
  record is a party, an opportunity or an action item, the same code
  decides which columns are written and which rows are read.

KEY CONCEPTS IN THIS FILE (types.go):
  - Opt[T]: A tri-state field value (absent, explicit null, value)
  - Field:  The untyped form of Opt[T] consumed by the builders
  - Date:   A calendar date stored as YYYY-MM-DD text

DESIGN PRINCIPLES:
  1. Absent is not null: a field left out of a change-set is never written
  2. Null is explicit: Null() asks for the column to be cleared
  3. Defaults belong to the descriptor, not to the caller

USAGE:
  fields := crm.PartyFields{
      Name:  generic.Some("Anna"),
      Email: generic.Null[string](), // clear the column
  }

SEE ALSO:
  - descriptor.go: Entity descriptors built from Opt-valued field sets
  - query.go: Builders that consume Field values
*/
package generic

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// OPT - Presence-tagged value
// =============================================================================

// Presence tells whether a field was supplied and whether it carries a value.
type Presence uint8

const (
	// StateAbsent means the caller did not mention the field.
	StateAbsent Presence = iota
	// StateNull means the caller supplied the field with no value.
	StateNull
	// StatePresent means the caller supplied a value.
	StatePresent
)

func (p Presence) String() string {
	switch p {
	case StateAbsent:
		return "absent"
	case StateNull:
		return "null"
	case StatePresent:
		return "present"
	default:
		return fmt.Sprintf("presence(%d)", p)
	}
}

// Opt is a tri-state field value. The zero value is absent.
type Opt[T any] struct {
	state Presence
	value T
}

// Some returns an Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{state: StatePresent, value: v}
}

// Null returns an Opt that explicitly carries no value.
func Null[T any]() Opt[T] {
	return Opt[T]{state: StateNull}
}

// Field erases the type parameter for the query builders.
func (o Opt[T]) Field() Field {
	if o.state != StatePresent {
		return Field{State: o.state}
	}
	return Field{State: StatePresent, Value: o.value}
}

// MarshalJSON writes null for absent and null states.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if o.state != StatePresent {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON is only invoked for keys present in the document, so a
// missing key leaves the Opt absent while a literal null marks it StateNull.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.state, o.value = StateNull, zero
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.state, o.value = StatePresent, v
	return nil
}

// Field is a presence-tagged value with its type erased.
type Field struct {
	State Presence
	Value any
}

// Map converts a present value with fn and keeps absent/null untouched.
// Used where the stored representation differs from the Go one (bool as 0/1).
func Map[T, U any](o Opt[T], fn func(T) U) Field {
	if o.state != StatePresent {
		return Field{State: o.state}
	}
	return Field{State: StatePresent, Value: fn(o.value)}
}

// =============================================================================
// DATE - Calendar date without time of day
// =============================================================================

// DateLayout is the stored and wire format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar date. It is stored and serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the date y-m-d in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
