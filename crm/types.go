/*
Package crm defines the business records: parties, opportunities and
action items.

PURPOSE:
  This package is the domain layer on top of the generic engine. It owns
  the record shapes, the sparse field sets used to create and change
  them, and the descriptors that tell the generic repository how each
  record maps to its table.

RECORDS:
  Party:       a client (person or company)
  Opportunity: a deal, optionally linked to a party
  ActionItem:  a task, optionally linked to a party and an opportunity

WEAK REFERENCES:
  ClientID and DealID are plain ids. They are not checked for existence
  on write and nothing cascades on delete: deleting a party leaves its
  opportunities and action items pointing at an id that no longer exists.

FIELD SETS:
  PartyFields, OpportunityFields and ActionItemFields hold every writable
  field as generic.Opt. The same type is used for Create (absent fields
  take their default) and Update (absent fields keep their value).

SEE ALSO:
  - descriptors.go: Column rules and row mapping
  - book.go: The three repositories together
  - generic/types.go: Opt and Date
*/
package crm

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/records-engine/generic"
)

// Defaults applied on create when the field is absent.
const (
	DefaultPartyStatus       = PartyActive
	DefaultOpportunityStatus = OpportunityNew
	DefaultCurrency          = "RUB"
)

// Party statuses used by the seeding utility and the UI.
const (
	PartyActive   = "active"
	PartyArchived = "archived"
)

// Opportunity statuses.
const (
	OpportunityNew        = "new"
	OpportunityInProgress = "in_progress"
	OpportunityClosed     = "closed"
	OpportunityCancelled  = "cancelled"
)

// =============================================================================
// PARTY
// =============================================================================

// Party is a client record.
type Party struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Company   *string   `json:"company"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PartyFields is a sparse set of party fields.
type PartyFields struct {
	Name    generic.Opt[string] `json:"name"`
	Email   generic.Opt[string] `json:"email"`
	Phone   generic.Opt[string] `json:"phone"`
	Company generic.Opt[string] `json:"company"`
	Status  generic.Opt[string] `json:"status"`
}

// =============================================================================
// OPPORTUNITY
// =============================================================================

// Opportunity is a deal record.
type Opportunity struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	ClientID  *int64          `json:"client_id"`
	CloseDate *generic.Date   `json:"close_date"`
	CreatedAt time.Time       `json:"created_at"`
}

// OpportunityFields is a sparse set of opportunity fields.
type OpportunityFields struct {
	Title     generic.Opt[string]          `json:"title"`
	Amount    generic.Opt[decimal.Decimal] `json:"amount"`
	Currency  generic.Opt[string]          `json:"currency"`
	Status    generic.Opt[string]          `json:"status"`
	ClientID  generic.Opt[int64]           `json:"client_id"`
	CloseDate generic.Opt[generic.Date]    `json:"close_date"`
}

// =============================================================================
// ACTION ITEM
// =============================================================================

// ActionItem is a task record. Done is stored as 0/1.
type ActionItem struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	DueDate     *generic.Date `json:"due_date"`
	Done        bool          `json:"is_done"`
	ClientID    *int64        `json:"client_id"`
	DealID      *int64        `json:"deal_id"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ActionItemFields is a sparse set of action item fields.
type ActionItemFields struct {
	Title       generic.Opt[string]       `json:"title"`
	Description generic.Opt[string]       `json:"description"`
	DueDate     generic.Opt[generic.Date] `json:"due_date"`
	Done        generic.Opt[bool]         `json:"is_done"`
	ClientID    generic.Opt[int64]        `json:"client_id"`
	DealID      generic.Opt[int64]        `json:"deal_id"`
}
