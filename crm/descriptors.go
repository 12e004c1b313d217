package crm

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/records-engine/generic"
)

// =============================================================================
// DESCRIPTORS
// =============================================================================

// Table names.
const (
	PartiesTable       = "parties"
	OpportunitiesTable = "opportunities"
	ActionItemsTable   = "action_items"
)

// PartyDescriptor maps Party to the parties table.
var PartyDescriptor = &generic.Descriptor[Party, PartyFields]{
	Table: PartiesTable,
	Columns: []generic.Column[PartyFields]{
		{Name: "name", Required: true, Mutable: true, Get: func(f PartyFields) generic.Field { return f.Name.Field() }},
		{Name: "email", Nullable: true, Mutable: true, Get: func(f PartyFields) generic.Field { return f.Email.Field() }},
		{Name: "phone", Nullable: true, Mutable: true, Get: func(f PartyFields) generic.Field { return f.Phone.Field() }},
		{Name: "company", Nullable: true, Mutable: true, Get: func(f PartyFields) generic.Field { return f.Company.Field() }},
		{Name: "status", Default: DefaultPartyStatus, Mutable: true, Get: func(f PartyFields) generic.Field { return f.Status.Field() }},
	},
	Search:  []string{"name", "email", "phone", "company"},
	Filters: []generic.FilterOption{generic.StatusOption("status")},
	Scan:    scanParty,
}

// OpportunityDescriptor maps Opportunity to the opportunities table.
var OpportunityDescriptor = &generic.Descriptor[Opportunity, OpportunityFields]{
	Table: OpportunitiesTable,
	Columns: []generic.Column[OpportunityFields]{
		{Name: "title", Required: true, Mutable: true, Get: func(f OpportunityFields) generic.Field { return f.Title.Field() }},
		{Name: "amount", Default: "0", Mutable: true, Get: func(f OpportunityFields) generic.Field {
			return generic.Map(f.Amount, decimal.Decimal.String)
		}},
		{Name: "currency", Default: DefaultCurrency, Mutable: true, Get: func(f OpportunityFields) generic.Field { return f.Currency.Field() }},
		{Name: "status", Default: DefaultOpportunityStatus, Mutable: true, Get: func(f OpportunityFields) generic.Field { return f.Status.Field() }},
		{Name: "client_id", Nullable: true, Mutable: true, Get: func(f OpportunityFields) generic.Field { return f.ClientID.Field() }},
		{Name: "close_date", Nullable: true, Mutable: true, Get: func(f OpportunityFields) generic.Field { return f.CloseDate.Field() }},
	},
	Search: []string{"title"},
	Filters: []generic.FilterOption{
		generic.StatusOption("status"),
		generic.ClientOption("client_id"),
	},
	Scan: scanOpportunity,
}

// ActionItemDescriptor maps ActionItem to the action_items table.
var ActionItemDescriptor = &generic.Descriptor[ActionItem, ActionItemFields]{
	Table: ActionItemsTable,
	Columns: []generic.Column[ActionItemFields]{
		{Name: "title", Required: true, Mutable: true, Get: func(f ActionItemFields) generic.Field { return f.Title.Field() }},
		{Name: "description", Nullable: true, Mutable: true, Get: func(f ActionItemFields) generic.Field { return f.Description.Field() }},
		{Name: "due_date", Nullable: true, Mutable: true, Get: func(f ActionItemFields) generic.Field { return f.DueDate.Field() }},
		{Name: "is_done", Default: int64(0), Mutable: true, Get: func(f ActionItemFields) generic.Field {
			return generic.Map(f.Done, generic.BoolToInt)
		}},
		{Name: "client_id", Nullable: true, Mutable: true, Get: func(f ActionItemFields) generic.Field { return f.ClientID.Field() }},
		{Name: "deal_id", Nullable: true, Mutable: true, Get: func(f ActionItemFields) generic.Field { return f.DealID.Field() }},
	},
	Search: []string{"title", "description"},
	Filters: []generic.FilterOption{
		generic.DoneOption("is_done"),
		generic.ClientOption("client_id"),
		generic.DealOption("deal_id"),
	},
	Scan: scanActionItem,
}

// =============================================================================
// ROW MAPPING
// =============================================================================

func scanParty(row generic.RowScanner) (Party, error) {
	var (
		p                     Party
		email, phone, company sql.NullString
		createdAt             string
	)
	if err := row.Scan(&p.ID, &p.Name, &email, &phone, &company, &p.Status, &createdAt); err != nil {
		return p, err
	}
	p.Email = nullString(email)
	p.Phone = nullString(phone)
	p.Company = nullString(company)

	var err error
	p.CreatedAt, err = parseCreatedAt(createdAt)
	return p, err
}

func scanOpportunity(row generic.RowScanner) (Opportunity, error) {
	var (
		o         Opportunity
		clientID  sql.NullInt64
		closeDate sql.NullString
		createdAt string
	)
	if err := row.Scan(&o.ID, &o.Title, &o.Amount, &o.Currency, &o.Status, &clientID, &closeDate, &createdAt); err != nil {
		return o, err
	}
	o.ClientID = nullInt(clientID)

	var err error
	if o.CloseDate, err = nullDate(closeDate); err != nil {
		return o, err
	}
	o.CreatedAt, err = parseCreatedAt(createdAt)
	return o, err
}

func scanActionItem(row generic.RowScanner) (ActionItem, error) {
	var (
		a                ActionItem
		description      sql.NullString
		dueDate          sql.NullString
		done             int64
		clientID, dealID sql.NullInt64
		createdAt        string
	)
	if err := row.Scan(&a.ID, &a.Title, &description, &dueDate, &done, &clientID, &dealID, &createdAt); err != nil {
		return a, err
	}
	a.Description = nullString(description)
	a.Done = done != 0
	a.ClientID = nullInt(clientID)
	a.DealID = nullInt(dealID)

	var err error
	if a.DueDate, err = nullDate(dueDate); err != nil {
		return a, err
	}
	a.CreatedAt, err = parseCreatedAt(createdAt)
	return a, err
}

// Helper functions

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func nullDate(ns sql.NullString) (*generic.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := generic.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseCreatedAt(s string) (time.Time, error) {
	t, err := time.Parse(generic.CreatedAtLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_at %q: %w", s, err)
	}
	return t, nil
}
