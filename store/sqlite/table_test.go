package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/records-engine/config"
	"github.com/warp/records-engine/crm"
	"github.com/warp/records-engine/generic"
	"github.com/warp/records-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

var drivers = []string{config.DriverMattn, config.DriverModernc}

func testConfig(t *testing.T, driver string) config.Database {
	return config.Database{
		Path:        filepath.Join(t.TempDir(), "crm.db"),
		Driver:      driver,
		BusyTimeout: 50 * time.Millisecond,
	}
}

func newTestStore(t *testing.T, driver string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), testConfig(t, driver),
		sqlite.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// eachDriver runs fn once per supported driver.
func eachDriver(t *testing.T, fn func(t *testing.T, book *crm.Book, store *sqlite.Store)) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			store := newTestStore(t, driver)
			fn(t, store.Book(), store)
		})
	}
}

func str(s string) *string { return &s }
func i64(v int64) *int64   { return &v }

// =============================================================================
// CREATE / GET
// =============================================================================

func TestParty_CreateGetRoundTrip(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		id, err := book.Parties.Create(ctx, crm.PartyFields{
			Name:    generic.Some("Ivan Petrov"),
			Email:   generic.Some("ivan@example.com"),
			Phone:   generic.Some("+7 900 000-00-00"),
			Company: generic.Some("Romashka LLC"),
			Status:  generic.Some(crm.PartyArchived),
		})
		require.NoError(t, err)
		assert.Positive(t, id)

		got, ok, err := book.Parties.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)

		assert.Equal(t, crm.Party{
			ID:        id,
			Name:      "Ivan Petrov",
			Email:     str("ivan@example.com"),
			Phone:     str("+7 900 000-00-00"),
			Company:   str("Romashka LLC"),
			Status:    crm.PartyArchived,
			CreatedAt: fixedNow,
		}, got)
	})
}

func TestParty_DefaultsApplyOnlyWhenAbsent(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		absentID, err := book.Parties.Create(ctx, crm.PartyFields{Name: generic.Some("Anna")})
		require.NoError(t, err)
		emptyID, err := book.Parties.Create(ctx, crm.PartyFields{
			Name:   generic.Some("Boris"),
			Status: generic.Some(""),
		})
		require.NoError(t, err)

		absent, _, err := book.Parties.Get(ctx, absentID)
		require.NoError(t, err)
		assert.Equal(t, crm.DefaultPartyStatus, absent.Status)
		assert.Nil(t, absent.Email)

		empty, _, err := book.Parties.Get(ctx, emptyID)
		require.NoError(t, err)
		assert.Equal(t, "", empty.Status, "present-but-empty must not be replaced by the default")
	})
}

func TestCreate_MissingRequiredField(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		_, err := book.Parties.Create(ctx, crm.PartyFields{Email: generic.Some("x@example.com")})
		require.ErrorIs(t, err, generic.ErrValidation)

		var vErr *generic.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "name", vErr.Field)
		assert.True(t, generic.IsClientError(err))

		_, err = book.ActionItems.Create(ctx, crm.ActionItemFields{Title: generic.Null[string]()})
		assert.ErrorIs(t, err, generic.ErrValidation)

		parties, err := book.Parties.List(ctx, generic.Filter{})
		require.NoError(t, err)
		assert.Empty(t, parties, "no row may be inserted on validation failure")
	})
}

func TestCreate_NullOnDefaultedColumn(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		_, err := book.Opportunities.Create(context.Background(), crm.OpportunityFields{
			Title:    generic.Some("Deal"),
			Currency: generic.Null[string](),
		})
		assert.ErrorIs(t, err, generic.ErrValidation)
	})
}

func TestCreate_IDsIncrease(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		first, err := book.Parties.Create(ctx, crm.PartyFields{Name: generic.Some("A")})
		require.NoError(t, err)
		_, err = book.Parties.Delete(ctx, first)
		require.NoError(t, err)

		second, err := book.Parties.Create(ctx, crm.PartyFields{Name: generic.Some("B")})
		require.NoError(t, err)
		assert.Greater(t, second, first, "ids are never reused")
	})
}

func TestGet_Missing(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		_, ok, err := book.Opportunities.Get(context.Background(), 404)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOpportunity_DefaultsAndDecimal(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		bare, err := book.Opportunities.Create(ctx, crm.OpportunityFields{Title: generic.Some("Bare")})
		require.NoError(t, err)

		got, ok, err := book.Opportunities.Get(ctx, bare)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Amount.IsZero())
		assert.Equal(t, crm.DefaultCurrency, got.Currency)
		assert.Equal(t, crm.DefaultOpportunityStatus, got.Status)
		assert.Nil(t, got.ClientID)
		assert.Nil(t, got.CloseDate)

		amount := decimal.RequireFromString("123456789.123456789")
		closeDate := generic.NewDate(2026, time.June, 30)
		full, err := book.Opportunities.Create(ctx, crm.OpportunityFields{
			Title:     generic.Some("Full"),
			Amount:    generic.Some(amount),
			Currency:  generic.Some("EUR"),
			Status:    generic.Some(crm.OpportunityInProgress),
			ClientID:  generic.Some(int64(99)),
			CloseDate: generic.Some(closeDate),
		})
		require.NoError(t, err)

		got, _, err = book.Opportunities.Get(ctx, full)
		require.NoError(t, err)
		assert.True(t, amount.Equal(got.Amount), "decimal must round-trip exactly, got %s", got.Amount)
		assert.Equal(t, "EUR", got.Currency)
		assert.Equal(t, i64(99), got.ClientID, "weak reference to a missing party is accepted")
		require.NotNil(t, got.CloseDate)
		assert.Equal(t, "2026-06-30", got.CloseDate.String())
	})
}

func TestActionItem_DoneRoundTrip(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, store *sqlite.Store) {
		ctx := context.Background()

		id, err := book.ActionItems.Create(ctx, crm.ActionItemFields{
			Title: generic.Some("Call back"),
			Done:  generic.Some(true),
		})
		require.NoError(t, err)

		got, ok, err := book.ActionItems.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Done)

		// Stored as an integer flag
		var raw int64
		require.NoError(t, store.DB().QueryRowContext(ctx,
			"SELECT is_done FROM action_items WHERE id = ?", id).Scan(&raw))
		assert.Equal(t, int64(1), raw)

		// Explicit false is a present value and is written
		updated, err := book.ActionItems.Update(ctx, id, crm.ActionItemFields{Done: generic.Some(false)})
		require.NoError(t, err)
		assert.True(t, updated)

		got, _, err = book.ActionItems.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.Done)
		assert.Equal(t, "Call back", got.Title)
	})
}

// =============================================================================
// UPDATE
// =============================================================================

func TestUpdate_SparseKeepsUntouchedFields(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		id, err := book.Parties.Create(ctx, crm.PartyFields{
			Name:    generic.Some("Anna"),
			Email:   generic.Some("anna@example.com"),
			Company: generic.Some("Acme"),
		})
		require.NoError(t, err)
		before, _, err := book.Parties.Get(ctx, id)
		require.NoError(t, err)

		ok, err := book.Parties.Update(ctx, id, crm.PartyFields{
			Phone:  generic.Some("12345"),
			Status: generic.Some(crm.PartyArchived),
		})
		require.NoError(t, err)
		assert.True(t, ok)

		after, _, err := book.Parties.Get(ctx, id)
		require.NoError(t, err)

		want := before
		want.Phone = str("12345")
		want.Status = crm.PartyArchived
		assert.Equal(t, want, after)
		assert.Equal(t, before.CreatedAt, after.CreatedAt, "created_at is never mutated")
	})
}

func TestUpdate_EmptyChangeSet(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		id, err := book.Parties.Create(ctx, crm.PartyFields{Name: generic.Some("Anna")})
		require.NoError(t, err)
		before, _, err := book.Parties.Get(ctx, id)
		require.NoError(t, err)

		ok, err := book.Parties.Update(ctx, id, crm.PartyFields{})
		require.NoError(t, err)
		assert.False(t, ok)

		after, _, err := book.Parties.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestUpdate_MissingID(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ok, err := book.ActionItems.Update(context.Background(), 12345,
			crm.ActionItemFields{Title: generic.Some("ghost")})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestUpdate_ExplicitNullClearsNullableColumn(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		id, err := book.ActionItems.Create(ctx, crm.ActionItemFields{
			Title:       generic.Some("Send contract"),
			Description: generic.Some("draft v2"),
			DueDate:     generic.Some(generic.NewDate(2026, time.April, 1)),
			ClientID:    generic.Some(int64(7)),
		})
		require.NoError(t, err)

		ok, err := book.ActionItems.Update(ctx, id, crm.ActionItemFields{
			Description: generic.Null[string](),
			ClientID:    generic.Null[int64](),
		})
		require.NoError(t, err)
		assert.True(t, ok)

		got, _, err := book.ActionItems.Get(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got.Description)
		assert.Nil(t, got.ClientID)
		require.NotNil(t, got.DueDate, "absent field keeps its value")
		assert.Equal(t, "2026-04-01", got.DueDate.String())
	})
}

func TestUpdate_NullOnRequiredColumn(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		id, err := book.Parties.Create(ctx, crm.PartyFields{Name: generic.Some("Anna")})
		require.NoError(t, err)

		ok, err := book.Parties.Update(ctx, id, crm.PartyFields{
			Name:  generic.Null[string](),
			Email: generic.Some("anna@example.com"),
		})
		assert.ErrorIs(t, err, generic.ErrValidation)
		assert.False(t, ok)

		got, _, err := book.Parties.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Anna", got.Name)
		assert.Nil(t, got.Email, "a rejected update writes nothing")
	})
}

// =============================================================================
// DELETE
// =============================================================================

func TestDelete(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		ok, err := book.Parties.Delete(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok, "deleting a missing id reports false")

		id, err := book.Parties.Create(ctx, crm.PartyFields{Name: generic.Some("Anna")})
		require.NoError(t, err)

		ok, err = book.Parties.Delete(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)

		_, found, err := book.Parties.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

// =============================================================================
// LIST
// =============================================================================

func seedParties(t *testing.T, book *crm.Book, parties ...crm.PartyFields) []int64 {
	t.Helper()
	ids := make([]int64, len(parties))
	for i, p := range parties {
		id, err := book.Parties.Create(context.Background(), p)
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func partyIDs(parties []crm.Party) []int64 {
	ids := make([]int64, len(parties))
	for i, p := range parties {
		ids[i] = p.ID
	}
	return ids
}

func TestList_NewestFirst(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ids := seedParties(t, book,
			crm.PartyFields{Name: generic.Some("first")},
			crm.PartyFields{Name: generic.Some("second")},
			crm.PartyFields{Name: generic.Some("third")},
		)

		got, err := book.Parties.List(context.Background(), generic.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, partyIDs(got))
	})
}

func TestList_EmptyResultIsNotNil(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		got, err := book.ActionItems.List(context.Background(), generic.Filter{Query: "nothing"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestList_SearchIsCaseInsensitiveContainment(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ids := seedParties(t, book,
			crm.PartyFields{Name: generic.Some("Ivan Petrov")},
			crm.PartyFields{Name: generic.Some("Olga"), Email: generic.Some("IVANOVA@mail.test")},
			crm.PartyFields{Name: generic.Some("Пётр"), Company: generic.Some("ООО Иван и Партнёры")},
			crm.PartyFields{Name: generic.Some("Nobody")},
		)

		for _, q := range []string{"ivan", "IVAN", "iVaN"} {
			got, err := book.Parties.List(context.Background(), generic.Filter{Query: q})
			require.NoError(t, err)
			assert.Equal(t, []int64{ids[1], ids[0]}, partyIDs(got), "query %q", q)
		}

		got, err := book.Parties.List(context.Background(), generic.Filter{Query: "иван"})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[2]}, partyIDs(got), "non-ASCII text folds too")
	})
}

func TestList_SearchEscapesWildcards(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ids := seedParties(t, book,
			crm.PartyFields{Name: generic.Some("100% Cotton")},
			crm.PartyFields{Name: generic.Some("Plain")},
			crm.PartyFields{Name: generic.Some("snake_case")},
		)

		got, err := book.Parties.List(context.Background(), generic.Filter{Query: "%"})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[0]}, partyIDs(got))

		got, err = book.Parties.List(context.Background(), generic.Filter{Query: "_"})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[2]}, partyIDs(got))
	})
}

func TestList_StatusFilterAndIntersection(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ids := seedParties(t, book,
			crm.PartyFields{Name: generic.Some("Ivan Petrov"), Status: generic.Some(crm.PartyArchived)},
			crm.PartyFields{Name: generic.Some("Ivan Sidorov")},
			crm.PartyFields{Name: generic.Some("Maria"), Status: generic.Some(crm.PartyArchived)},
		)
		ctx := context.Background()

		archived, err := book.Parties.List(ctx, generic.Filter{Status: crm.PartyArchived})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[2], ids[0]}, partyIDs(archived))
		for _, p := range archived {
			assert.Equal(t, crm.PartyArchived, p.Status)
		}

		both, err := book.Parties.List(ctx, generic.Filter{Query: "ivan", Status: crm.PartyArchived})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[0]}, partyIDs(both))
	})
}

func TestList_UnrecognizedOptionsAreIgnored(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		seedParties(t, book, crm.PartyFields{Name: generic.Some("Anna")})

		// Parties have no client or deal reference
		got, err := book.Parties.List(context.Background(), generic.Filter{ClientID: 5, DealID: 6})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func TestList_ActionItemFilters(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()
		create := func(f crm.ActionItemFields) int64 {
			id, err := book.ActionItems.Create(ctx, f)
			require.NoError(t, err)
			return id
		}

		open := create(crm.ActionItemFields{Title: generic.Some("Prepare offer"), ClientID: generic.Some(int64(1)), DealID: generic.Some(int64(10))})
		done := create(crm.ActionItemFields{Title: generic.Some("Send invoice"), Done: generic.Some(true), ClientID: generic.Some(int64(1))})
		other := create(crm.ActionItemFields{Title: generic.Some("Call"), Description: generic.Some("about the OFFER"), ClientID: generic.Some(int64(2))})

		list := func(f generic.Filter) []int64 {
			items, err := book.ActionItems.List(ctx, f)
			require.NoError(t, err)
			ids := make([]int64, len(items))
			for i, it := range items {
				ids[i] = it.ID
			}
			return ids
		}

		yes, no := true, false
		assert.Equal(t, []int64{done}, list(generic.Filter{Done: &yes}))
		assert.Equal(t, []int64{other, open}, list(generic.Filter{Done: &no}))
		assert.Equal(t, []int64{done, open}, list(generic.Filter{ClientID: 1}))
		assert.Equal(t, []int64{open}, list(generic.Filter{DealID: 10}))
		assert.Equal(t, []int64{other, open}, list(generic.Filter{Query: "offer"}), "description is searched")
		assert.Equal(t, []int64{open}, list(generic.Filter{Query: "offer", ClientID: 1}))
	})
}

func TestList_OpportunityClientFilter(t *testing.T) {
	eachDriver(t, func(t *testing.T, book *crm.Book, _ *sqlite.Store) {
		ctx := context.Background()

		a, err := book.Opportunities.Create(ctx, crm.OpportunityFields{Title: generic.Some("A"), ClientID: generic.Some(int64(3))})
		require.NoError(t, err)
		_, err = book.Opportunities.Create(ctx, crm.OpportunityFields{Title: generic.Some("B")})
		require.NoError(t, err)

		got, err := book.Opportunities.List(ctx, generic.Filter{ClientID: 3})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, a, got[0].ID)

		all, err := book.Opportunities.List(ctx, generic.Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
