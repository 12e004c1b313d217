/*
Package seed fills a database with realistic demo records.

PURPOSE:
  Creates N parties, N opportunities and N action items through the
  repositories, the same path every other caller uses, so seeded rows
  obey the same defaults and validation.

HOW SEEDING WORKS:
 1. Create N parties with random names, contacts and statuses
 2. Create N opportunities; 80% link to a party created in step 1
 3. Create N action items; 70% link to a party, 50% to an opportunity
 4. Progress is reported every 10 records of each kind
 5. A record that fails is reported and skipped; seeding continues

NOTE:
  Seeding adds to whatever is already stored. It never deletes.

USAGE:
  res, err := seed.Run(ctx, store.Book(), seed.Options{N: 100})

SEE ALSO:
  - cli/seed.go: The seed command
*/
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/records-engine/crm"
	"github.com/warp/records-engine/generic"
)

// DefaultCount is the number of records of each kind created when
// Options.N is zero.
const DefaultCount = 100

// progressEvery is how often progress is reported.
const progressEvery = 10

// Options configures a seeding run.
type Options struct {
	// N is the number of records created per kind.
	N int

	// Rand drives every random choice. Nil uses a time-seeded source.
	Rand *rand.Rand

	// Now anchors due dates. Nil uses time.Now.
	Now func() time.Time

	// Logf receives progress and per-record failures. Nil discards them.
	Logf func(format string, args ...any)
}

// Result lists the ids created, per kind.
type Result struct {
	Parties       []int64
	Opportunities []int64
	ActionItems   []int64
	Failed        int
}

// Run seeds book. It returns an error only when ctx is cancelled; record
// failures are counted in Result.Failed.
func Run(ctx context.Context, book *crm.Book, opts Options) (*Result, error) {
	s := newSeeder(opts)
	res := &Result{}

	s.logf("Creating %d clients...", s.n)
	for i := 0; i < s.n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		id, err := book.Parties.Create(ctx, s.party())
		if err != nil {
			s.logf("  failed to create client %d: %v", i+1, err)
			res.Failed++
			continue
		}
		res.Parties = append(res.Parties, id)
		s.progress(i, "clients")
	}

	s.logf("Creating %d deals...", s.n)
	for i := 0; i < s.n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		id, err := book.Opportunities.Create(ctx, s.opportunity(res.Parties))
		if err != nil {
			s.logf("  failed to create deal %d: %v", i+1, err)
			res.Failed++
			continue
		}
		res.Opportunities = append(res.Opportunities, id)
		s.progress(i, "deals")
	}

	s.logf("Creating %d tasks...", s.n)
	for i := 0; i < s.n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		id, err := book.ActionItems.Create(ctx, s.actionItem(res.Parties, res.Opportunities))
		if err != nil {
			s.logf("  failed to create task %d: %v", i+1, err)
			res.Failed++
			continue
		}
		res.ActionItems = append(res.ActionItems, id)
		s.progress(i, "tasks")
	}

	s.logf("Done!")
	return res, nil
}

// =============================================================================
// RECORD GENERATORS
// =============================================================================

type seeder struct {
	n    int
	rnd  *rand.Rand
	now  func() time.Time
	logf func(format string, args ...any)
}

func newSeeder(opts Options) *seeder {
	s := &seeder{n: opts.N, rnd: opts.Rand, now: opts.Now, logf: opts.Logf}
	if s.n <= 0 {
		s.n = DefaultCount
	}
	if s.rnd == nil {
		seed := uint64(time.Now().UnixNano())
		s.rnd = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logf == nil {
		s.logf = func(string, ...any) {}
	}
	return s
}

func (s *seeder) progress(i int, kind string) {
	if (i+1)%progressEvery == 0 {
		s.logf("  created %d/%d %s", i+1, s.n, kind)
	}
}

func (s *seeder) party() crm.PartyFields {
	first := pick(s.rnd, firstNames)
	last := pick(s.rnd, lastNames)
	f := crm.PartyFields{
		Name:   generic.Some(first + " " + last),
		Email:  generic.Some(fmt.Sprintf("%s.%d@%s", transliterate(last), s.rnd.IntN(1000), pick(s.rnd, mailDomains))),
		Phone:  generic.Some(fmt.Sprintf("+7 9%02d %03d-%02d-%02d", s.rnd.IntN(100), s.rnd.IntN(1000), s.rnd.IntN(100), s.rnd.IntN(100))),
		Status: generic.Some(pick(s.rnd, []string{crm.PartyActive, crm.PartyArchived})),
	}
	if s.chance(0.7) {
		f.Company = generic.Some(pick(s.rnd, companies))
	}
	return f
}

func (s *seeder) opportunity(parties []int64) crm.OpportunityFields {
	// Amount in kopecks between 10 000 and 1 000 000, two decimal places.
	cents := 1_000_000 + s.rnd.Int64N(99_000_000)

	f := crm.OpportunityFields{
		Title:    generic.Some("Deal " + pick(s.rnd, dealWords)),
		Amount:   generic.Some(decimal.New(cents, -2)),
		Currency: generic.Some(pick(s.rnd, currencies)),
		Status: generic.Some(pick(s.rnd, []string{
			crm.OpportunityNew, crm.OpportunityInProgress, crm.OpportunityClosed, crm.OpportunityCancelled,
		})),
	}
	if len(parties) > 0 && s.chance(0.8) {
		f.ClientID = generic.Some(pick(s.rnd, parties))
	}
	if s.chance(0.5) {
		d := s.now().AddDate(0, 0, s.rnd.IntN(120))
		f.CloseDate = generic.Some(generic.NewDate(d.Date()))
	}
	return f
}

func (s *seeder) actionItem(parties, opportunities []int64) crm.ActionItemFields {
	f := crm.ActionItemFields{
		Title: generic.Some(pick(s.rnd, taskVerbs) + " " + pick(s.rnd, taskObjects)),
		Done:  generic.Some(s.chance(0.5)),
	}
	if s.chance(0.7) {
		f.Description = generic.Some(pick(s.rnd, descriptions))
	}
	if s.chance(0.7) {
		// Due between 30 days ago and 60 days ahead.
		d := s.now().AddDate(0, 0, s.rnd.IntN(91)-30)
		f.DueDate = generic.Some(generic.NewDate(d.Date()))
	}
	if len(parties) > 0 && s.chance(0.7) {
		f.ClientID = generic.Some(pick(s.rnd, parties))
	}
	if len(opportunities) > 0 && s.chance(0.5) {
		f.DealID = generic.Some(pick(s.rnd, opportunities))
	}
	return f
}

func (s *seeder) chance(p float64) bool {
	return s.rnd.Float64() < p
}

// Helper functions

func pick[T any](rnd *rand.Rand, items []T) T {
	return items[rnd.IntN(len(items))]
}

var translit = strings.NewReplacer(
	"а", "a", "б", "b", "в", "v", "г", "g", "д", "d", "е", "e", "ж", "zh",
	"з", "z", "и", "i", "й", "y", "к", "k", "л", "l", "м", "m", "н", "n",
	"о", "o", "п", "p", "р", "r", "с", "s", "т", "t", "у", "u", "ф", "f",
	"х", "kh", "ц", "ts", "ч", "ch", "ш", "sh", "щ", "shch", "ы", "y",
	"ь", "", "ъ", "", "э", "e", "ю", "yu", "я", "ya",
)

func transliterate(s string) string {
	return translit.Replace(generic.Fold(s))
}
