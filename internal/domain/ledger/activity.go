package ledger

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// ActivityLimit caps the recent-activity view
const ActivityLimit = 50

// ActivityTypeAll disables the type filter
const ActivityTypeAll = "All"

// ActivityFilter narrows the recent-activity view. Zero values disable
// each filter.
type ActivityFilter struct {
	Type      string
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

// RecentActivity merges transactions with one Due row per contact
// receivable, filters by type, start date, end date and search text in
// that order, and returns the newest ActivityLimit rows.
func RecentActivity(transactions []Transaction, contacts []ContactLedger, filter ActivityFilter) []Entry {
	entries := make([]Entry, 0, len(transactions))
	for i := range transactions {
		entries = append(entries, RealTransaction{Transaction: &transactions[i]})
	}
	for _, c := range contacts {
		for _, r := range c.Receivables {
			entries = append(entries, SyntheticDueEntry{
				ContactID:   c.ContactID,
				ContactName: c.Name,
				Receivable:  r,
			})
		}
	}

	if filter.Type != "" && filter.Type != ActivityTypeAll {
		entries = keep(entries, func(e Entry) bool {
			return e.EntryType() == filter.Type
		})
	}
	if filter.StartDate != nil {
		start := *filter.StartDate
		entries = keep(entries, func(e Entry) bool {
			d := e.EntryDate()
			return !d.IsZero() && !d.Before(start)
		})
	}
	if filter.EndDate != nil {
		end := *filter.EndDate
		entries = keep(entries, func(e Entry) bool {
			d := e.EntryDate()
			return !d.IsZero() && !d.After(end)
		})
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		folder := cases.Fold()
		needle := folder.String(q)
		entries = keep(entries, func(e Entry) bool {
			for _, field := range e.searchFields() {
				if field != "" && strings.Contains(folder.String(field), needle) {
					return true
				}
			}
			return false
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EntryDate().After(entries[j].EntryDate())
	})

	if len(entries) > ActivityLimit {
		entries = entries[:ActivityLimit]
	}
	return entries
}

func keep(entries []Entry, pred func(Entry) bool) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}
