package services

import (
	"sort"
	"time"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
)

// ApplySort returns a reordered copy of list. See ApplySortAt.
func ApplySort(list []domain.CheatsheetSummary, key domain.SortKey) []domain.CheatsheetSummary {
	return ApplySortAt(list, key, time.Now())
}

// ApplySortAt returns a reordered copy of list. Relevance, and any unrecognised key, keeps the
// input order. Popularity and newest sort descending and stably. Entries without an update time
// count as updated at now, so they sort ahead of everything dated in the past.
func ApplySortAt(list []domain.CheatsheetSummary, key domain.SortKey, now time.Time) []domain.CheatsheetSummary {
	out := make([]domain.CheatsheetSummary, len(list))
	copy(out, list)

	switch key {
	case domain.SortPopularity:
		sortByPopularity(out)
	case domain.SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return updatedAt(out[i], now).After(updatedAt(out[j], now))
		})
	}
	return out
}

func sortByPopularity(list []domain.CheatsheetSummary) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Popularity > list[j].Popularity
	})
}

func updatedAt(s domain.CheatsheetSummary, now time.Time) time.Time {
	if s.UpdatedAt == nil {
		return now
	}
	return *s.UpdatedAt
}
