package keyword

import (
	"sort"

	"github.com/ppiankov/speclens/internal/model"
)

// Selection names, also used as output filename prefixes
const (
	SelectionMostCommon      = "mostcommonkeywords"
	SelectionFiltered        = "filtered-mostcommonwords"
	SelectionMultiCategory   = "multiple-category-keywords"
	SelectionMostConflicting = "most-conflicting-keywords"
)

// Default selection parameters
const (
	DefaultMinCategories         = 3 // multi-category: tagged under at least 3 categories
	DefaultMinConflictCategories = 2 // conflicting: tagged under at least 2 categories
	DefaultMinConflictEvidence   = 8 // conflicting: seen at least 8 times
)

// Selector derives filtered views of a frequency table
type Selector struct {
	Threshold             float64 // keep keywords whose not_included ratio is below this
	MinCategories         int
	MinConflictCategories int
	MinConflictEvidence   int
}

// NewSelector creates a selector with the given inclusion threshold and default floors
func NewSelector(threshold float64) *Selector {
	return &Selector{
		Threshold:             threshold,
		MinCategories:         DefaultMinCategories,
		MinConflictCategories: DefaultMinConflictCategories,
		MinConflictEvidence:   DefaultMinConflictEvidence,
	}
}

// included reports whether kw has a non-zero total and a not_included ratio below the threshold.
// Zero totals are excluded here so no ratio is ever computed over zero.
func (s *Selector) included(cc *model.CategoryCounts, sum int) bool {
	if sum == 0 {
		return false
	}
	return float64(cc.NotIncluded)/float64(sum) < s.Threshold
}

// MostCommon returns every keyword of the table ordered by total descending
func (s *Selector) MostCommon(table *model.FrequencyTable) model.Selection {
	entries := make([]model.KeywordStat, 0, table.Len())
	for _, kw := range table.Keywords {
		entries = append(entries, model.KeywordStat{Keyword: kw, Counts: *table.Counts[kw]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return ByTotalDesc(entries[i], entries[j])
	})
	return model.Selection{
		Name:    SelectionMostCommon,
		Title:   "Most used keywords",
		Entries: entries,
	}
}

// Inclusion keeps keywords that were assigned to a tracked category often enough.
// Table order is preserved.
func (s *Selector) Inclusion(table *model.FrequencyTable, sums map[string]int) model.Selection {
	entries := make([]model.KeywordStat, 0)
	for _, kw := range table.Keywords {
		cc := table.Counts[kw]
		if !s.included(cc, sums[kw]) {
			continue
		}
		entries = append(entries, model.KeywordStat{Keyword: kw, Counts: *cc})
	}
	return model.Selection{
		Name:    SelectionFiltered,
		Title:   "Most used keywords, filtered by inclusion",
		Entries: entries,
	}
}

// MultiCategory keeps included keywords tagged under at least MinCategories tracked
// categories, ordered by total descending
func (s *Selector) MultiCategory(table *model.FrequencyTable, sums map[string]int) model.Selection {
	entries := make([]model.KeywordStat, 0)
	for _, kw := range table.Keywords {
		cc := table.Counts[kw]
		if !s.included(cc, sums[kw]) || cc.NonZeroTracked() < s.MinCategories {
			continue
		}
		entries = append(entries, model.KeywordStat{Keyword: kw, Counts: *cc})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return ByTotalDesc(entries[i], entries[j])
	})
	return model.Selection{
		Name:    SelectionMultiCategory,
		Title:   "Keywords assigned to more than 2 categories",
		Entries: entries,
	}
}

// MostConflicting keeps included keywords tagged under at least MinConflictCategories
// tracked categories and seen at least MinConflictEvidence times. The least decisive
// keywords (lowest dominance weight) come first.
func (s *Selector) MostConflicting(table *model.FrequencyTable, sums map[string]int) model.Selection {
	entries := make([]model.KeywordStat, 0)
	for _, kw := range table.Keywords {
		cc := table.Counts[kw]
		sum := sums[kw]
		if !s.included(cc, sum) {
			continue
		}
		if cc.NonZeroTracked() < s.MinConflictCategories || sum < s.MinConflictEvidence {
			continue
		}
		dominant, weight := cc.Dominant()
		entries = append(entries, model.KeywordStat{
			Keyword:  kw,
			Counts:   *cc,
			Dominant: dominant,
			Weight:   weight,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return ByConflict(entries[i], entries[j])
	})
	return model.Selection{
		Name:    SelectionMostConflicting,
		Title:   "Most conflicting keywords",
		Entries: entries,
	}
}

// ByTotalDesc orders keyword stats by total count, highest first
func ByTotalDesc(a, b model.KeywordStat) bool {
	return a.Counts.Total > b.Counts.Total
}

// ByConflict orders keyword stats by dominance weight ascending, then by the
// dominant category set compared name by name
func ByConflict(a, b model.KeywordStat) bool {
	if a.Weight != b.Weight {
		return a.Weight < b.Weight
	}
	return CompareCategorySets(a.Dominant, b.Dominant) < 0
}

// CompareCategorySets compares two category sets element-wise by name; a set that is a
// prefix of the other sorts first
func CompareCategorySets(a, b []model.Category) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		an, bn := a[i].String(), b[i].String()
		if an < bn {
			return -1
		}
		if an > bn {
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
