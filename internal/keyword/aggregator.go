package keyword

import (
	"sort"
	"strings"

	"github.com/ppiankov/speclens/internal/model"
)

// Aggregator counts keyword occurrences per category over a corpus.
// The table it builds is private until Table returns a copy of it.
type Aggregator struct {
	table   *model.FrequencyTable
	lengths []int    // distinct keyword lengths in tokens, ascending
	symbols []string // keywords without letters or digits
}

// NewAggregator creates an aggregator with a zero-filled entry for every vocabulary keyword
func NewAggregator(vocabulary []string) *Aggregator {
	normalized := make([]string, 0, len(vocabulary))
	lengthSet := make(map[int]struct{})
	var symbols []string
	for _, raw := range vocabulary {
		kw := Normalize(raw)
		if kw == "" {
			continue
		}
		normalized = append(normalized, kw)
		if IsSymbol(kw) {
			symbols = append(symbols, kw)
			continue
		}
		lengthSet[strings.Count(kw, " ")+1] = struct{}{}
	}

	lengths := make([]int, 0, len(lengthSet))
	for n := range lengthSet {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)

	return &Aggregator{
		table:   model.NewFrequencyTable(normalized),
		lengths: lengths,
		symbols: symbols,
	}
}

// Process adds one sentence's tagged and untagged keyword occurrences to the table.
// A keyword found in the text more often than it was tagged contributes the
// difference to not_included.
func (a *Aggregator) Process(s model.Sentence) {
	tagged := make(map[string]*[model.TrackedCategoryCount]int)
	for i, kws := range s.Keywords {
		for _, raw := range kws {
			kw := Normalize(raw)
			if _, ok := a.table.Counts[kw]; !ok {
				continue
			}
			if tagged[kw] == nil {
				tagged[kw] = &[model.TrackedCategoryCount]int{}
			}
			tagged[kw][i]++
		}
	}

	textual := a.countInText(s.Text)

	for kw, perCat := range tagged {
		cc := a.table.Counts[kw]
		taggedTotal := 0
		for i, n := range perCat {
			if n == 0 {
				continue
			}
			cc.Add(model.TrackedCategories[i], n)
			taggedTotal += n
		}
		if extra := textual[kw] - taggedTotal; extra > 0 {
			cc.Add(model.NotIncluded, extra)
		}
	}

	for kw, n := range textual {
		if _, ok := tagged[kw]; ok {
			continue
		}
		a.table.Counts[kw].Add(model.NotIncluded, n)
	}
}

// countInText counts vocabulary keywords in the sentence's token stream,
// matching multi-word keywords as contiguous token runs. Symbol keywords are
// counted as non-overlapping substrings of the lower-cased text.
func (a *Aggregator) countInText(text string) map[string]int {
	counts := make(map[string]int)
	if len(a.symbols) > 0 {
		lower := strings.Join(strings.Fields(strings.ToLower(text)), " ")
		for _, sym := range a.symbols {
			if n := strings.Count(lower, sym); n > 0 {
				counts[sym] = n
			}
		}
	}
	tokens := Tokenize(text)
	for _, n := range a.lengths {
		for i := 0; i+n <= len(tokens); i++ {
			gram := strings.Join(tokens[i:i+n], " ")
			if _, ok := a.table.Counts[gram]; ok {
				counts[gram]++
			}
		}
	}
	return counts
}

// Table returns a copy of the accumulated frequency table
func (a *Aggregator) Table() *model.FrequencyTable {
	out := &model.FrequencyTable{
		Keywords: make([]string, len(a.table.Keywords)),
		Counts:   make(map[string]*model.CategoryCounts, len(a.table.Counts)),
	}
	copy(out.Keywords, a.table.Keywords)
	for kw, cc := range a.table.Counts {
		c := *cc
		out.Counts[kw] = &c
	}
	return out
}

// Aggregate builds the frequency table of vocabulary over sentences in a single pass
func Aggregate(sentences []model.Sentence, vocabulary []string) *model.FrequencyTable {
	agg := NewAggregator(vocabulary)
	for _, s := range sentences {
		agg.Process(s)
	}
	return agg.Table()
}

// SumOfAttributes returns each keyword's total count across all categories
func SumOfAttributes(table *model.FrequencyTable) map[string]int {
	sums := make(map[string]int, len(table.Counts))
	for kw, cc := range table.Counts {
		sums[kw] = cc.Total
	}
	return sums
}
