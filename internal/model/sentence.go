package model

// Sentence is one annotated row of a specification workbook.
// Keyword lists are normalized by the reader and never mutated afterwards.
type Sentence struct {
	Text     string                         `json:"text"`
	Rule     bool                           `json:"rule"`
	Keywords [TrackedCategoryCount][]string `json:"keywords"`
}

// Counts returns the number of tagged keywords per tracked category
func (s Sentence) Counts() [TrackedCategoryCount]int {
	var counts [TrackedCategoryCount]int
	for i, kws := range s.Keywords {
		counts[i] = len(kws)
	}
	return counts
}

// SampleFilter selects which sentences take part in an analysis
type SampleFilter int

const (
	FilterNone         SampleFilter = iota // All sentences
	FilterRulesOnly                        // Only rule sentences (label 1)
	FilterNonRulesOnly                     // Only non-rule sentences (label 0)
)

func (f SampleFilter) String() string {
	switch f {
	case FilterRulesOnly:
		return "rules"
	case FilterNonRulesOnly:
		return "non_rules"
	default:
		return "unfiltered"
	}
}

// MarshalText encodes the filter by name
func (f SampleFilter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Apply returns the sentences admitted by the filter, in input order
func (f SampleFilter) Apply(sentences []Sentence) []Sentence {
	if f == FilterNone {
		return sentences
	}
	out := make([]Sentence, 0, len(sentences))
	for _, s := range sentences {
		if s.Rule == (f == FilterRulesOnly) {
			out = append(out, s)
		}
	}
	return out
}
