package model

// CategoryCounts holds the per-category occurrence counts of one keyword.
// Total always equals the sum of the six category fields when updated through Add.
type CategoryCounts struct {
	InformationModel int `json:"information_model"`
	Relational       int `json:"relational"`
	Constraint       int `json:"constraint"`
	Quotation        int `json:"quotation"`
	Numeric          int `json:"numeric"`
	NotIncluded      int `json:"not_included"`
	Total            int `json:"total"`
}

// Get returns the count recorded under c
func (cc CategoryCounts) Get(c Category) int {
	switch c {
	case InformationModel:
		return cc.InformationModel
	case Relational:
		return cc.Relational
	case Constraint:
		return cc.Constraint
	case Quotation:
		return cc.Quotation
	case Numeric:
		return cc.Numeric
	case NotIncluded:
		return cc.NotIncluded
	default:
		return 0
	}
}

// Add increments the count for c by n and keeps Total in sync
func (cc *CategoryCounts) Add(c Category, n int) {
	switch c {
	case InformationModel:
		cc.InformationModel += n
	case Relational:
		cc.Relational += n
	case Constraint:
		cc.Constraint += n
	case Quotation:
		cc.Quotation += n
	case Numeric:
		cc.Numeric += n
	case NotIncluded:
		cc.NotIncluded += n
	default:
		return
	}
	cc.Total += n
}

// NonZeroTracked returns how many of the five tracked categories have a positive count
func (cc CategoryCounts) NonZeroTracked() int {
	n := 0
	for _, c := range TrackedCategories {
		if cc.Get(c) > 0 {
			n++
		}
	}
	return n
}

// NotIncludedRatio returns not_included/total, or 0 when the total is zero
func (cc CategoryCounts) NotIncludedRatio() float64 {
	if cc.Total == 0 {
		return 0
	}
	return float64(cc.NotIncluded) / float64(cc.Total)
}

// Ratios returns each category's share of the total in AllCategories order
func (cc CategoryCounts) Ratios() []float64 {
	out := make([]float64, len(AllCategories))
	if cc.Total == 0 {
		return out
	}
	for i, c := range AllCategories {
		out[i] = float64(cc.Get(c)) / float64(cc.Total)
	}
	return out
}

// Dominant returns the categories tied for the maximum count, in AllCategories order,
// and the dominance weight max/total. A zero total yields no categories and weight 0.
func (cc CategoryCounts) Dominant() ([]Category, float64) {
	if cc.Total == 0 {
		return nil, 0
	}
	max := 0
	for _, c := range AllCategories {
		if v := cc.Get(c); v > max {
			max = v
		}
	}
	var dominant []Category
	for _, c := range AllCategories {
		if cc.Get(c) == max {
			dominant = append(dominant, c)
		}
	}
	return dominant, float64(max) / float64(cc.Total)
}

// FrequencyTable maps every keyword of a vocabulary to its category breakdown.
// Keywords keeps first-seen order; Counts has an entry for each of them.
type FrequencyTable struct {
	Keywords []string                   `json:"keywords"`
	Counts   map[string]*CategoryCounts `json:"counts"`
}

// NewFrequencyTable creates a zero-filled table for the given vocabulary
func NewFrequencyTable(vocabulary []string) *FrequencyTable {
	t := &FrequencyTable{
		Keywords: make([]string, 0, len(vocabulary)),
		Counts:   make(map[string]*CategoryCounts, len(vocabulary)),
	}
	for _, kw := range vocabulary {
		if _, ok := t.Counts[kw]; ok {
			continue
		}
		t.Keywords = append(t.Keywords, kw)
		t.Counts[kw] = &CategoryCounts{}
	}
	return t
}

// Len returns the number of keywords in the table
func (t *FrequencyTable) Len() int {
	return len(t.Keywords)
}

// Get returns a copy of the counts for keyword
func (t *FrequencyTable) Get(keyword string) (CategoryCounts, bool) {
	cc, ok := t.Counts[keyword]
	if !ok {
		return CategoryCounts{}, false
	}
	return *cc, true
}

// KeywordStat is one row of a selection
type KeywordStat struct {
	Keyword  string         `json:"keyword"`
	Counts   CategoryCounts `json:"counts"`
	Dominant []Category     `json:"dominant,omitempty"` // Set only by the conflict selection
	Weight   float64        `json:"dominance_weight,omitempty"`
}

// Selection is an ordered subset of a frequency table
type Selection struct {
	Name    string        `json:"name"`
	Title   string        `json:"title"`
	Entries []KeywordStat `json:"entries"`
}

// Top returns the first n entries; a negative n returns all of them
func (s Selection) Top(n int) []KeywordStat {
	if n < 0 || n >= len(s.Entries) {
		return s.Entries
	}
	return s.Entries[:n]
}

// Keywords returns the selected keywords in selection order
func (s Selection) Keywords() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Keyword
	}
	return out
}
