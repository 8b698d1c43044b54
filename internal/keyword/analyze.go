package keyword

import "github.com/ppiankov/speclens/internal/model"

// Result bundles the frequency table of a corpus with its derived selections
type Result struct {
	Vocabulary      []string
	Table           *model.FrequencyTable
	Sums            map[string]int
	MostCommon      model.Selection
	Filtered        model.Selection
	MultiCategory   model.Selection
	MostConflicting model.Selection
}

// Analyze runs extraction, aggregation and every selection over sentences
func Analyze(sentences []model.Sentence, sel *Selector) Result {
	vocabulary := Extract(sentences)
	table := Aggregate(sentences, vocabulary)
	sums := SumOfAttributes(table)

	return Result{
		Vocabulary:      vocabulary,
		Table:           table,
		Sums:            sums,
		MostCommon:      sel.MostCommon(table),
		Filtered:        sel.Inclusion(table, sums),
		MultiCategory:   sel.MultiCategory(table, sums),
		MostConflicting: sel.MostConflicting(table, sums),
	}
}
