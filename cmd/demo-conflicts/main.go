// Demo program showing conflicting-keyword detection on a small in-memory corpus.
// No workbook or output directory is needed.
package main

import (
	"fmt"
	"strings"

	"github.com/ppiankov/speclens/internal/distribution"
	"github.com/ppiankov/speclens/internal/keyword"
	"github.com/ppiankov/speclens/internal/model"
)

// tagged builds a sentence whose keywords are given per category
func tagged(text string, rule bool, kws map[model.Category][]string) model.Sentence {
	s := model.Sentence{Text: text, Rule: rule}
	for c, list := range kws {
		s.Keywords[c] = list
	}
	return s
}

func corpus() []model.Sentence {
	var out []model.Sentence
	// "state" is tagged as an information-model element in rule sentences...
	for i := 0; i < 6; i++ {
		out = append(out, tagged(fmt.Sprintf("The machine shall report its state every %d seconds", i+1), true,
			map[model.Category][]string{
				model.InformationModel: {"machine", "state"},
				model.Constraint:       {"shall"},
				model.Numeric:          {fmt.Sprint(i + 1)},
			}))
	}
	// ...and as a relation or quotation elsewhere
	for i := 0; i < 4; i++ {
		out = append(out, tagged("A transition changes the state of the unit", false,
			map[model.Category][]string{
				model.Relational:       {"state"},
				model.InformationModel: {"unit"},
			}))
	}
	out = append(out,
		tagged(`The "Idle" state is entered after reset`, true, map[model.Category][]string{
			model.Quotation:  {"idle"},
			model.Relational: {"state"},
			model.Constraint: {"after"},
		}),
		tagged("The state machine is described in the annex", false, nil),
	)
	return out
}

func main() {
	fmt.Println("=== Conflicting Keyword Detection Demo ===")
	fmt.Println()

	sentences := corpus()
	result := keyword.Analyze(sentences, keyword.NewSelector(0.9))

	fmt.Printf("Corpus: %d sentences, %d distinct keywords\n\n", len(sentences), len(result.Vocabulary))

	for _, sel := range []model.Selection{result.MostCommon, result.Filtered, result.MultiCategory, result.MostConflicting} {
		fmt.Println(sel.Title)
		fmt.Println(strings.Repeat("-", 60))
		if len(sel.Entries) == 0 {
			fmt.Println("  (none)")
		}
		for _, e := range sel.Top(10) {
			fmt.Printf("  %-12s total %3d  IM %2d  REL %2d  CON %2d  QUO %2d  NUM %2d  untagged %2d",
				e.Keyword, e.Counts.Total,
				e.Counts.InformationModel, e.Counts.Relational, e.Counts.Constraint,
				e.Counts.Quotation, e.Counts.Numeric, e.Counts.NotIncluded)
			if len(e.Dominant) > 0 {
				fmt.Printf("  dominant %v (%.2f)", e.Dominant, e.Weight)
			}
			fmt.Println()
		}
		fmt.Println()
	}

	groups := distribution.Collect("demo", sentences)
	fmt.Printf("Rule sentences: %d, non-rule sentences: %d\n", groups.Rule.Size, groups.NonRule.Size)
	for _, c := range model.TrackedCategories {
		rule := distribution.Density(groups.Rule, c)
		nonRule := distribution.Density(groups.NonRule, c)
		fmt.Printf("  %-20s rule/non-rule similarity %.2f\n", c.Title(), distribution.CosineSimilarity(rule, nonRule))
	}
}
