// Package distribution compares per-sentence keyword counts of rule and non-rule
// sentences, within one specification and across specifications.
package distribution

import "github.com/ppiankov/speclens/internal/model"

// Group holds, for each tracked category, the per-sentence keyword counts of one sentence group
type Group struct {
	Size   int                               `json:"size"`
	Counts [model.TrackedCategoryCount][]int `json:"counts"`
}

// Category returns the per-sentence counts for c; not_included has none
func (g Group) Category(c model.Category) []int {
	if int(c) < 0 || int(c) >= model.TrackedCategoryCount {
		return nil
	}
	return g.Counts[c]
}

// Groups is the rule/non-rule partition of one specification
type Groups struct {
	Spec    string `json:"spec"`
	Rule    Group  `json:"rule"`
	NonRule Group  `json:"non_rule"`
}

// Group returns the rule or non-rule group
func (g Groups) Group(rule bool) Group {
	if rule {
		return g.Rule
	}
	return g.NonRule
}

// Collect partitions sentences by label and records each sentence's keyword counts.
// Every sequence has one entry per sentence of its group, in input order.
func Collect(spec string, sentences []model.Sentence) Groups {
	groups := Groups{Spec: spec}
	for i := range groups.Rule.Counts {
		groups.Rule.Counts[i] = make([]int, 0)
		groups.NonRule.Counts[i] = make([]int, 0)
	}

	for _, s := range sentences {
		target := &groups.NonRule
		if s.Rule {
			target = &groups.Rule
		}
		target.Size++
		for i, n := range s.Counts() {
			target.Counts[i] = append(target.Counts[i], n)
		}
	}

	return groups
}
