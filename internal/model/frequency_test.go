package model

import (
	"errors"
	"math"
	"testing"
)

func TestCategoryCounts_AddKeepsTotal(t *testing.T) {
	var cc CategoryCounts
	for i, c := range AllCategories {
		cc.Add(c, i+1)
	}

	sum := 0
	for _, c := range AllCategories {
		sum += cc.Get(c)
	}
	if cc.Total != sum {
		t.Errorf("Expected total %d, got %d", sum, cc.Total)
	}
	if cc.Total != 21 {
		t.Errorf("Expected total 21, got %d", cc.Total)
	}

	cc.Add(Category(99), 5)
	if cc.Total != 21 {
		t.Errorf("Unknown category must not change the total, got %d", cc.Total)
	}
}

func TestCategoryCounts_NonZeroTrackedIgnoresNotIncluded(t *testing.T) {
	cc := CategoryCounts{}
	cc.Add(Relational, 3)
	cc.Add(NotIncluded, 1)

	if got := cc.NonZeroTracked(); got != 1 {
		t.Errorf("Expected 1 non-zero tracked category, got %d", got)
	}
}

func TestCategoryCounts_Dominant(t *testing.T) {
	cc := CategoryCounts{}
	cc.Add(InformationModel, 4)
	cc.Add(Constraint, 4)
	cc.Add(NotIncluded, 2)

	dominant, weight := cc.Dominant()
	if len(dominant) != 2 || dominant[0] != InformationModel || dominant[1] != Constraint {
		t.Errorf("Expected [information_model constraint], got %v", dominant)
	}
	if math.Abs(weight-0.4) > 1e-9 {
		t.Errorf("Expected weight 0.4, got %f", weight)
	}

	empty := CategoryCounts{}
	dominant, weight = empty.Dominant()
	if dominant != nil || weight != 0 {
		t.Errorf("Expected no dominant categories for zero total, got %v %f", dominant, weight)
	}
}

func TestCategoryCounts_Ratios(t *testing.T) {
	cc := CategoryCounts{}
	cc.Add(Numeric, 1)
	cc.Add(NotIncluded, 3)

	ratios := cc.Ratios()
	if len(ratios) != len(AllCategories) {
		t.Fatalf("Expected %d ratios, got %d", len(AllCategories), len(ratios))
	}
	if ratios[Numeric] != 0.25 || ratios[NotIncluded] != 0.75 {
		t.Errorf("Unexpected ratios: %v", ratios)
	}
	if got := cc.NotIncludedRatio(); got != 0.75 {
		t.Errorf("Expected not_included ratio 0.75, got %f", got)
	}
}

func TestNewFrequencyTable_DeduplicatesVocabulary(t *testing.T) {
	table := NewFrequencyTable([]string{"a", "b", "a"})
	if table.Len() != 2 {
		t.Fatalf("Expected 2 keywords, got %d", table.Len())
	}
	if _, ok := table.Get("c"); ok {
		t.Error("Expected missing keyword lookup to fail")
	}
}

func TestSampleFilter_Apply(t *testing.T) {
	sentences := []Sentence{{Text: "a", Rule: true}, {Text: "b"}, {Text: "c", Rule: true}}

	if got := FilterNone.Apply(sentences); len(got) != 3 {
		t.Errorf("Expected 3 sentences, got %d", len(got))
	}
	if got := FilterRulesOnly.Apply(sentences); len(got) != 2 || got[1].Text != "c" {
		t.Errorf("Unexpected rule sentences: %v", got)
	}
	if got := FilterNonRulesOnly.Apply(sentences); len(got) != 1 || got[0].Text != "b" {
		t.Errorf("Unexpected non-rule sentences: %v", got)
	}
}

func TestConfig_LookupSpec(t *testing.T) {
	cfg := DefaultConfig()

	spec, err := cfg.LookupSpec("PACKML")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if spec.File != "PackML.xlsx" {
		t.Errorf("Expected PackML.xlsx, got %s", spec.File)
	}

	_, err = cfg.LookupSpec("opcua")
	if !errors.Is(err, ErrUnknownSpec) {
		t.Errorf("Expected ErrUnknownSpec, got %v", err)
	}

	for _, s := range cfg.IndividualSpecs() {
		if s.Name == AllSpecs {
			t.Error("IndividualSpecs must not include the merged workbook")
		}
	}
}

func TestParseCategory(t *testing.T) {
	for name, want := range map[string]Category{
		"information_model": InformationModel,
		"relation":          Relational,
		"constraint":        Constraint,
		"quotes":            Quotation,
		"number":            Numeric,
	} {
		got, ok := ParseCategory(name)
		if !ok || got != want {
			t.Errorf("ParseCategory(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := ParseCategory("colour"); ok {
		t.Error("Expected unknown category to fail")
	}
}
