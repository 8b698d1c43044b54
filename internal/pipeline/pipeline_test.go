package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/speclens/internal/keyword"
	"github.com/ppiankov/speclens/internal/model"
)

var header = []interface{}{"Sentence", "Label", "IM_keywords", "Relational_keywords", "Constraint_keywords", "Quotes", "Numbers"}

// shallRows: "shall" tagged relational three times
// and seen once untagged
var shallRows = [][]interface{}{
	{"The server shall respond", 1, "server", "shall", "", "", ""},
	{"The client shall retry 3 times", 1, "client", "shall", "", "", "3"},
	{"Each node shall be named", 1, "node", "shall", "", "", ""},
	{"A server that shall not be trusted", 0, "server", "", "", "", ""},
}

func writeWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	all := append([][]interface{}{header}, rows...)
	for i, row := range all {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cellRef, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close workbook: %v", err)
	}
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.Data.Dir = filepath.Join(dir, "data")
	cfg.Cache.Dir = filepath.Join(dir, "cache")
	cfg.Output.Dir = filepath.Join(dir, "out")
	cfg.Output.Width = 6
	cfg.Output.Height = 5
	cfg.Concurrency.Workers = 2
	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func stat(c model.Category, n int) model.KeywordStat {
	var cc model.CategoryCounts
	cc.Add(c, n)
	return model.KeywordStat{Keyword: c.String(), Counts: cc}
}

func TestKeywordChartName(t *testing.T) {
	tests := []struct {
		filter    model.SampleFilter
		threshold float64
		want      string
	}{
		{model.FilterNone, 0.9, "packml_mostcommonkeywords_unfiltered_threshold0.9_top20words.png"},
		{model.FilterRulesOnly, 0.75, "packml_mostcommonkeywords_filtered_rules_threshold0.75_top20words.png"},
		{model.FilterNonRulesOnly, 1, "packml_mostcommonkeywords_filtered_non_rules_threshold1.0_top20words.png"},
	}

	for _, tt := range tests {
		got := KeywordChartName("PackML", keyword.SelectionMostCommon, tt.filter, tt.threshold, 20)
		if got != tt.want {
			t.Errorf("KeywordChartName(%v, %v) = %q, want %q", tt.filter, tt.threshold, got, tt.want)
		}
	}
}

func TestArtifactNames(t *testing.T) {
	if got := HeatmapName(model.InformationModel, true); got != "information_model_rule_sentence_heatmap.png" {
		t.Errorf("unexpected rule heatmap name %q", got)
	}
	if got := HeatmapName(model.Quotation, false); got != "quotes_non_rule_sentence_heatmap.png" {
		t.Errorf("unexpected non-rule heatmap name %q", got)
	}
	if got := BarChartName("PackML"); got != "PackML.png" {
		t.Errorf("unexpected bar chart name %q", got)
	}
	if got := FormatThreshold(0); got != "0.0" {
		t.Errorf("FormatThreshold(0) = %q", got)
	}
}

func TestChartEntries(t *testing.T) {
	sel := model.Selection{Entries: []model.KeywordStat{
		stat(model.Constraint, 2),
		stat(model.Numeric, 9),
		stat(model.Relational, 5),
	}}

	sorted := ChartEntries(sel, 2, false)
	if len(sorted) != 2 || sorted[0].Counts.Total != 9 || sorted[1].Counts.Total != 5 {
		t.Errorf("expected top 2 by total, got %+v", sorted)
	}

	kept := ChartEntries(sel, 2, true)
	if kept[0].Counts.Total != 2 || kept[1].Counts.Total != 9 {
		t.Errorf("expected selection order preserved, got %+v", kept)
	}

	all := ChartEntries(sel, -1, false)
	if len(all) != 3 || all[0].Counts.Total != 2 {
		t.Errorf("expected every entry in selection order, got %+v", all)
	}

	if sel.Entries[0].Counts.Total != 2 {
		t.Error("ChartEntries must not reorder the selection")
	}
}

func TestKeywordMarkdown_TopNMatchesChart(t *testing.T) {
	rare := stat(model.Relational, 1)
	rare.Keyword = "rare"
	common := stat(model.Relational, 50)
	common.Keyword = "common"

	report := &model.KeywordReport{
		Spec: "packml",
		TopN: 1,
		Filtered: model.Selection{
			Name:    keyword.SelectionFiltered,
			Title:   "Most used keywords, filtered by inclusion",
			Entries: []model.KeywordStat{rare, common},
		},
	}

	md := KeywordMarkdown(report)
	if !strings.Contains(md, "| common | 50 |") {
		t.Errorf("expected the most used keyword in the table, got:\n%s", md)
	}
	if strings.Contains(md, "| rare |") {
		t.Errorf("expected the rarer keyword to be cut, got:\n%s", md)
	}
	if chart := ChartEntries(report.Filtered, report.TopN, false); chart[0].Keyword != "common" {
		t.Errorf("chart and table disagree: chart starts with %q", chart[0].Keyword)
	}
}

func TestKeywordOptions_Validate(t *testing.T) {
	for _, threshold := range []float64{-0.1, 1.5} {
		err := KeywordOptions{Threshold: threshold}.Validate()
		if !errors.Is(err, model.ErrInvalidThreshold) {
			t.Errorf("threshold %v: expected ErrInvalidThreshold, got %v", threshold, err)
		}
	}
	if err := (KeywordOptions{Threshold: 0.9}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAnalyzeKeywords(t *testing.T) {
	sentences := []model.Sentence{
		{Text: "The server shall respond", Rule: true, Keywords: [model.TrackedCategoryCount][]string{1: {"shall"}}},
		{Text: "The client shall retry", Rule: true, Keywords: [model.TrackedCategoryCount][]string{1: {"shall"}}},
		{Text: "Each node shall be named", Rule: true, Keywords: [model.TrackedCategoryCount][]string{1: {"shall"}}},
		{Text: "A server that shall not be trusted", Rule: false},
	}
	spec := model.SpecSource{Name: "PackML", File: "PackML.xlsx"}

	report := AnalyzeKeywords(spec, sentences, KeywordOptions{Threshold: 0.9, TopN: 20})

	if report.Spec != "packml" {
		t.Errorf("expected lower-cased spec key, got %q", report.Spec)
	}
	if len(report.RunID) != 26 {
		t.Errorf("expected a ULID run id, got %q", report.RunID)
	}
	if report.Sentences != 4 || report.Vocabulary != 1 {
		t.Errorf("unexpected sizes: %d sentences, %d keywords", report.Sentences, report.Vocabulary)
	}
	if got := report.Filtered.Keywords(); len(got) != 1 || got[0] != "shall" {
		t.Errorf("expected shall to pass inclusion, got %v", got)
	}
	if len(report.MultiCategory.Entries) != 0 || len(report.MostConflicting.Entries) != 0 {
		t.Error("single-category keyword must not be multi-category or conflicting")
	}

	cc := report.MostCommon.Entries[0].Counts
	if cc.Relational != 3 || cc.NotIncluded != 1 || cc.Total != 4 {
		t.Errorf("unexpected counts for shall: %+v", cc)
	}

	rules := AnalyzeKeywords(spec, sentences, KeywordOptions{Filter: model.FilterRulesOnly, Threshold: 0.9})
	if rules.Sentences != 3 {
		t.Errorf("expected 3 rule sentences, got %d", rules.Sentences)
	}
	if rules.MostCommon.Entries[0].Counts.NotIncluded != 0 {
		t.Error("untagged non-rule occurrence must be filtered out with its sentence")
	}
}

func TestRunKeywords(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, filepath.Join(cfg.Data.Dir, "PackML.xlsx"), shallRows)
	spec, err := cfg.LookupSpec("packml")
	if err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(cfg)
	opts := KeywordOptions{Filter: model.FilterNone, Threshold: 0.9, TopN: 20}
	report, err := p.RunKeywords(context.Background(), spec, opts, cfg.Output.Dir)
	if err != nil {
		t.Fatalf("RunKeywords failed: %v", err)
	}

	// multi-category and conflicting selections are empty and skipped
	if len(report.Charts) != 2 {
		t.Fatalf("expected 2 charts, got %d: %+v", len(report.Charts), report.Charts)
	}
	for _, chart := range report.Charts {
		if _, err := os.Stat(chart.Path); err != nil {
			t.Errorf("chart not written: %v", err)
		}
	}

	want := filepath.Join(cfg.Output.Dir, KeywordDir, "packml_mostcommonkeywords_unfiltered_threshold0.9_top20words.png")
	if report.Charts[0].Path != want {
		t.Errorf("unexpected chart path %q", report.Charts[0].Path)
	}

	base := filepath.Join(cfg.Output.Dir, KeywordDir, KeywordReportName("packml", model.FilterNone, 0.9, 20))
	for _, ext := range []string{".json", ".md", ".html"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("report %s not written: %v", ext, err)
		}
	}

	page, err := os.ReadFile(base + ".html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), `src="packml_mostcommonkeywords_unfiltered_threshold0.9_top20words.png"`) {
		t.Errorf("expected relative image link in page:\n%s", page)
	}
}

func TestLoad_UsesCache(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, filepath.Join(cfg.Data.Dir, "PackML.xlsx"), shallRows)
	spec := model.SpecSource{Name: "PackML", File: "PackML.xlsx"}

	first, err := NewPipeline(cfg).Load(context.Background(), spec)
	if err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	entries, err := os.ReadDir(cfg.Cache.Dir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected a disk cache entry, got %v (%v)", entries, err)
	}

	// a fresh pipeline only shares the disk layer
	second, err := NewPipeline(cfg).Load(context.Background(), spec)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if len(first) != len(second) || first[3].Text != second[3].Text {
		t.Errorf("cached sentences differ: %+v vs %+v", first, second)
	}
}

func TestLoad_ColumnChangeMissesCache(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, filepath.Join(cfg.Data.Dir, "PackML.xlsx"), shallRows)
	spec := model.SpecSource{Name: "PackML", File: "PackML.xlsx"}

	if _, err := NewPipeline(cfg).Load(context.Background(), spec); err != nil {
		t.Fatalf("first load failed: %v", err)
	}

	cfg.Columns.Relational = "Constraint_keywords"
	sentences, err := NewPipeline(cfg).Load(context.Background(), spec)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got := sentences[0].Keywords[model.Relational]; len(got) != 0 {
		t.Errorf("expected relational keywords read from the new column, got %v", got)
	}

	cfg.Columns.Label = "NoSuchColumn"
	_, err = NewPipeline(cfg).Load(context.Background(), spec)
	if !errors.Is(err, model.ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn after the label column changed, got %v", err)
	}
}

func TestLoad_MissingWorkbook(t *testing.T) {
	cfg := testConfig(t)
	_, err := NewPipeline(cfg).Load(context.Background(), model.SpecSource{Name: "Nope", File: "Nope.xlsx"})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func distributionConfig(t *testing.T) *model.Config {
	cfg := testConfig(t)
	cfg.Specs = []model.SpecSource{
		{Name: model.AllSpecs, File: "All.xlsx"},
		{Name: "PackML", File: "PackML.xlsx"},
		{Name: "ISA95", File: "ISA95.xlsx"},
	}
	writeWorkbook(t, filepath.Join(cfg.Data.Dir, "PackML.xlsx"), shallRows)
	writeWorkbook(t, filepath.Join(cfg.Data.Dir, "ISA95.xlsx"), [][]interface{}{
		{"Equipment shall report its state", 1, "equipment, state", "report", "shall", "", ""},
		{"Material lots are tracked", 0, "material lot", "", "", "", ""},
		{"The value 10 is \"nominal\"", 0, "value", "", "", "nominal", "10"},
	})
	return cfg
}

func TestAnalyzeDistributions_All(t *testing.T) {
	cfg := distributionConfig(t)

	report, err := NewPipeline(cfg).AnalyzeDistributions(context.Background(), nil, cfg.Output.Dir)
	if err != nil {
		t.Fatalf("AnalyzeDistributions failed: %v", err)
	}

	if len(report.Groups) != 2 {
		t.Fatalf("expected the merged workbook to be excluded, got %+v", report.Groups)
	}
	if report.Groups[0].Spec != "PackML" || report.Groups[0].Rule != 3 || report.Groups[0].NonRule != 1 {
		t.Errorf("unexpected PackML group: %+v", report.Groups[0])
	}
	if len(report.Heatmaps) != 2*model.TrackedCategoryCount {
		t.Errorf("expected a rule and non-rule heatmap per category, got %d", len(report.Heatmaps))
	}

	for _, name := range []string{
		filepath.Join(BarChartDir, "PackML.png"),
		filepath.Join(BarChartDir, "ISA95.png"),
		filepath.Join(HeatmapDir, "relation_rule_sentence_heatmap.png"),
		filepath.Join(HeatmapDir, "number_non_rule_sentence_heatmap.png"),
		DistributionReportName + ".json",
		DistributionReportName + ".md",
		DistributionReportName + ".html",
	} {
		if _, err := os.Stat(filepath.Join(cfg.Output.Dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestAnalyzeDistributions_SingleCategory(t *testing.T) {
	cfg := distributionConfig(t)
	c := model.Constraint

	report, err := NewPipeline(cfg).AnalyzeDistributions(context.Background(), &c, cfg.Output.Dir)
	if err != nil {
		t.Fatalf("AnalyzeDistributions failed: %v", err)
	}

	if len(report.Heatmaps) != 2 || len(report.Artifacts) != 2 {
		t.Errorf("expected only the two constraint heatmaps, got %d heatmaps and %d artifacts",
			len(report.Heatmaps), len(report.Artifacts))
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, BarChartDir)); !errors.Is(err, fs.ErrNotExist) {
		t.Error("bar charts are only drawn for the full run")
	}
}

func TestBuildDistributionReport_Markdown(t *testing.T) {
	cfg := distributionConfig(t)
	groups, err := NewPipeline(cfg).LoadGroups(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	c := model.Relational
	report := BuildDistributionReport(groups, &c)

	md := DistributionMarkdown(report)
	if !strings.Contains(md, "| PackML | 3 | 1 |") {
		t.Errorf("expected group table row in:\n%s", md)
	}
	if !strings.Contains(md, "## Relation keywords, rule sentences") {
		t.Errorf("expected heatmap section in:\n%s", md)
	}
	// both rule groups tag exactly one relational keyword per sentence
	if !strings.Contains(md, "| ISA95 | 1.00 | |") {
		t.Errorf("expected lower-triangle value in:\n%s", md)
	}
}

func TestMatchSpecs(t *testing.T) {
	specs := model.DefaultConfig().IndividualSpecs()

	all, err := MatchSpecs(specs, nil)
	if err != nil || len(all) != len(specs) {
		t.Fatalf("expected every spec without patterns, got %d (%v)", len(all), err)
	}

	mv, err := MatchSpecs(specs, []string{"MV*"})
	if err != nil {
		t.Fatal(err)
	}
	if len(mv) != 2 || mv[0].Name != "MV1CCM" || mv[1].Name != "MV2AMCM" {
		t.Errorf("unexpected matches %+v", mv)
	}

	pair, err := MatchSpecs(specs, []string{"{isa95,packml}"})
	if err != nil {
		t.Fatal(err)
	}
	if len(pair) != 2 || pair[0].Name != "ISA95" || pair[1].Name != "PackML" {
		t.Errorf("expected registry order, got %+v", pair)
	}

	if _, err := MatchSpecs(specs, []string{"nothing*"}); !errors.Is(err, model.ErrUnknownSpec) {
		t.Errorf("expected ErrUnknownSpec, got %v", err)
	}
	if _, err := MatchSpecs(specs, []string{"[a-"}); err == nil {
		t.Error("expected error for malformed pattern")
	}
}

func TestPipeline_WriteMetrics(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.MetricsFile = filepath.Join(t.TempDir(), "speclens.prom")
	writeWorkbook(t, filepath.Join(cfg.Data.Dir, "PackML.xlsx"), shallRows)

	p := NewPipeline(cfg)
	spec := model.SpecSource{Name: "PackML", File: "PackML.xlsx"}
	if _, err := p.RunKeywords(context.Background(), spec, KeywordOptions{Threshold: 0.9, TopN: 5}, cfg.Output.Dir); err != nil {
		t.Fatal(err)
	}
	if err := p.WriteMetrics(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.Output.MetricsFile)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`speclens_sentences_analyzed_total{filter="unfiltered",spec="packml"} 4`,
		`speclens_document_cache_lookups_total{result="miss"} 1`,
		`speclens_artifacts_written_total{kind="chart"} 2`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %q in metrics:\n%s", want, data)
		}
	}
}
