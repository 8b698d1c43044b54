package model

import "time"

// KeywordReport is the result of one keyword-frequency analysis run
type KeywordReport struct {
	RunID       string       `json:"run_id"`       // ULID of the run
	Spec        string       `json:"spec"`         // Specification short-name (e.g., "packml")
	SourceFile  string       `json:"source_file"`  // Workbook the sentences were read from
	GeneratedAt time.Time    `json:"generated_at"` // When the analysis finished
	Filter      SampleFilter `json:"filter"`       // Which sentences took part
	Threshold   float64      `json:"threshold"`    // Inclusion threshold
	TopN        int          `json:"top_n"`        // Display cutoff used for charts

	Sentences  int `json:"sentences"`  // Sentences analyzed after filtering
	Vocabulary int `json:"vocabulary"` // Distinct keywords

	MostCommon      Selection `json:"most_common"`
	Filtered        Selection `json:"filtered"`
	MultiCategory   Selection `json:"multi_category"`
	MostConflicting Selection `json:"most_conflicting"`

	Charts []Artifact `json:"charts,omitempty"` // Rendered images
}

// Selections returns the four selections in rendering order
func (r *KeywordReport) Selections() []Selection {
	return []Selection{r.MostCommon, r.Filtered, r.MultiCategory, r.MostConflicting}
}

// Artifact is a file written by the renderer
type Artifact struct {
	Kind string `json:"kind"` // chart, heatmap, histogram
	Name string `json:"name"`
	Path string `json:"path"`
}

// GroupSummary describes the size of the rule/non-rule partition of one specification
type GroupSummary struct {
	Spec    string `json:"spec"`
	Rule    int    `json:"rule_sentences"`
	NonRule int    `json:"non_rule_sentences"`
}

// HeatmapSummary is the similarity matrix of one category across specifications
type HeatmapSummary struct {
	Category Category    `json:"category"`
	Rule     bool        `json:"rule"`
	Labels   []string    `json:"labels"`
	Matrix   [][]float64 `json:"matrix"`
}

// DistributionReport is the result of one distribution analysis run
type DistributionReport struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Groups      []GroupSummary   `json:"groups"`
	Heatmaps    []HeatmapSummary `json:"heatmaps"`
	Artifacts   []Artifact       `json:"artifacts,omitempty"`
}
