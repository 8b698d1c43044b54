package pipeline

import (
	"strconv"
	"strings"

	"github.com/ppiankov/speclens/internal/model"
)

// Output subdirectories and report names
const (
	KeywordDir             = "keyword_analysis"
	BarChartDir            = "distribution_barchart"
	HeatmapDir             = "distribution_heatmap"
	DistributionReportName = "distribution_report"
)

// KeywordChartName returns the image name of one keyword selection chart, e.g.
// "packml_mostcommonkeywords_filtered_rules_threshold0.9_top20words.png"
func KeywordChartName(spec, prefix string, filter model.SampleFilter, threshold float64, topN int) string {
	return keywordBase(spec, prefix, filter, threshold) + "_top" + strconv.Itoa(topN) + "words.png"
}

// KeywordReportName returns the extensionless name of the reports of one keyword run
func KeywordReportName(spec string, filter model.SampleFilter, threshold float64, topN int) string {
	return keywordBase(spec, "report", filter, threshold) + "_top" + strconv.Itoa(topN)
}

func keywordBase(spec, prefix string, filter model.SampleFilter, threshold float64) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(spec))
	b.WriteString("_")
	b.WriteString(prefix)
	switch filter {
	case model.FilterRulesOnly:
		b.WriteString("_filtered_rules")
	case model.FilterNonRulesOnly:
		b.WriteString("_filtered_non_rules")
	default:
		b.WriteString("_unfiltered")
	}
	b.WriteString("_threshold")
	b.WriteString(FormatThreshold(threshold))
	return b.String()
}

// FormatThreshold renders a threshold with at least one decimal place (1 → "1.0")
func FormatThreshold(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// BarChartName returns the image name of a specification's distribution bar chart
func BarChartName(spec string) string {
	return spec + ".png"
}

// HeatmapName returns the image name of one category's rule or non-rule heatmap
func HeatmapName(c model.Category, rule bool) string {
	if rule {
		return c.Entity() + "_rule_sentence_heatmap.png"
	}
	return c.Entity() + "_non_rule_sentence_heatmap.png"
}
