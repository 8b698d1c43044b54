package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/speclens/internal/model"
	"github.com/ppiankov/speclens/internal/pipeline"
)

var (
	specName      string
	filterSamples bool
	onlyRules     bool
	onlyNonRules  bool
	topN          int
	threshold     float64
	outputPath    string
	runTimeout    time.Duration
)

// keywordsCmd represents the keywords command
var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Analyze keyword frequencies of one specification",
	Long: `Keywords counts, for every keyword of a specification, how often it is tagged
under each category and how often it appears in a sentence without being tagged.

Four charts are written to <output>/keyword_analysis/:
- the most used keywords
- the most used keywords whose untagged ratio is below the threshold
- keywords tagged under at least 3 categories
- the most conflicting keywords (tagged under several categories, seen at least 8 times)

Example:
  speclens keywords --spec packml
  speclens keywords -s isa95 -f --only-rule-sentences -n 30 -t 0.8
  speclens keywords -s all -o ./reports`,
	Args: cobra.NoArgs,
	RunE: runKeywords,
}

func init() {
	rootCmd.AddCommand(keywordsCmd)

	keywordsCmd.Flags().StringVarP(&specName, "spec", "s", "all", "specification to analyze (see 'speclens config show')")
	keywordsCmd.Flags().BoolVarP(&filterSamples, "filter-samples", "f", false, "analyze only rule or only non-rule sentences")
	keywordsCmd.Flags().BoolVar(&onlyRules, "only-rule-sentences", false, "with -f, keep rule sentences")
	keywordsCmd.Flags().BoolVar(&onlyNonRules, "only-non-rule-sentences", false, "with -f, keep non-rule sentences")
	keywordsCmd.Flags().IntVarP(&topN, "top-n", "n", 20, "keywords per chart (-1 for all)")
	keywordsCmd.Flags().Float64VarP(&threshold, "threshold", "t", 0.9, "maximum untagged ratio of an included keyword")
	keywordsCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory (default: output.dir from config)")
	keywordsCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall analysis timeout")
	keywordsCmd.MarkFlagsMutuallyExclusive("only-rule-sentences", "only-non-rule-sentences")
}

// sampleFilter resolves the filtering flags. Requesting filtering without choosing a side,
// or choosing a side without filtering, is a usage error.
func sampleFilter(filter, rules, nonRules bool) (model.SampleFilter, error) {
	switch {
	case rules && nonRules:
		return model.FilterNone, fmt.Errorf("%w: --only-rule-sentences and --only-non-rule-sentences are mutually exclusive", model.ErrFilterFlags)
	case filter && rules:
		return model.FilterRulesOnly, nil
	case filter && nonRules:
		return model.FilterNonRulesOnly, nil
	case filter:
		return model.FilterNone, fmt.Errorf("%w: --filter-samples requires --only-rule-sentences or --only-non-rule-sentences", model.ErrFilterFlags)
	case rules || nonRules:
		return model.FilterNone, fmt.Errorf("%w: --only-rule-sentences and --only-non-rule-sentences require --filter-samples", model.ErrFilterFlags)
	default:
		return model.FilterNone, nil
	}
}

// keywordOptions validates every flag before any workbook is read
func keywordOptions() (pipeline.KeywordOptions, error) {
	filter, err := sampleFilter(filterSamples, onlyRules, onlyNonRules)
	if err != nil {
		return pipeline.KeywordOptions{}, err
	}
	if topN < -1 {
		return pipeline.KeywordOptions{}, fmt.Errorf("--top-n must be -1 or a non-negative count, got %d", topN)
	}
	opts := pipeline.KeywordOptions{Filter: filter, Threshold: threshold, TopN: topN}
	if err := opts.Validate(); err != nil {
		return pipeline.KeywordOptions{}, err
	}
	return opts, nil
}

func runKeywords(cmd *cobra.Command, args []string) error {
	opts, err := keywordOptions()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	spec, err := cfg.LookupSpec(specName)
	if err != nil {
		return err
	}
	outDir := resolveOutput(cfg, outputPath)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s (%s)\n", spec.Name, spec.File)
		fmt.Fprintf(os.Stderr, "Sentences: %s\n", opts.Filter)
		fmt.Fprintf(os.Stderr, "Threshold: %s, top %d\n", pipeline.FormatThreshold(opts.Threshold), opts.TopN)
		fmt.Fprintln(os.Stderr)
	}
	if strings.EqualFold(spec.Name, model.AllSpecs) {
		fmt.Fprintf(os.Stderr, "Analysis of the merged workbook has started. It will take a few minutes.\n")
	}

	start := time.Now()
	p := pipeline.NewPipeline(cfg)
	report, err := p.RunKeywords(ctx, spec, opts, outDir)
	if err != nil {
		return fmt.Errorf("keyword analysis failed: %w", err)
	}
	if err := p.WriteMetrics(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d sentences, %d keywords\n", spec.Name, report.Sentences, report.Vocabulary)
	for _, sel := range report.Selections() {
		fmt.Fprintf(out, "  %-45s %d\n", sel.Title, len(sel.Entries))
	}
	for _, chart := range report.Charts {
		fmt.Fprintf(out, "Image saved to %s\n", chart.Path)
	}
	fmt.Fprintf(out, "Analysis took %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// resolveOutput prefers the flag over the configured output directory
func resolveOutput(cfg *model.Config, flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Output.Dir
}
