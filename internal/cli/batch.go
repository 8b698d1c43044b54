package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/speclens/internal/pipeline"
)

var (
	concurrency  int
	batchTimeout time.Duration
	specPatterns []string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the keyword analysis for every specification in parallel",
	Long: `Batch runs the keyword analysis for every registered specification except
the merged workbook:
- Specifications are processed concurrently with a configurable worker count
- Each specification gets its own charts and reports
- A failure in one specification does not stop the others

Example:
  speclens batch
  speclens batch --concurrency 8 -f --only-rule-sentences
  speclens batch -n 30 -t 0.8 -o ./reports
  speclens batch --match 'mv*' --match packml`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringSliceVar(&specPatterns, "match", nil, "only specifications whose name matches this glob (repeatable)")

	// Same analysis flags as the keywords command
	batchCmd.Flags().BoolVarP(&filterSamples, "filter-samples", "f", false, "analyze only rule or only non-rule sentences")
	batchCmd.Flags().BoolVar(&onlyRules, "only-rule-sentences", false, "with -f, keep rule sentences")
	batchCmd.Flags().BoolVar(&onlyNonRules, "only-non-rule-sentences", false, "with -f, keep non-rule sentences")
	batchCmd.Flags().IntVarP(&topN, "top-n", "n", 20, "keywords per chart (-1 for all)")
	batchCmd.Flags().Float64VarP(&threshold, "threshold", "t", 0.9, "maximum untagged ratio of an included keyword")
	batchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory (default: output.dir from config)")
	batchCmd.MarkFlagsMutuallyExclusive("only-rule-sentences", "only-non-rule-sentences")
}

func runBatch(cmd *cobra.Command, args []string) error {
	opts, err := keywordOptions()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	outDir := resolveOutput(cfg, outputPath)
	specs, err := pipeline.MatchSpecs(cfg.IndividualSpecs(), specPatterns)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Speclens Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Specifications: %d\n", len(specs))
	fmt.Fprintf(os.Stderr, "  Workers:        %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Sentences:      %s\n", opts.Filter)
	fmt.Fprintf(os.Stderr, "  Output dir:     %s\n", outDir)
	fmt.Fprintf(os.Stderr, "  Timeout:        %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p := pipeline.NewPipeline(cfg)
	results, err := p.BatchKeywords(ctx, specs, opts, outDir)
	if err != nil {
		return err
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Spec.Name, result.Error)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d sentences, %d conflicting keywords)\n",
			result.Spec.Name, result.Report.Sentences, len(result.Report.MostConflicting.Entries))
	}

	if err := p.WriteMetrics(); err != nil {
		fmt.Fprintf(os.Stderr, "✗ metrics: %v\n", err)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d specifications\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d specifications failed", failureCount, len(results))
	}
	return nil
}
