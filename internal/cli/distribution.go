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

var entityName string

// distributionCmd represents the distribution command
var distributionCmd = &cobra.Command{
	Use:   "distribution",
	Short: "Compare rule and non-rule keyword distributions across specifications",
	Long: `Distribution reads every registered specification except the merged one and
compares how many keywords of each category rule and non-rule sentences carry.

With --entity all (the default) it writes a bar chart per specification to
<output>/distribution_barchart/ and a rule and non-rule cosine-similarity heatmap
per category to <output>/distribution_heatmap/. Naming a single entity writes only
that entity's two heatmaps.

Entities: information_model, relation, constraint, quotes, number

Example:
  speclens distribution
  speclens distribution --entity constraint -o ./reports`,
	Args: cobra.NoArgs,
	RunE: runDistribution,
}

func init() {
	rootCmd.AddCommand(distributionCmd)

	distributionCmd.Flags().StringVarP(&entityName, "entity", "e", "all", "entity to compare (all, information_model, relation, constraint, quotes, number)")
	distributionCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory (default: output.dir from config)")
	distributionCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute, "overall analysis timeout")
}

// parseEntity resolves --entity; nil means every category
func parseEntity(name string) (*model.Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "all" {
		return nil, nil
	}
	c, ok := model.ParseCategory(name)
	if !ok || c == model.NotIncluded {
		return nil, fmt.Errorf("unknown entity %q (expected all, information_model, relation, constraint, quotes or number)", name)
	}
	return &c, nil
}

func runDistribution(cmd *cobra.Command, args []string) error {
	category, err := parseEntity(entityName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	outDir := resolveOutput(cfg, outputPath)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Specifications: %d\n", len(cfg.IndividualSpecs()))
		fmt.Fprintf(os.Stderr, "Entity: %s\n", entityName)
		fmt.Fprintf(os.Stderr, "Workers: %d\n", cfg.Concurrency.Workers)
		fmt.Fprintln(os.Stderr)
	}

	start := time.Now()
	p := pipeline.NewPipeline(cfg)
	report, err := p.AnalyzeDistributions(ctx, category, outDir)
	if err != nil {
		return fmt.Errorf("distribution analysis failed: %w", err)
	}
	if err := p.WriteMetrics(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, g := range report.Groups {
		fmt.Fprintf(out, "  %-15s rule %5d  non-rule %5d\n", g.Spec, g.Rule, g.NonRule)
	}
	for _, a := range report.Artifacts {
		fmt.Fprintf(out, "Image saved to %s\n", a.Path)
	}
	fmt.Fprintf(out, "Analysis took %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
