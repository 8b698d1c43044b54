package pipeline

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ppiankov/speclens/internal/cache"
	"github.com/ppiankov/speclens/internal/distribution"
	"github.com/ppiankov/speclens/internal/keyword"
	"github.com/ppiankov/speclens/internal/metrics"
	"github.com/ppiankov/speclens/internal/model"
	"github.com/ppiankov/speclens/internal/reader"
	"github.com/ppiankov/speclens/internal/worker"
)

// Pipeline orchestrates load, analysis and rendering
type Pipeline struct {
	reader    *reader.Reader
	docs      *cache.Documents // nil when caching is disabled
	renderer  *Renderer
	processor *worker.BatchProcessor
	metrics   *metrics.Recorder
	config    *model.Config
	logger    *slog.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	var docs *cache.Documents
	if c := cache.FromConfig(cfg.Cache); c != nil {
		docs = cache.NewDocuments(c, cfg.Cache.DiskTTL)
	}

	return &Pipeline{
		reader:    reader.NewReader(cfg.Data.SheetName, cfg.Columns),
		docs:      docs,
		renderer:  NewRenderer(cfg.Output.Width, cfg.Output.Height),
		processor: worker.NewBatchProcessor(cfg.Concurrency.Workers),
		metrics:   metrics.New(),
		config:    cfg,
		logger:    slog.Default(),
	}
}

// KeywordOptions selects the sentences and cutoffs of a keyword analysis
type KeywordOptions struct {
	Filter    model.SampleFilter
	Threshold float64
	TopN      int // -1 charts every selected keyword
}

// Validate rejects options that cannot produce a meaningful analysis
func (o KeywordOptions) Validate() error {
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("%w: got %v", model.ErrInvalidThreshold, o.Threshold)
	}
	return nil
}

// newRunID returns a lexicographically sortable run identifier
func newRunID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// Load reads the sentence records of spec, consulting the document cache first
func (p *Pipeline) Load(ctx context.Context, spec model.SpecSource) ([]model.Sentence, error) {
	path := filepath.Join(p.config.Data.Dir, spec.File)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", spec.Name, err)
	}

	key := cache.DocumentKey(path, p.reader.Fingerprint(), info)
	if p.docs != nil {
		sentences, ok := p.docs.Get(key)
		p.metrics.CacheLookup(ok)
		if ok {
			p.logger.Debug("cache hit", "spec", spec.Name, "sentences", len(sentences))
			return sentences, nil
		}
	}

	start := time.Now()
	sentences, err := p.reader.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", spec.Name, err)
	}
	p.metrics.Stage("load", time.Since(start))
	p.logger.Debug("workbook parsed", "spec", spec.Name, "path", path,
		"sentences", len(sentences), "elapsed", time.Since(start))

	if p.docs != nil {
		if err := p.docs.Put(key, sentences); err != nil {
			p.logger.Warn("cache write failed", "spec", spec.Name, "error", err)
		}
	}

	return sentences, nil
}

// AnalyzeKeywords runs the keyword-frequency analysis over already loaded sentences.
// It performs no I/O.
func AnalyzeKeywords(spec model.SpecSource, sentences []model.Sentence, opts KeywordOptions) *model.KeywordReport {
	selected := opts.Filter.Apply(sentences)
	result := keyword.Analyze(selected, keyword.NewSelector(opts.Threshold))

	now := time.Now().UTC()
	return &model.KeywordReport{
		RunID:           newRunID(now),
		Spec:            spec.Key(),
		SourceFile:      spec.File,
		GeneratedAt:     now,
		Filter:          opts.Filter,
		Threshold:       opts.Threshold,
		TopN:            opts.TopN,
		Sentences:       len(selected),
		Vocabulary:      len(result.Vocabulary),
		MostCommon:      result.MostCommon,
		Filtered:        result.Filtered,
		MultiCategory:   result.MultiCategory,
		MostConflicting: result.MostConflicting,
	}
}

// RunKeywords loads spec, analyzes it and writes its charts and reports under outDir
func (p *Pipeline) RunKeywords(ctx context.Context, spec model.SpecSource, opts KeywordOptions, outDir string) (*model.KeywordReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	sentences, err := p.Load(ctx, spec)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := AnalyzeKeywords(spec, sentences, opts)
	p.metrics.Stage("analyze", time.Since(start))
	p.metrics.KeywordReport(report)
	p.logger.Info("keyword analysis complete",
		"run_id", report.RunID,
		"spec", report.Spec,
		"filter", report.Filter.String(),
		"sentences", report.Sentences,
		"vocabulary", report.Vocabulary,
		"conflicting", len(report.MostConflicting.Entries))

	if err := p.RenderKeywords(report, outDir); err != nil {
		return report, err
	}
	return report, nil
}

// RenderKeywords writes the four keyword charts and the configured reports of report
func (p *Pipeline) RenderKeywords(report *model.KeywordReport, outDir string) error {
	target := filepath.Join(outDir, KeywordDir)
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, sel := range report.Selections() {
		path := filepath.Join(target, KeywordChartName(report.Spec, sel.Name, report.Filter, report.Threshold, report.TopN))
		written, err := p.renderer.RenderKeywordChart(sel, report.TopN, sel.Name == keyword.SelectionMostConflicting, path)
		if err != nil {
			return fmt.Errorf("render %s: %w", sel.Name, err)
		}
		if !written {
			p.logger.Info("empty selection, chart skipped", "spec", report.Spec, "selection", sel.Name)
			continue
		}
		report.Charts = append(report.Charts, model.Artifact{Kind: "chart", Name: sel.Name, Path: path})
		p.metrics.Artifact("chart")
		p.progress("✓ Wrote chart: %s\n", path)
	}

	base := filepath.Join(target, KeywordReportName(report.Spec, report.Filter, report.Threshold, report.TopN))
	return p.writeReports(report, base, func(path string) error {
		return p.renderer.RenderKeywordMarkdown(report, path)
	}, func(path string) error {
		return p.renderer.RenderKeywordIndex(report, path)
	})
}

// keywordAnalyzer adapts RunKeywords to worker.Analyzer for a fixed set of options
type keywordAnalyzer struct {
	p      *Pipeline
	opts   KeywordOptions
	outDir string
}

func (a keywordAnalyzer) AnalyzeSpec(ctx context.Context, spec model.SpecSource) (*model.KeywordReport, error) {
	return a.p.RunKeywords(ctx, spec, a.opts, a.outDir)
}

// BatchKeywords runs RunKeywords for every spec over the worker pool.
// Results keep the order of specs.
func (p *Pipeline) BatchKeywords(ctx context.Context, specs []model.SpecSource, opts KeywordOptions, outDir string) ([]*worker.SpecResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	results := p.processor.AnalyzeSpecs(ctx, keywordAnalyzer{p: p, opts: opts, outDir: outDir}, specs)
	for _, res := range results {
		if res.Error != nil {
			p.metrics.Failure(res.Spec.Key())
		}
	}
	return results, nil
}

// LoadGroups reads every individual specification concurrently and partitions each by label.
// Any load failure is fatal to the run.
func (p *Pipeline) LoadGroups(ctx context.Context) ([]distribution.Groups, error) {
	specs := p.config.IndividualSpecs()
	results := p.processor.LoadSpecs(ctx, p, specs)

	groups := make([]distribution.Groups, 0, len(results))
	for _, res := range results {
		if res.Error != nil {
			return nil, res.Error
		}
		groups = append(groups, distribution.Collect(res.Spec.Name, res.Sentences))
	}
	return groups, nil
}

// AnalyzeDistributions compares rule and non-rule sentences across the individual specifications.
// A nil category renders the per-specification bar charts and every category's heatmaps;
// otherwise only the heatmaps of that category are produced.
func (p *Pipeline) AnalyzeDistributions(ctx context.Context, category *model.Category, outDir string) (*model.DistributionReport, error) {
	groups, err := p.LoadGroups(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report := BuildDistributionReport(groups, category)
	report.RunID = newRunID(now)
	report.GeneratedAt = now

	if category == nil {
		target := filepath.Join(outDir, BarChartDir)
		if err := os.MkdirAll(target, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
		for _, g := range groups {
			path := filepath.Join(target, BarChartName(g.Spec))
			if err := p.renderer.RenderDistribution(g, path); err != nil {
				return nil, fmt.Errorf("render %s distribution: %w", g.Spec, err)
			}
			report.Artifacts = append(report.Artifacts, model.Artifact{Kind: "histogram", Name: g.Spec, Path: path})
			p.metrics.Artifact("histogram")
			p.progress("✓ Wrote bar chart: %s\n", path)
		}
	}

	target := filepath.Join(outDir, HeatmapDir)
	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	for _, c := range heatmapCategories(category) {
		for _, rule := range []bool{true, false} {
			h := distribution.Compare(groups, c, rule)
			path := filepath.Join(target, HeatmapName(c, rule))
			if err := p.renderer.RenderHeatmap(h, path); err != nil {
				return nil, fmt.Errorf("render %s heatmap: %w", c.Entity(), err)
			}
			report.Artifacts = append(report.Artifacts, model.Artifact{Kind: "heatmap", Name: c.Entity(), Path: path})
			p.metrics.Artifact("heatmap")
			p.progress("✓ Wrote heatmap: %s\n", path)
		}
	}

	p.logger.Info("distribution analysis complete",
		"run_id", report.RunID,
		"specs", len(groups),
		"heatmaps", len(report.Heatmaps))

	if err := p.writeReports(report, filepath.Join(outDir, DistributionReportName), func(path string) error {
		return p.renderer.RenderDistributionMarkdown(report, path)
	}, func(path string) error {
		return p.renderer.RenderDistributionIndex(report, outDir, path)
	}); err != nil {
		return report, err
	}
	return report, nil
}

// BuildDistributionReport summarizes groups and the heatmaps selected by category. It performs no I/O.
func BuildDistributionReport(groups []distribution.Groups, category *model.Category) *model.DistributionReport {
	report := &model.DistributionReport{
		Groups:   make([]model.GroupSummary, 0, len(groups)),
		Heatmaps: []model.HeatmapSummary{},
	}
	for _, g := range groups {
		report.Groups = append(report.Groups, model.GroupSummary{Spec: g.Spec, Rule: g.Rule.Size, NonRule: g.NonRule.Size})
	}
	for _, c := range heatmapCategories(category) {
		for _, rule := range []bool{true, false} {
			report.Heatmaps = append(report.Heatmaps, distribution.Compare(groups, c, rule).Summary())
		}
	}
	return report
}

func heatmapCategories(category *model.Category) []model.Category {
	if category != nil {
		return []model.Category{*category}
	}
	return model.TrackedCategories[:]
}

// writeReports writes the JSON, Markdown and HTML forms enabled in the output config.
// base is the path without extension.
func (p *Pipeline) writeReports(v any, base string, markdown, index func(string) error) error {
	if p.config.Output.JSON {
		path := base + ".json"
		if err := p.renderer.RenderJSON(v, path); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.progress("✓ Wrote JSON: %s\n", path)
	}

	path := base + ".md"
	if err := markdown(path); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	p.progress("✓ Wrote Markdown: %s\n", path)

	if p.config.Output.HTML {
		path := base + ".html"
		if err := index(path); err != nil {
			return fmt.Errorf("render HTML: %w", err)
		}
		p.progress("✓ Wrote HTML: %s\n", path)
	}
	return nil
}

// Metrics returns the recorder of this pipeline's runs
func (p *Pipeline) Metrics() *metrics.Recorder {
	return p.metrics
}

// WriteMetrics writes the run metrics to the configured textfile, if any
func (p *Pipeline) WriteMetrics() error {
	if p.config.Output.MetricsFile == "" {
		return nil
	}
	if err := p.metrics.WriteTextfile(p.config.Output.MetricsFile); err != nil {
		return err
	}
	p.progress("✓ Wrote metrics: %s\n", p.config.Output.MetricsFile)
	return nil
}

func (p *Pipeline) progress(format string, a ...any) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, format, a...)
	}
}
