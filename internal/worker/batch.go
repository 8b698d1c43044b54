package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/speclens/internal/model"
)

// Analyzer runs the keyword analysis of one specification
type Analyzer interface {
	AnalyzeSpec(ctx context.Context, spec model.SpecSource) (*model.KeywordReport, error)
}

// Loader reads the sentence records of one specification
type Loader interface {
	Load(ctx context.Context, spec model.SpecSource) ([]model.Sentence, error)
}

// SpecJob analyzes one specification
type SpecJob struct {
	Index    int
	Spec     model.SpecSource
	Analyzer Analyzer
}

// Execute executes the analysis job
func (j *SpecJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.AnalyzeSpec(ctx, j.Spec)
	return &SpecResult{
		Index:  j.Index,
		Spec:   j.Spec,
		Report: report,
		Error:  err,
	}
}

// SpecResult represents the result of an analysis job
type SpecResult struct {
	Index  int
	Spec   model.SpecSource
	Report *model.KeywordReport
	Error  error
}

// GetError returns the error from the analysis result
func (r *SpecResult) GetError() error {
	return r.Error
}

// LoadJob reads one specification workbook
type LoadJob struct {
	Index  int
	Spec   model.SpecSource
	Loader Loader
}

// Execute executes the load job
func (j *LoadJob) Execute(ctx context.Context) Result {
	sentences, err := j.Loader.Load(ctx, j.Spec)
	return &LoadResult{
		Index:     j.Index,
		Spec:      j.Spec,
		Sentences: sentences,
		Error:     err,
	}
}

// LoadResult represents the result of a load job
type LoadResult struct {
	Index     int
	Spec      model.SpecSource
	Sentences []model.Sentence
	Error     error
}

// GetError returns the error from the load result
func (r *LoadResult) GetError() error {
	return r.Error
}

// BatchProcessor fans independent specifications out over a worker pool.
// Results come back in the order the specifications were given.
type BatchProcessor struct {
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(concurrency int) *BatchProcessor {
	return &BatchProcessor{
		concurrency: concurrency,
	}
}

// AnalyzeSpecs runs analyzer over every specification concurrently
func (b *BatchProcessor) AnalyzeSpecs(ctx context.Context, analyzer Analyzer, specs []model.SpecSource) []*SpecResult {
	if len(specs) == 0 {
		return []*SpecResult{}
	}

	jobs := make([]Job, len(specs))
	for i, spec := range specs {
		jobs[i] = &SpecJob{Index: i, Spec: spec, Analyzer: analyzer}
	}

	out := make([]*SpecResult, len(specs))
	for _, r := range b.run(ctx, jobs) {
		res := r.(*SpecResult)
		out[res.Index] = res
	}
	for i, res := range out {
		if res == nil {
			out[i] = &SpecResult{Index: i, Spec: specs[i], Error: cancelled(ctx)}
		}
	}
	return out
}

// LoadSpecs reads every specification concurrently
func (b *BatchProcessor) LoadSpecs(ctx context.Context, loader Loader, specs []model.SpecSource) []*LoadResult {
	if len(specs) == 0 {
		return []*LoadResult{}
	}

	jobs := make([]Job, len(specs))
	for i, spec := range specs {
		jobs[i] = &LoadJob{Index: i, Spec: spec, Loader: loader}
	}

	out := make([]*LoadResult, len(specs))
	for _, r := range b.run(ctx, jobs) {
		res := r.(*LoadResult)
		out[res.Index] = res
	}
	for i, res := range out {
		if res == nil {
			out[i] = &LoadResult{Index: i, Spec: specs[i], Error: cancelled(ctx)}
		}
	}
	return out
}

func (b *BatchProcessor) run(ctx context.Context, jobs []Job) []Result {
	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		for _, job := range jobs {
			pool.Submit(job)
		}
		pool.Close()
	}()

	return pool.Collect()
}

// cancelled explains a job that never ran
func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("not run: %w", err)
	}
	return errors.New("not run")
}
