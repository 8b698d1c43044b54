package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ppiankov/speclens/internal/model"
)

// mockAnalyzer implements Analyzer
type mockAnalyzer struct {
	failOn string
}

func (m *mockAnalyzer) AnalyzeSpec(ctx context.Context, spec model.SpecSource) (*model.KeywordReport, error) {
	time.Sleep(5 * time.Millisecond)
	if spec.Name == m.failOn {
		return nil, errors.New("analysis error")
	}
	return &model.KeywordReport{Spec: spec.Key(), SourceFile: spec.File}, nil
}

// mockLoader implements Loader
type mockLoader struct{}

func (mockLoader) Load(ctx context.Context, spec model.SpecSource) ([]model.Sentence, error) {
	return []model.Sentence{{Text: spec.Name, Rule: true}}, nil
}

func specs(n int) []model.SpecSource {
	out := make([]model.SpecSource, n)
	for i := range out {
		out[i] = model.SpecSource{Name: fmt.Sprintf("Spec%02d", i), File: fmt.Sprintf("Spec%02d.xlsx", i)}
	}
	return out
}

func TestBatchProcessor_AnalyzeSpecs(t *testing.T) {
	processor := NewBatchProcessor(3)
	input := specs(12)

	results := processor.AnalyzeSpecs(context.Background(), &mockAnalyzer{}, input)

	if len(results) != len(input) {
		t.Fatalf("expected %d results, got %d", len(input), len(results))
	}
	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Spec.Name, res.Error)
			continue
		}
		if res.Spec.Name != input[i].Name {
			t.Errorf("expected results in input order, got %s at %d", res.Spec.Name, i)
		}
		if res.Report == nil || res.Report.SourceFile != input[i].File {
			t.Errorf("unexpected report for %s: %+v", res.Spec.Name, res.Report)
		}
	}
}

func TestBatchProcessor_AnalyzeSpecs_Error(t *testing.T) {
	processor := NewBatchProcessor(2)
	input := specs(3)

	results := processor.AnalyzeSpecs(context.Background(), &mockAnalyzer{failOn: "Spec01"}, input)

	if results[1].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[1].Report != nil {
		t.Error("expected nil report on error")
	}
	if results[0].Error != nil || results[2].Error != nil {
		t.Error("expected other specifications to succeed")
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(2)

	if results := processor.AnalyzeSpecs(context.Background(), &mockAnalyzer{}, nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
	if results := processor.LoadSpecs(context.Background(), mockLoader{}, nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_LoadSpecs(t *testing.T) {
	processor := NewBatchProcessor(1)
	input := specs(9)

	results := processor.LoadSpecs(context.Background(), mockLoader{}, input)

	for i, res := range results {
		if res.Error != nil {
			t.Fatalf("unexpected error: %v", res.Error)
		}
		if len(res.Sentences) != 1 || res.Sentences[0].Text != input[i].Name {
			t.Errorf("unexpected sentences at %d: %+v", i, res.Sentences)
		}
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewBatchProcessor(2).AnalyzeSpecs(ctx, &mockAnalyzer{}, specs(4))

	if len(results) != 4 {
		t.Fatalf("expected a result per specification, got %d", len(results))
	}
	for _, res := range results {
		if res.Report != nil && res.Error != nil {
			t.Errorf("result for %s has both report and error", res.Spec.Name)
		}
	}
}
