package distribution

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ppiankov/speclens/internal/model"
)

// CosineSimilarity returns a·b / (|a||b|). A zero vector is similar to nothing (0).
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// SimilarityMatrix returns the pairwise cosine similarity of rows. The result is symmetric.
func SimilarityMatrix(rows [][]float64) [][]float64 {
	n := len(rows)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sim := CosineSimilarity(rows[i], rows[j])
			m[i][j] = sim
			m[j][i] = sim
		}
	}
	return m
}

// Masked reports whether cell (row, col) is hidden in the rendered heatmap.
// Only the strict lower triangle is shown since the matrix is symmetric.
func Masked(row, col int) bool {
	return row <= col
}

// Heatmap is the similarity of one category's count distribution across specifications
type Heatmap struct {
	Category model.Category
	Rule     bool
	Labels   []string
	Rows     [][]float64 // normalized histogram per specification
	Matrix   [][]float64
}

// Compare builds the heatmap of category c for the rule or non-rule groups of specs,
// keeping the order of specs
func Compare(specs []Groups, c model.Category, rule bool) Heatmap {
	h := Heatmap{
		Category: c,
		Rule:     rule,
		Labels:   make([]string, len(specs)),
		Rows:     make([][]float64, len(specs)),
	}
	for i, g := range specs {
		h.Labels[i] = g.Spec
		h.Rows[i] = Density(g.Group(rule), c)
	}
	h.Matrix = SimilarityMatrix(h.Rows)
	return h
}

// Summary converts the heatmap into its report form
func (h Heatmap) Summary() model.HeatmapSummary {
	return model.HeatmapSummary{
		Category: h.Category,
		Rule:     h.Rule,
		Labels:   h.Labels,
		Matrix:   h.Matrix,
	}
}
