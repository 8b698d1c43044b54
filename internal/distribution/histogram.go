package distribution

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ppiankov/speclens/internal/model"
)

// BarEdges are the integer-centred bins of the per-specification bar charts (counts 0..9)
var BarEdges = []float64{-0.5, 0.5, 1.5, 2.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5, 9.5}

// heatmapEdges reflect the plausible per-sentence count range of each category
var heatmapEdges = [model.TrackedCategoryCount][]float64{
	model.InformationModel: {0, 1, 2, 3, 4, 5, 6, 7, 8},
	model.Relational:       {0, 1, 2, 3, 4, 5},
	model.Constraint:       {0, 1, 2, 3, 4, 5, 6},
	model.Quotation:        {0, 1, 2, 3},
	model.Numeric:          {0, 1, 2, 3},
}

// HeatmapEdges returns the bin edges used for cross-specification comparison of c
func HeatmapEdges(c model.Category) []float64 {
	if int(c) < 0 || int(c) >= model.TrackedCategoryCount {
		return nil
	}
	edges := make([]float64, len(heatmapEdges[c]))
	copy(edges, heatmapEdges[c])
	return edges
}

// Histogram counts values into len(edges)-1 bins. Bin i covers [edges[i], edges[i+1]);
// the last bin also includes its upper edge. Values outside the edges are dropped.
func Histogram(values []int, edges []float64) []float64 {
	if len(edges) < 2 {
		return nil
	}
	counts := make([]float64, len(edges)-1)
	last := len(edges) - 1
	for _, v := range values {
		x := float64(v)
		if x < edges[0] || x > edges[last] {
			continue
		}
		if x == edges[last] {
			counts[last-1]++
			continue
		}
		for i := 0; i < last; i++ {
			if x >= edges[i] && x < edges[i+1] {
				counts[i]++
				break
			}
		}
	}
	return counts
}

// Normalize scales counts to a probability vector. An all-zero histogram stays all zero.
func Normalize(counts []float64) []float64 {
	out := make([]float64, len(counts))
	copy(out, counts)
	total := floats.Sum(out)
	if total == 0 {
		return out
	}
	floats.Scale(1/total, out)
	return out
}

// Density returns the normalized heatmap histogram of c for one sentence group
func Density(g Group, c model.Category) []float64 {
	return Normalize(Histogram(g.Category(c), HeatmapEdges(c)))
}
