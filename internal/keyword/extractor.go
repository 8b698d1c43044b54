// Package keyword builds keyword frequency tables from annotated sentences
// and derives the inclusion, multi-category and conflict selections from them.
package keyword

import "github.com/ppiankov/speclens/internal/model"

// Extract returns the distinct normalized keywords tagged in any category of any sentence,
// in first-seen order. An empty corpus yields an empty vocabulary.
func Extract(sentences []model.Sentence) []string {
	vocabulary := make([]string, 0)
	seen := make(map[string]struct{})

	for _, s := range sentences {
		for _, kws := range s.Keywords {
			for _, raw := range kws {
				kw := Normalize(raw)
				if kw == "" {
					continue
				}
				if _, ok := seen[kw]; ok {
					continue
				}
				seen[kw] = struct{}{}
				vocabulary = append(vocabulary, kw)
			}
		}
	}

	return vocabulary
}
