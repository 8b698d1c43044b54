package pipeline

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ppiankov/speclens/internal/model"
)

// MatchSpecs returns the specifications whose lower-cased name matches any of the glob
// patterns (e.g. "mv*", "{packml,isa95}"), in registry order. No patterns keeps every spec.
func MatchSpecs(specs []model.SpecSource, patterns []string) ([]model.SpecSource, error) {
	if len(patterns) == 0 {
		return specs, nil
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(strings.ToLower(pattern)) {
			return nil, fmt.Errorf("invalid specification pattern %q", pattern)
		}
	}

	var out []model.SpecSource
	for _, s := range specs {
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(strings.ToLower(pattern), s.Key()); ok {
				out = append(out, s)
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no specification matches %v", model.ErrUnknownSpec, patterns)
	}
	return out, nil
}
