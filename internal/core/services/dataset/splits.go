package dataset

import (
	"fmt"

	apperrors "github.com/ruhan-islam/text-summarizer/internal/pkg/errors"
)

// ValidateSplits rejects unnamed, duplicated or negative ranges
func ValidateSplits(splits []Split) error {
	seen := make(map[string]bool, len(splits))
	for _, s := range splits {
		if s.Name == "" {
			return apperrors.BadRequest("split name is required")
		}
		if seen[s.Name] {
			return apperrors.BadRequest(fmt.Sprintf("duplicate split %q", s.Name))
		}
		seen[s.Name] = true

		if s.Start < 0 || s.Size < 0 {
			return apperrors.BadRequest(fmt.Sprintf("split %q has a negative start or size", s.Name))
		}
	}
	return nil
}

// Bounds clamps the split to a table of n rows
func (s Split) Bounds(n int) (start, end int) {
	start = min(s.Start, n)
	end = min(s.Start+s.Size, n)
	return start, max(start, end)
}
