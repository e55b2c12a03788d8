// internal/catalog/compare.go
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const MaxComparison = 3

var (
	ErrNothingSelected = errors.New("no technologies selected for comparison")
	ErrTooManySelected = errors.New("too many technologies selected for comparison")
	ErrInvalidID       = errors.New("invalid technology id")
)

// ParseIDs reads a comma separated id list such as "1, 4,7".
func ParseIDs(raw string) ([]int, error) {
	ids := []int{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SelectForComparison dedupes ids in first-seen order and enforces the
// comparison size.
func SelectForComparison(ids []int) ([]int, error) {
	seen := make(map[int]bool, len(ids))
	selected := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, id)
	}

	switch {
	case len(selected) == 0:
		return nil, ErrNothingSelected
	case len(selected) > MaxComparison:
		return nil, fmt.Errorf("%w: %d selected, max %d", ErrTooManySelected, len(selected), MaxComparison)
	}
	return selected, nil
}
