package submitter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseSelection parses a bulk-choice expression over a 1-based list: comma
// lists and inclusive ranges, e.g. "1,3,5" or "1-10". Indices outside [1,max]
// are silently dropped; malformed parts are an error. The result is sorted
// and de-duplicated.
func ParseSelection(input string, max int) ([]int, error) {
	selected := make(map[int]struct{})

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid selection: %s", part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid selection: %s", part)
			}
			for i := start; i <= end; i++ {
				selected[i] = struct{}{}
			}
			continue
		}

		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid selection: %s", part)
		}
		selected[idx] = struct{}{}
	}

	indices := make([]int, 0, len(selected))
	for idx := range selected {
		if idx >= 1 && idx <= max {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	return indices, nil
}
