package region

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/WSU-CptS-581-2025/black-code-formatter/directive"
)

// ErrInvalidRange indicates a malformed or inverted line range request. It is
// a caller bug and aborts the invocation before any file is rewritten.
var ErrInvalidRange = errors.New("invalid line range")

// Region is a contiguous range of lines, 1-indexed and inclusive, that is
// both formattable according to the inline directives and requested by the
// caller. Regions are produced fresh per file and never mutated afterwards.
type Region struct {
	Start int
	End   int
}

func (r Region) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Parse converts a START-END argument, as accepted by --line-ranges, into a
// Region.
func Parse(arg string) (Region, error) {
	startStr, endStr, found := strings.Cut(arg, "-")
	if !found {
		return Region{}, fmt.Errorf("%w: %q must be of the form START-END", ErrInvalidRange, arg)
	}

	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return Region{}, fmt.Errorf("%w: %q has a non-numeric start", ErrInvalidRange, arg)
	}

	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil {
		return Region{}, fmt.Errorf("%w: %q has a non-numeric end", ErrInvalidRange, arg)
	}

	if start < 1 {
		return Region{}, fmt.Errorf("%w: %q starts before line 1", ErrInvalidRange, arg)
	}

	if start > end {
		return Region{}, fmt.Errorf("%w: %q is inverted", ErrInvalidRange, arg)
	}

	return Region{Start: start, End: end}, nil
}

// ParseAll converts a list of START-END arguments, failing on the first
// malformed entry.
func ParseAll(args []string) ([]Region, error) {
	regions := make([]Region, 0, len(args))

	for _, arg := range args {
		r, err := Parse(arg)
		if err != nil {
			return nil, err
		}

		regions = append(regions, r)
	}

	return regions, nil
}

// merge sorts regions by start line and coalesces overlapping or adjacent
// entries into maximal contiguous regions.
func merge(regions []Region) []Region {
	if len(regions) == 0 {
		return nil
	}

	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := []Region{sorted[0]}

	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}

			continue
		}

		merged = append(merged, r)
	}

	return merged
}

// Intersect computes the final set of regions to hand to the rewrite engine:
// the union of the requested ranges (the whole file when none are given)
// intersected with the formattable spans of the scan. A request that falls
// entirely inside a preserved span yields nothing; directives always win over
// range requests.
func Intersect(scan directive.Result, requested []Region) []Region {
	formattable := scan.Formattable()
	if len(formattable) == 0 {
		return nil
	}

	var limits []Region

	if len(requested) == 0 {
		last := scan.Spans[len(scan.Spans)-1]
		limits = []Region{{Start: 1, End: last.End}}
	} else {
		limits = merge(requested)
	}

	var out []Region

	for _, span := range formattable {
		for _, limit := range limits {
			start := max(span.Start, limit.Start)
			end := min(span.End, limit.End)

			if start <= end {
				out = append(out, Region{Start: start, End: end})
			}
		}
	}

	return merge(out)
}
