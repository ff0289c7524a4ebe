package variant

import (
	"fmt"
	"strconv"
	"strings"
)

// Region is a genomic interval on one chromosome. Start and End are 1-based
// and inclusive; a zero End means the rest of the chromosome.
type Region struct {
	Chrom      string
	Start, End int64
}

// ParseRegion parses "chr", "chr:start" or "chr:start-end".
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Region{}, fmt.Errorf("empty region")
	}

	chrom, span, hasSpan := strings.Cut(s, ":")
	if chrom == "" {
		return Region{}, fmt.Errorf("region %q: missing chromosome", s)
	}
	r := Region{Chrom: chrom}
	if !hasSpan {
		return r, nil
	}

	startStr, endStr, hasEnd := strings.Cut(span, "-")
	start, err := strconv.ParseInt(strings.ReplaceAll(startStr, ",", ""), 10, 64)
	if err != nil || start < 1 {
		return Region{}, fmt.Errorf("region %q: invalid start %q", s, startStr)
	}
	r.Start = start
	if hasEnd {
		end, err := strconv.ParseInt(strings.ReplaceAll(endStr, ",", ""), 10, 64)
		if err != nil || end < start {
			return Region{}, fmt.Errorf("region %q: invalid end %q", s, endStr)
		}
		r.End = end
	}
	return r, nil
}

// String formats the region in the same notation ParseRegion accepts.
func (r Region) String() string {
	switch {
	case r.Start == 0 && r.End == 0:
		return r.Chrom
	case r.End == 0:
		return fmt.Sprintf("%s:%d", r.Chrom, r.Start)
	default:
		return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
	}
}
