package accession

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// maxRangeSize bounds how many accessions a single range entry may expand to.
const maxRangeSize = 1_000_000

var ErrBadRange = errors.New("malformed accession range")

// ExpandRange expands "AB123456-AB123460" (or "AB123456-123460") into the
// explicit accessions of the range. A single accession expands to itself.
func ExpandRange(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	lo, hi, isRange := strings.Cut(s, "-")
	if !isRange {
		if s == "" {
			return nil, fmt.Errorf("%w: empty entry", ErrBadRange)
		}
		return []string{s}, nil
	}
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	prefix, loDigits := splitAccession(lo)
	hiPrefix, hiDigits := splitAccession(hi)
	if hiPrefix != "" && hiPrefix != prefix {
		return nil, fmt.Errorf("%w: %q: prefixes differ", ErrBadRange, s)
	}
	if !allDigits(loDigits) || !allDigits(hiDigits) {
		return nil, fmt.Errorf("%w: %q: non-digit body", ErrBadRange, s)
	}
	if len(loDigits) != len(hiDigits) {
		return nil, fmt.Errorf("%w: %q: digit widths differ", ErrBadRange, s)
	}
	start, err := strconv.Atoi(loDigits)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrBadRange, s, err)
	}
	end, err := strconv.Atoi(hiDigits)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrBadRange, s, err)
	}
	if end < start {
		return nil, fmt.Errorf("%w: %q: end before start", ErrBadRange, s)
	}
	if end-start+1 > maxRangeSize {
		return nil, fmt.Errorf("%w: %q: more than %d accessions", ErrBadRange, s, maxRangeSize)
	}
	width := len(loDigits)
	out := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, fmt.Sprintf("%s%0*d", prefix, width, n))
	}
	return out, nil
}
