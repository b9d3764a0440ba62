package accession

import (
	"fmt"
	"strings"

	"wgsmaster/internal/project"
)

const (
	minOrdinalDigits = 6
	maxOrdinalDigits = 8

	// MaxOrdinal is the largest ordinal an 8-digit field can carry.
	MaxOrdinal = 99_999_999
)

// Width returns the ordinal width for a submission of n entries.
func Width(n int) int {
	switch {
	case n <= 999_999:
		return 6
	case n <= 9_999_999:
		return 7
	}
	return 8
}

// Format builds prefix ++ zero_pad(version, 2) ++ zero_pad(ordinal, width).
func Format(prefix string, version, ordinal, width int) string {
	return fmt.Sprintf("%s%02d%0*d", prefix, version, width, ordinal)
}

// MasterAccession is the accession of the master record (ordinal zero).
func MasterAccession(cfg *project.Config, width int) string {
	return Format(cfg.Prefix, cfg.Version, 0, width)
}

var scaffoldPrefixes = map[project.ScaffoldKind][]string{
	project.ScaffoldRegularChromosomal: {"CM"},
	project.ScaffoldTPAChromosomal:     {"BK", "BN"},
	project.ScaffoldGenomic: {
		"DS", "EQ", "GG", "GL", "JH", "KB", "KE", "KI",
		"KK", "KL", "KN", "KQ", "KV", "KZ", "ML", "MU",
	},
	project.ScaffoldTPAGenomic: {"BK", "BN"},
}

// ScaffoldPrefixes lists the two-letter accession prefixes scaffolds of the
// given kind are issued under.
func ScaffoldPrefixes(kind project.ScaffoldKind) []string {
	return scaffoldPrefixes[kind]
}

// Valid reports whether acc is an accession this project may carry: either
// the project id prefix followed by a 6-8 digit ordinal, or, for scaffold
// projects, a recognized scaffold prefix followed by 6-8 digits.
func Valid(acc string, cfg *project.Config) bool {
	alpha, digits := splitAccession(acc)
	if alpha == "" {
		return false
	}
	if alpha == cfg.Prefix {
		if !strings.HasPrefix(digits, fmt.Sprintf("%02d", cfg.Version)) {
			return false
		}
		return allDigits(digits) && inRange(len(digits)-2, minOrdinalDigits, maxOrdinalDigits)
	}
	if cfg.Scaffold == project.ScaffoldNone {
		return false
	}
	allowed := ScaffoldPrefixes(cfg.Scaffold)
	if cfg.ScaffoldPrefix != "" {
		allowed = append([]string{cfg.ScaffoldPrefix}, allowed...)
	}
	for _, p := range allowed {
		if alpha == p {
			return allDigits(digits) && inRange(len(digits), minOrdinalDigits, maxOrdinalDigits)
		}
	}
	return false
}

// IsProjectShaped reports whether acc uses the project's own letter prefix,
// regardless of its digits.
func IsProjectShaped(acc string, cfg *project.Config) bool {
	alpha, _ := splitAccession(acc)
	return alpha != "" && alpha == cfg.Prefix
}

// splitAccession separates the leading letter/underscore prefix from the rest.
func splitAccession(acc string) (alpha, rest string) {
	i := 0
	for i < len(acc) {
		c := acc[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' {
			i++
			continue
		}
		break
	}
	return acc[:i], acc[i:]
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func inRange(n, lo, hi int) bool { return n >= lo && n <= hi }
