package trace

import (
	"fmt"
	"strings"
)

// Level controls how deep into a run the trace goes.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // nothing streamed; ring dumps only
	LevelPhase        // run and pass spans
	LevelDetail       // plus one span per input file
	LevelDebug        // plus one span per record and record notes
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest scope each level lets through; zero means none
var levelDepth = [...]Scope{LevelPhase: ScopePass, LevelDetail: ScopeFile, LevelDebug: ScopeRecord}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel parses a --trace-level value, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of the given scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(levelDepth) && scope <= levelDepth[l]
}
