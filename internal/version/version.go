package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the wgsmaster CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders Version with major, minor and patch in their own colors.
// Pre-release and build suffixes stay plain.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + suffix
}

// Summary is the one-line form printed by `wgsmaster version`.
func Summary(colored bool) string {
	v := Version
	if colored {
		v = Colored()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "wgsmaster %s", v)
	if GitCommit != "" {
		fmt.Fprintf(&b, " (%s)", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, " built %s", BuildDate)
	}
	return b.String()
}
