package format

import (
	"fmt"
	"regexp"
	"strings"

	"docbud-go/internal/types"
)

// linePattern is the canonical transcript line: "[HH:MM:SS] LABEL: text".
var linePattern = regexp.MustCompile(`^\[\d{2,}:\d{2}:\d{2}\] [^:\s][^:]*: \S`)

// Timestamp renders seconds as zero-padded HH:MM:SS. Fractions are truncated,
// not rounded, so 59.94s stays 00:00:59.
func Timestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Line renders one assignment as a canonical transcript line.
func Line(a types.Assignment) string {
	return fmt.Sprintf("[%s] %s: %s", Timestamp(a.Start), a.Speaker, a.Text)
}

// Transcript renders the assignments one line each, in order.
func Transcript(assignments []types.Assignment) string {
	lines := make([]string, 0, len(assignments))
	for _, a := range assignments {
		lines = append(lines, Line(a))
	}
	return strings.Join(lines, "\n")
}

// IsCanonicalLine reports whether a line kept the "[HH:MM:SS] LABEL: text" shape.
func IsCanonicalLine(line string) bool {
	return linePattern.MatchString(line)
}

// FilterCanonical keeps only canonical lines from raw model output. Lines are
// trimmed before matching; everything else is dropped.
func FilterCanonical(raw string) []string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if IsCanonicalLine(line) {
			kept = append(kept, line)
		}
	}
	return kept
}
