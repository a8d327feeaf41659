package outline

import (
	"regexp"
	"strings"

	"github.com/dgallion1/quadboard/internal/textutil"
)

var (
	headingMarker = regexp.MustCompile(`^#+\s`)
	bulletMarker  = regexp.MustCompile(`^[-*]\s`)
)

// Structure converts loosely formatted notes into a markdown outline.
//
// Lines ending in a colon become level-2 headings. Plain lines become
// bullets: the first line of a block is a top-level bullet and the lines
// that follow it are nested under it until a blank line, heading, or
// existing bullet closes the block. Blank lines are dropped.
func Structure(text string) string {
	text = textutil.Normalize(text)
	if text == "" {
		return ""
	}

	var out []string
	blockOpen := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			blockOpen = false
		case headingMarker.MatchString(line), bulletMarker.MatchString(line):
			out = append(out, line)
			blockOpen = false
		case strings.HasSuffix(line, ":"):
			out = append(out, "## "+strings.TrimSpace(strings.TrimSuffix(line, ":")))
			blockOpen = false
		case blockOpen:
			out = append(out, "  - "+line)
		default:
			out = append(out, "- "+line)
			blockOpen = true
		}
	}

	return strings.Join(out, "\n")
}
