package parser

import (
	"io"
	"strings"
)

// TextParser handles plain text files.
type TextParser struct{}

// Extract reads the whole input, so line length is bounded only by the
// caller's upload limit.
func (p *TextParser) Extract(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := strings.TrimPrefix(string(data), "\ufeff")

	var out lines
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			out.blank()
			continue
		}
		out.add(line)
	}

	return out.String(), nil
}
