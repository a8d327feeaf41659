package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parser converts an uploaded document into plain text. Headings come out
// as "#"-prefixed lines and list items as "- " lines so the outline
// structurer passes them through.
type Parser interface {
	Extract(r io.Reader, filename string) (string, error)
}

// Options tunes format-specific behavior.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// lines accumulates output lines, collapsing runs of blank lines.
type lines []string

func (l *lines) add(s string) {
	s = strings.TrimSpace(s)
	if s != "" {
		*l = append(*l, s)
	}
}

func (l *lines) blank() {
	if n := len(*l); n > 0 && (*l)[n-1] != "" {
		*l = append(*l, "")
	}
}

func (l lines) String() string {
	return strings.TrimSpace(strings.Join(l, "\n"))
}

func heading(level int, title string) string {
	return strings.Repeat("#", level) + " " + strings.TrimSpace(title)
}
