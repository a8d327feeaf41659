package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/quadboard/internal/board"
	"github.com/dgallion1/quadboard/internal/chunker"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Format is a download format, also used as the file extension.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatJSONL    Format = "jsonl"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts a format name, case-insensitively. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatMarkdown, FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatJSONL:
		return "application/x-ndjson"
	case FormatYAML:
		return "application/yaml"
	}
	return "application/octet-stream"
}

// Filename builds a download name such as "compendium.jsonl".
func Filename(base string, f Format) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "export"
	}
	return base + "." + string(f)
}

// Markdown writes the outline verbatim.
func Markdown(w io.Writer, outline string) error {
	_, err := io.WriteString(w, outline)
	return err
}

// JSON writes chunks as a two-space indented array.
func JSON(w io.Writer, chunks []chunker.Chunk) error {
	if chunks == nil {
		chunks = []chunker.Chunk{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(chunks)
}

// JSONL writes one compact chunk object per line, in sequence order.
func JSONL(w io.Writer, chunks []chunker.Chunk) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

// Chunks writes chunks in f, which must be FormatJSON or FormatJSONL.
func Chunks(w io.Writer, chunks []chunker.Chunk, f Format) error {
	switch f {
	case FormatJSON:
		return JSON(w, chunks)
	case FormatJSONL:
		return JSONL(w, chunks)
	default:
		return fmt.Errorf("unsupported chunk export format: %q", f)
	}
}

var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders outline markdown for preview. Raw HTML in the input is
// omitted by goldmark's default renderer.
func HTML(outline string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(outline), &buf); err != nil {
		return "", fmt.Errorf("render outline: %w", err)
	}
	return buf.String(), nil
}

// BoardYAML dumps the quadrant matrix.
func BoardYAML(w io.Writer, m board.Matrix) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	return enc.Close()
}

// ETag returns a quoted SHA-256 entity tag for data.
func ETag(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf(`"%x"`, h[:])
}
