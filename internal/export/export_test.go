package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/quadboard/internal/board"
	"github.com/dgallion1/quadboard/internal/chunker"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func sampleChunks(t *testing.T) []chunker.Chunk {
	t.Helper()
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 30)
	chunks, err := chunker.Segment(text, 200)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	return chunks
}

func TestJSONL_OneParseableLinePerChunk(t *testing.T) {
	chunks := sampleChunks(t)

	var buf bytes.Buffer
	if err := JSONL(&buf, chunks); err != nil {
		t.Fatalf("JSONL() error = %v", err)
	}

	var got []chunker.Chunk
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var c chunker.Chunk
		if err := json.Unmarshal(scanner.Bytes(), &c); err != nil {
			t.Fatalf("line %d not parseable: %v", len(got)+1, err)
		}
		got = append(got, c)
	}
	if len(got) != len(chunks) {
		t.Fatalf("expected %d lines, got %d", len(chunks), len(got))
	}
	if diff := cmp.Diff(chunks, got); diff != "" {
		t.Errorf("JSONL round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_IndentedArray(t *testing.T) {
	chunks, _ := chunker.Segment("A. B. C.", 1000)

	var buf bytes.Buffer
	if err := JSON(&buf, chunks); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	want := `[
  {
    "id": "kcs-1",
    "content": "A. B. C.",
    "metadata": {
      "index": 0,
      "tokenEstimate": 2,
      "wordCount": 3,
      "topicHint": "A."
    }
  }
]
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("JSON output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("expected [], got %q", got)
	}
}

func TestChunks_RejectsOtherFormats(t *testing.T) {
	if err := Chunks(&bytes.Buffer{}, nil, FormatMarkdown); err == nil {
		t.Error("expected error for markdown chunk export")
	}
}

func TestMarkdown_Verbatim(t *testing.T) {
	outline := "## Tone\n- Be concise\n  - Be kind"
	var buf bytes.Buffer
	if err := Markdown(&buf, outline); err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	if buf.String() != outline {
		t.Errorf("expected verbatim outline, got %q", buf.String())
	}
}

func TestHTML_RendersOutline(t *testing.T) {
	got, err := HTML("## Tone\n- Be concise\n  - Be kind")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	for _, want := range []string{"<h2>Tone</h2>", "<li>Be concise", "<li>Be kind</li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}

func TestHTML_OmitsRawHTML(t *testing.T) {
	got, err := HTML("- <script>alert(1)</script>")
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("expected raw html to be omitted, got %q", got)
	}
}

func TestBoardYAML(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := board.BuildMatrix([]board.Task{
		{ID: "t1", Title: "fire", Urgent: true, Important: true, CreatedAt: created, UpdatedAt: created},
		{ID: "t2", Title: "noise", CreatedAt: created, UpdatedAt: created},
	})

	var buf bytes.Buffer
	if err := BoardYAML(&buf, m); err != nil {
		t.Fatalf("BoardYAML() error = %v", err)
	}

	var back board.Matrix
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid yaml: %v", err)
	}
	if diff := cmp.Diff(m, back); diff != "" {
		t.Errorf("yaml round trip mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "quadrant: do") {
		t.Errorf("expected quadrant keys in output:\n%s", buf.String())
	}
}

func TestParseFormatAndFilename(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		file string
	}{
		{"", FormatJSON, "compendium.json"},
		{"JSONL", FormatJSONL, "compendium.jsonl"},
		{" json ", FormatJSON, "compendium.json"},
		{"md", FormatMarkdown, "compendium.md"},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if name := Filename("compendium", got); name != tt.file {
			t.Errorf("Filename() = %q, want %q", name, tt.file)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
	if got := Filename("  ", FormatMarkdown); got != "export.md" {
		t.Errorf("expected fallback base, got %q", got)
	}
}

func TestETag(t *testing.T) {
	want := `"b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"`
	if got := ETag([]byte("hello world")); got != want {
		t.Errorf("ETag() = %s, want %s", got, want)
	}
}
