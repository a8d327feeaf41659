package chunker

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// shortSentences builds n sentences of exactly 49 characters each.
func shortSentences(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("Sentence %02d has a fixed length for packing tests.", i+1)
	}
	return strings.Join(parts, " ")
}

func joinContents(chunks []Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, " ")
}

func TestSegment_SmallTextFitsOneChunk(t *testing.T) {
	chunks, err := Segment("A. B. C.", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Chunk{{
		ID:      "kcs-1",
		Content: "A. B. C.",
		Metadata: Metadata{
			Index:         0,
			TokenEstimate: 2,
			WordCount:     3,
			TopicHint:     "A.",
		},
	}}
	if diff := cmp.Diff(want, chunks); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_LargeTextRequiresSplitting(t *testing.T) {
	text := shortSentences(40)
	if len(text) < 1990 || len(text) > 2010 {
		t.Fatalf("fixture should be about 2000 chars, got %d", len(text))
	}

	chunks, err := Segment(text, 700)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if c.Metadata.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Metadata.Index)
		}
		if want := fmt.Sprintf("kcs-%d", i+1); c.ID != want {
			t.Errorf("chunk %d: expected id %q, got %q", i, want, c.ID)
		}
		if len(c.Content) > 700 {
			t.Errorf("chunk %d: %d chars exceeds bound", i, len(c.Content))
		}
	}
	if got := len(chunks[0].Content); got != 699 {
		t.Errorf("expected first chunk to pack 14 sentences (699 chars), got %d", got)
	}
}

func TestSegment_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\r\n\n\t"} {
		chunks, err := Segment(in, 700)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chunks == nil || len(chunks) != 0 {
			t.Errorf("Segment(%q): expected empty non-nil slice, got %#v", in, chunks)
		}
	}
}

func TestSegment_InvalidBound(t *testing.T) {
	for _, max := range []int{0, -1, -700} {
		chunks, err := Segment("Some text.", max)
		if !errors.Is(err, ErrInvalidChunkSize) {
			t.Errorf("max=%d: expected ErrInvalidChunkSize, got %v", max, err)
		}
		if chunks != nil {
			t.Errorf("max=%d: expected no chunks, got %d", max, len(chunks))
		}
	}
}

func TestSegment_OversizedSentenceKeptWhole(t *testing.T) {
	long := "This sentence is deliberately much longer than the tiny budget allows."
	text := "Short one. " + long + " Tail end."

	chunks, err := Segment(text, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, len(chunks))
	for i, c := range chunks {
		got[i] = c.Content
	}
	want := []string{"Short one.", long, "Tail end."}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contents mismatch (-want +got):\n%s", diff)
	}
}

func TestSegment_BoundIsInclusive(t *testing.T) {
	// "Aaaa. Bbbb." is exactly 11 characters.
	chunks, err := Segment("Aaaa. Bbbb.", 11)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk at exact bound, got %d", len(chunks))
	}

	chunks, err = Segment("Aaaa. Bbbb.", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks one below the bound, got %d", len(chunks))
	}
}

func TestSegment_Properties(t *testing.T) {
	texts := []string{
		shortSentences(40),
		"Line one\nLine two\n\nLine three. Next sentence? Yes! 42 is a number.",
		"no terminators at all just words and words and more words to pack",
		"Mixed.\r\nEndings.\rHere. and lowercase after a period. Then Upper.",
		strings.Repeat("Lorem ipsum dolor sit amet. ", 120),
	}
	bounds := []int{1, 15, 80, 700, 5000}

	for ti, text := range texts {
		units := Units(text)
		normalized := strings.Join(units, " ")
		for _, bound := range bounds {
			chunks, err := Segment(text, bound)
			if err != nil {
				t.Fatalf("text %d bound %d: unexpected error: %v", ti, bound, err)
			}

			if got := joinContents(chunks); got != normalized {
				t.Errorf("text %d bound %d: round trip mismatch\nwant %q\ngot  %q", ti, bound, normalized, got)
			}

			for i, c := range chunks {
				if c.Content == "" {
					t.Errorf("text %d bound %d: chunk %d is empty", ti, bound, i)
				}
				if len([]rune(c.Content)) > bound && len(Units(c.Content)) != 1 {
					t.Errorf("text %d bound %d: chunk %d exceeds bound with multiple units", ti, bound, i)
				}
				if c.Metadata.Index != i {
					t.Errorf("text %d bound %d: chunk %d has index %d", ti, bound, i, c.Metadata.Index)
				}
			}

			// Units cut at bare line breaks merge back together once joined
			// with spaces, so only texts whose units survive a rejoin are
			// expected to re-segment identically.
			if !cmp.Equal(Units(normalized), units) {
				continue
			}
			again, err := Segment(joinContents(chunks), bound)
			if err != nil {
				t.Fatalf("text %d bound %d: resegment error: %v", ti, bound, err)
			}
			if diff := cmp.Diff(chunks, again); diff != "" {
				t.Errorf("text %d bound %d: resegmenting changed chunks (-first +second):\n%s", ti, bound, diff)
			}
		}
	}
}

func TestSegment_FreshResultsPerCall(t *testing.T) {
	first, _ := Segment("One. Two.", 700)
	first[0].Content = "mutated"
	second, _ := Segment("One. Two.", 700)
	if second[0].Content != "One. Two." {
		t.Errorf("expected fresh result, got %q", second[0].Content)
	}
}

func TestSegmentDefault_UsesDefaultBound(t *testing.T) {
	chunks := SegmentDefault(shortSentences(40))
	if len(chunks) != 3 {
		t.Errorf("expected 3 chunks at default bound, got %d", len(chunks))
	}
}

func TestUnits(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"basic", "First. Second? Third! Fourth", []string{"First.", "Second?", "Third!", "Fourth"}},
		{"digit starts sentence", "Done. 2 more.", []string{"Done.", "2 more."}},
		{"lowercase does not split", "e.g. something else. Next", []string{"e.g. something else.", "Next"}},
		{"no space no split", "v1.2.3 is out.Next", []string{"v1.2.3 is out.Next"}},
		{"line breaks split", "alpha\nbeta\n\n  gamma  ", []string{"alpha", "beta", "gamma"}},
		{"whitespace run consumed", "One.\n\n  Two.", []string{"One.", "Two."}},
		{"unicode upper", "Fin. Éclair time.", []string{"Fin.", "Éclair time."}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Units(tt.in)); diff != "" {
				t.Errorf("units mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTopicHint(t *testing.T) {
	long := strings.Repeat("word ", 30)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"cut at first terminator", "Hello there. More text.", "Hello there."},
		{"question mark", "Why now? Because.", "Why now?"},
		{"no terminator falls back to 60", long, long[:60]},
		{"terminator beyond window", strings.Repeat("a", 95) + ". b", strings.Repeat("a", 60)},
		{"terminator at window edge", strings.Repeat("a", 89) + ". b", strings.Repeat("a", 89) + "."},
		{"short without terminator", "just words", "just words"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopicHint(tt.content); got != tt.want {
				t.Errorf("TopicHint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 700), 175},
		{"ééé", 1},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
