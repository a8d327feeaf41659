package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/quadboard/internal/textutil"
)

// DefaultMaxChunkChars is the chunk budget used when the caller has no preference.
const DefaultMaxChunkChars = 700

// ErrInvalidChunkSize is returned for a non-positive chunk budget.
var ErrInvalidChunkSize = errors.New("max chunk chars must be positive")

const (
	topicWindow   = 90
	topicFallback = 60
)

// Metadata is derived from a chunk's content.
type Metadata struct {
	Index         int    `json:"index"`
	TokenEstimate int    `json:"tokenEstimate"`
	WordCount     int    `json:"wordCount"`
	TopicHint     string `json:"topicHint"`
}

// Chunk is a run of whole sentences plus its metadata.
type Chunk struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// SegmentDefault segments text with DefaultMaxChunkChars.
func SegmentDefault(text string) []Chunk {
	chunks, _ := Segment(text, DefaultMaxChunkChars)
	return chunks
}

// Segment splits text into sentence units and greedily packs them into
// chunks of at most maxChunkChars characters. A unit longer than the budget
// is never split; it becomes a chunk of its own.
func Segment(text string, maxChunkChars int) ([]Chunk, error) {
	if maxChunkChars <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, maxChunkChars)
	}

	chunks := []Chunk{}
	text = textutil.Normalize(text)
	if text == "" {
		return chunks, nil
	}

	var current strings.Builder
	currentLen := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, newChunk(current.String(), len(chunks)))
		current.Reset()
		currentLen = 0
	}

	for _, unit := range Units(text) {
		unitLen := textutil.Len(unit)

		// Would adding this unit exceed the budget?
		if currentLen > 0 && currentLen+1+unitLen > maxChunkChars {
			flush()
		}

		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(unit)
		currentLen += unitLen
	}
	flush()

	return chunks, nil
}

// Units returns the sentence-like units of text in order: sentences split at
// terminator boundaries, then at line breaks, trimmed, with empties dropped.
func Units(text string) []string {
	var units []string
	for _, sent := range splitSentences(textutil.Normalize(text)) {
		for _, line := range strings.Split(sent, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				units = append(units, line)
			}
		}
	}
	return units
}

// splitSentences cuts at a whitespace run that follows '.', '?' or '!' and
// precedes an uppercase letter or digit. The whitespace run is consumed.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '?' && r != '!' {
			continue
		}

		end := i
		for end < len(text) {
			ws, n := utf8.DecodeRuneInString(text[end:])
			if !unicode.IsSpace(ws) {
				break
			}
			end += n
		}
		if end == i || end == len(text) {
			continue
		}

		next, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsUpper(next) || unicode.IsDigit(next) {
			sentences = append(sentences, text[start:i])
			start = end
			i = end
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}

func newChunk(content string, index int) Chunk {
	return Chunk{
		ID:      fmt.Sprintf("kcs-%d", index+1),
		Content: content,
		Metadata: Metadata{
			Index:         index,
			TokenEstimate: EstimateTokens(content),
			WordCount:     len(strings.Fields(content)),
			TopicHint:     TopicHint(content),
		},
	}
}

// TopicHint returns the first sentence of content when it ends within the
// first 90 characters, otherwise the first 60 characters.
func TopicHint(content string) string {
	window := textutil.Prefix(content, topicWindow)
	if i := strings.IndexAny(window, ".?!"); i >= 0 {
		return window[:i+1]
	}
	return textutil.Prefix(content, topicFallback)
}
