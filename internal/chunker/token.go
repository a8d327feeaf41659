package chunker

import "github.com/dgallion1/quadboard/internal/textutil"

// EstimateTokens gives a rough token count using the ~4 chars/token heuristic,
// rounded up. Downstream tooling depends on this exact formula.
func EstimateTokens(text string) int {
	return (textutil.Len(text) + 3) / 4
}
