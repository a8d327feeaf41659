package drafts

import (
	"context"
	"crypto/sha256"
	"fmt"
	"slices"
	"strconv"

	"github.com/dgallion1/quadboard/internal/chunker"
	"github.com/dgallion1/quadboard/internal/kv"
	"github.com/dgallion1/quadboard/internal/outline"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	rulesetKey    = "draft.ir"
	compendiumKey = "draft.kcs"
	maxCharsKey   = "draft.kcs.max"

	derivedCacheSize = 32
)

// Ruleset is the raw ruleset text and its structured outline.
type Ruleset struct {
	Raw     string `json:"raw"`
	Outline string `json:"outline"`
}

// Compendium is the raw compendium text and its chunks.
type Compendium struct {
	Raw           string          `json:"raw"`
	MaxChunkChars int             `json:"max_chunk_chars"`
	Chunks        []chunker.Chunk `json:"chunks"`
}

// Service persists the working texts and derives results on every read.
// Derived outlines and chunk lists are memoized by content hash.
type Service struct {
	store           kv.Store
	defaultMaxChars int

	outlines *lru.Cache[[sha256.Size]byte, string]
	chunks   *lru.Cache[[sha256.Size]byte, []chunker.Chunk]
}

func NewService(store kv.Store, defaultMaxChars int) *Service {
	if defaultMaxChars <= 0 {
		defaultMaxChars = chunker.DefaultMaxChunkChars
	}
	// lru.New only fails for a non-positive size.
	outlines, _ := lru.New[[sha256.Size]byte, string](derivedCacheSize)
	chunks, _ := lru.New[[sha256.Size]byte, []chunker.Chunk](derivedCacheSize)
	return &Service{
		store:           store,
		defaultMaxChars: defaultMaxChars,
		outlines:        outlines,
		chunks:          chunks,
	}
}

// Ruleset loads the saved ruleset text and structures it.
func (s *Service) Ruleset(ctx context.Context) (Ruleset, error) {
	raw, _, err := s.store.Get(ctx, rulesetKey)
	if err != nil {
		return Ruleset{}, fmt.Errorf("load ruleset: %w", err)
	}
	return Ruleset{Raw: raw, Outline: s.structure(raw)}, nil
}

// SaveRuleset stores raw and returns the derived outline.
func (s *Service) SaveRuleset(ctx context.Context, raw string) (Ruleset, error) {
	if err := s.store.Set(ctx, rulesetKey, raw); err != nil {
		return Ruleset{}, fmt.Errorf("save ruleset: %w", err)
	}
	return Ruleset{Raw: raw, Outline: s.structure(raw)}, nil
}

// Compendium loads the saved compendium text and bound, then segments it.
func (s *Service) Compendium(ctx context.Context) (Compendium, error) {
	raw, _, err := s.store.Get(ctx, compendiumKey)
	if err != nil {
		return Compendium{}, fmt.Errorf("load compendium: %w", err)
	}
	maxChars, err := s.maxChars(ctx)
	if err != nil {
		return Compendium{}, err
	}
	return s.segment(raw, maxChars)
}

// SaveCompendium stores raw and, when maxChars is positive, the chunk bound.
// A zero maxChars keeps the saved bound; a negative one is rejected before
// anything is written.
func (s *Service) SaveCompendium(ctx context.Context, raw string, maxChars int) (Compendium, error) {
	if maxChars < 0 {
		return Compendium{}, fmt.Errorf("%w: %d", chunker.ErrInvalidChunkSize, maxChars)
	}
	explicit := maxChars > 0
	if !explicit {
		var err error
		if maxChars, err = s.maxChars(ctx); err != nil {
			return Compendium{}, err
		}
	}
	// The bound is written only after the text is saved.
	if err := s.store.Set(ctx, compendiumKey, raw); err != nil {
		return Compendium{}, fmt.Errorf("save compendium: %w", err)
	}
	if explicit {
		if err := s.store.Set(ctx, maxCharsKey, strconv.Itoa(maxChars)); err != nil {
			return Compendium{}, fmt.Errorf("save chunk bound: %w", err)
		}
	}
	return s.segment(raw, maxChars)
}

// ClearRuleset removes the saved ruleset text.
func (s *Service) ClearRuleset(ctx context.Context) error {
	if err := s.store.Delete(ctx, rulesetKey); err != nil {
		return fmt.Errorf("clear ruleset: %w", err)
	}
	return nil
}

// ClearCompendium removes the saved compendium text and its bound.
func (s *Service) ClearCompendium(ctx context.Context) error {
	for _, key := range []string{compendiumKey, maxCharsKey} {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear compendium: %w", err)
		}
	}
	return nil
}

func (s *Service) maxChars(ctx context.Context) (int, error) {
	v, ok, err := s.store.Get(ctx, maxCharsKey)
	if err != nil {
		return 0, fmt.Errorf("load chunk bound: %w", err)
	}
	if !ok {
		return s.defaultMaxChars, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return s.defaultMaxChars, nil
	}
	return n, nil
}

func (s *Service) structure(raw string) string {
	key := sha256.Sum256([]byte(raw))
	if out, ok := s.outlines.Get(key); ok {
		return out
	}
	out := outline.Structure(raw)
	s.outlines.Add(key, out)
	return out
}

// segment returns a fresh slice on every call; cached chunks are never
// handed out directly.
func (s *Service) segment(raw string, maxChars int) (Compendium, error) {
	key := sha256.Sum256([]byte(strconv.Itoa(maxChars) + "\x00" + raw))
	if chunks, ok := s.chunks.Get(key); ok {
		return Compendium{Raw: raw, MaxChunkChars: maxChars, Chunks: slices.Clone(chunks)}, nil
	}
	chunks, err := chunker.Segment(raw, maxChars)
	if err != nil {
		return Compendium{}, err
	}
	s.chunks.Add(key, chunks)
	return Compendium{Raw: raw, MaxChunkChars: maxChars, Chunks: slices.Clone(chunks)}, nil
}
