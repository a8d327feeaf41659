package drafts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/quadboard/internal/chunker"
	"github.com/dgallion1/quadboard/internal/kv"
)

// failingStore rejects writes to one key.
type failingStore struct {
	*kv.Memory
	failKey string
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestRuleset_EmptyByDefault(t *testing.T) {
	s := NewService(kv.NewMemory(), 700)
	rs, err := s.Ruleset(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rs.Raw != "" || rs.Outline != "" {
		t.Errorf("expected empty ruleset, got %+v", rs)
	}
}

func TestRuleset_SaveAndReload(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := NewService(store, 700)

	saved, err := s.SaveRuleset(ctx, "Tone:\nBe concise\nBe kind")
	if err != nil {
		t.Fatalf("SaveRuleset() error = %v", err)
	}
	want := "## Tone\n- Be concise\n  - Be kind"
	if saved.Outline != want {
		t.Errorf("expected outline %q, got %q", want, saved.Outline)
	}

	reloaded, err := NewService(store, 700).Ruleset(ctx)
	if err != nil {
		t.Fatalf("Ruleset() error = %v", err)
	}
	if reloaded != saved {
		t.Errorf("expected reload to match save: %+v vs %+v", reloaded, saved)
	}
}

func TestCompendium_BoundPersistence(t *testing.T) {
	ctx := context.Background()
	s := NewService(kv.NewMemory(), 700)
	text := strings.Repeat("Short sentence here. ", 20)

	c, err := s.SaveCompendium(ctx, text, 0)
	if err != nil {
		t.Fatalf("SaveCompendium() error = %v", err)
	}
	if c.MaxChunkChars != 700 {
		t.Errorf("expected default bound, got %d", c.MaxChunkChars)
	}
	if len(c.Chunks) != 1 {
		t.Errorf("expected 1 chunk at default bound, got %d", len(c.Chunks))
	}

	c, err = s.SaveCompendium(ctx, text, 100)
	if err != nil {
		t.Fatalf("SaveCompendium() error = %v", err)
	}
	if len(c.Chunks) < 2 {
		t.Errorf("expected multiple chunks at bound 100, got %d", len(c.Chunks))
	}

	reloaded, err := s.Compendium(ctx)
	if err != nil {
		t.Fatalf("Compendium() error = %v", err)
	}
	if reloaded.MaxChunkChars != 100 || len(reloaded.Chunks) != len(c.Chunks) {
		t.Errorf("expected saved bound to stick, got %d with %d chunks", reloaded.MaxChunkChars, len(reloaded.Chunks))
	}
}

func TestCompendium_NegativeBoundRejected(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := NewService(store, 700)

	_, err := s.SaveCompendium(ctx, "Text.", -3)
	if !errors.Is(err, chunker.ErrInvalidChunkSize) {
		t.Errorf("expected ErrInvalidChunkSize, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, compendiumKey); ok {
		t.Error("expected nothing written on rejected save")
	}
}

func TestCompendium_EmptyText(t *testing.T) {
	c, err := NewService(kv.NewMemory(), 0).Compendium(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Chunks == nil || len(c.Chunks) != 0 {
		t.Errorf("expected empty chunk list, got %#v", c.Chunks)
	}
	if c.MaxChunkChars != chunker.DefaultMaxChunkChars {
		t.Errorf("expected default bound, got %d", c.MaxChunkChars)
	}
}

func TestCompendium_CachedChunksNotShared(t *testing.T) {
	ctx := context.Background()
	s := NewService(kv.NewMemory(), 700)
	if _, err := s.SaveCompendium(ctx, "One. Two.", 0); err != nil {
		t.Fatalf("SaveCompendium() error = %v", err)
	}

	first, err := s.Compendium(ctx)
	if err != nil {
		t.Fatalf("Compendium() error = %v", err)
	}
	first.Chunks[0].Content = "mutated"

	second, err := s.Compendium(ctx)
	if err != nil {
		t.Fatalf("Compendium() error = %v", err)
	}
	if second.Chunks[0].Content != "One. Two." {
		t.Errorf("expected cached chunks to be isolated, got %q", second.Chunks[0].Content)
	}
}

func TestRuleset_OutlineFollowsText(t *testing.T) {
	ctx := context.Background()
	s := NewService(kv.NewMemory(), 700)
	s.SaveRuleset(ctx, "A:\nx")
	rs, _ := s.SaveRuleset(ctx, "B:\ny")
	if rs.Outline != "## B\n- y" {
		t.Errorf("expected outline for latest text, got %q", rs.Outline)
	}
}

func TestCompendium_FailedTextWriteKeepsBound(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Memory: kv.NewMemory()}
	s := NewService(store, 700)
	if _, err := s.SaveCompendium(ctx, "Old text.", 50); err != nil {
		t.Fatalf("SaveCompendium() error = %v", err)
	}

	store.failKey = compendiumKey
	if _, err := s.SaveCompendium(ctx, "New text.", 120); err == nil {
		t.Fatal("expected error when the text write fails")
	}

	c, err := s.Compendium(ctx)
	if err != nil {
		t.Fatalf("Compendium() error = %v", err)
	}
	if c.Raw != "Old text." || c.MaxChunkChars != 50 {
		t.Errorf("expected old text at old bound, got %q at %d", c.Raw, c.MaxChunkChars)
	}
}

func TestClearDrafts(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := NewService(store, 700)
	s.SaveRuleset(ctx, "Tone:\nBe kind")
	s.SaveCompendium(ctx, "Some text.", 90)

	if err := s.ClearRuleset(ctx); err != nil {
		t.Fatalf("ClearRuleset() error = %v", err)
	}
	if err := s.ClearCompendium(ctx); err != nil {
		t.Fatalf("ClearCompendium() error = %v", err)
	}
	for _, key := range []string{rulesetKey, compendiumKey, maxCharsKey} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Errorf("expected %s to be removed", key)
		}
	}
	c, _ := s.Compendium(ctx)
	if c.MaxChunkChars != 700 || len(c.Chunks) != 0 {
		t.Errorf("expected empty compendium at default bound, got %+v", c)
	}

	// Clearing again is a no-op.
	if err := s.ClearCompendium(ctx); err != nil {
		t.Errorf("second ClearCompendium() error = %v", err)
	}
}
