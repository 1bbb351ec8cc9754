package chunker

import (
	"strings"
	"testing"
)

func TestChunkDocument_EmptyText(t *testing.T) {
	e := testEngine(DefaultConfig())
	chunks, warnings := e.ChunkDocument("   \n\t  ", map[string][]Entity{
		"people": {{ID: "e1", Name: "Alpha"}},
	})
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for blank text, got %d", len(chunks))
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings for blank text, got %d", len(warnings))
	}
}

func TestChunkDocument_NoEntitiesMatchesFallback(t *testing.T) {
	e := testEngine(Config{ChunkSize: 50, ChunkOverlap: 10, MinChunkTokens: 1})

	var paras []string
	for i := 0; i < 12; i++ {
		paras = append(paras, strings.Repeat("sentence content here. ", 5))
	}
	text := strings.Join(paras, "\n\n")

	chunks, _ := e.ChunkDocument(text, nil)
	direct := e.fallbackChunks(text)

	if len(chunks) != len(direct) {
		t.Fatalf("expected %d chunks matching the fallback chunker, got %d", len(direct), len(chunks))
	}
	for i := range chunks {
		if chunks[i].Text != direct[i].Text {
			t.Errorf("chunk %d text differs from fallback output", i)
		}
		if len(chunks[i].Entities) != 0 {
			t.Errorf("chunk %d: expected empty entities on fallback path, got %v", i, chunks[i].Entities)
		}
	}
}

func TestChunkDocument_UnmatchedEntitiesFallBack(t *testing.T) {
	e := testEngine(Config{ChunkSize: 100, MinChunkTokens: 1})
	text := strings.Repeat("plain prose with no named concepts. ", 30)
	chunks, _ := e.ChunkDocument(text, map[string][]Entity{
		"concepts": {{ID: "e1", Name: "Zeppelin"}},
	})
	if len(chunks) == 0 {
		t.Fatal("expected fallback chunks when no entity matches")
	}
	for _, c := range chunks {
		if len(c.Entities) != 0 {
			t.Errorf("expected empty entity fields, got %v", c.Entities)
		}
	}
}

func TestChunkDocument_CategoriesFlattened(t *testing.T) {
	e := testEngine(Config{EntityContextWindow: 50, MinChunkTokens: 1, EntityMergeDistance: 1000})
	text := "Alpha works with Beta on shared problems. They publish together."
	chunks, _ := e.ChunkDocument(text, map[string][]Entity{
		"people":   {{ID: "e1", Name: "Alpha"}},
		"projects": {{ID: "e2", Name: "Beta"}},
	})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	got := map[string]bool{}
	for _, id := range chunks[0].Entities {
		got[id] = true
	}
	if !got["e1"] || !got["e2"] {
		t.Errorf("expected both categories' entities, got %v", chunks[0].Entities)
	}
}

// Two disjoint mention clusters with a large unrelated middle: one chunk
// per cluster plus a background chunk covering the middle.
func TestChunkDocument_ClustersAndBackground(t *testing.T) {
	e := testEngine(Config{
		EntityContextWindow: 400,
		EntityMergeDistance: 50,
		MinChunkTokens:      10,
		MaxChunkTokens:      1200,
		GapFillThreshold:    20,
	})
	text := strings.Repeat("Alpha is a concept. ", 3) +
		strings.Repeat("Beta is unrelated. ", 50) +
		"Alpha returns here."
	chunks, _ := e.ChunkDocument(text, map[string][]Entity{
		"concepts": {{ID: "e1", Name: "Alpha"}},
	})

	var anchored, background []Chunk
	for _, c := range chunks {
		if len(c.Entities) > 0 {
			anchored = append(anchored, c)
		} else {
			background = append(background, c)
		}
	}
	if len(anchored) != 2 {
		t.Fatalf("expected 2 entity-anchored chunks, got %d (total %d)", len(anchored), len(chunks))
	}
	if len(background) < 1 {
		t.Fatalf("expected at least 1 background chunk, got 0 (total %d)", len(chunks))
	}
	for i, c := range anchored {
		if len(c.Entities) != 1 || c.Entities[0] != "e1" {
			t.Errorf("anchored chunk %d: expected entities [e1], got %v", i, c.Entities)
		}
		if c.PrimaryEntity != "e1" {
			t.Errorf("anchored chunk %d: expected primary e1, got %q", i, c.PrimaryEntity)
		}
		if !strings.Contains(c.Text, "Alpha") {
			t.Errorf("anchored chunk %d does not mention Alpha", i)
		}
	}
	for i, c := range background {
		if strings.Contains(c.Text, "Alpha") {
			t.Errorf("background chunk %d unexpectedly contains Alpha", i)
		}
	}
}

func TestChunkDocument_SortedAscendingWithSequentialIndices(t *testing.T) {
	e := testEngine(Config{
		EntityContextWindow: 100,
		EntityMergeDistance: 20,
		MinChunkTokens:      5,
		GapFillThreshold:    15,
	})
	text := "Alpha opens. " + strings.Repeat("noise ", 120) + "Beta continues. " +
		strings.Repeat("noise ", 120) + "Alpha closes."
	chunks, _ := e.ChunkDocument(text, map[string][]Entity{
		"all": {{ID: "e1", Name: "Alpha"}, {ID: "e2", Name: "Beta"}},
	})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		if i > 0 && c.Position.Start < chunks[i-1].Position.Start {
			t.Errorf("chunk %d out of order", i)
		}
		if c.Position.Start < 0 || c.Position.End > len(text) || c.Position.Start > c.Position.End {
			t.Errorf("chunk %d: invalid span [%d,%d)", i, c.Position.Start, c.Position.End)
		}
	}
}

func TestChunkDocument_WarningsAreNonBlocking(t *testing.T) {
	// A document too small to ever reach the minimum still chunks; the
	// violation surfaces as a warning, not a rejection.
	e := testEngine(Config{EntityContextWindow: 40, MinChunkTokens: 500, MaxChunkTokens: 1200})
	text := "Alpha appears in a tiny document."
	chunks, warnings := e.ChunkDocument(text, map[string][]Entity{
		"concepts": {{ID: "e1", Name: "Alpha"}},
	})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	w := warnings[0]
	if w.Bound != "min" || w.Limit != 500 {
		t.Errorf("expected min-bound warning at 500, got %+v", w)
	}
	if w.ChunkIndex != chunks[0].Index || w.TokenCount != chunks[0].TokenCount {
		t.Errorf("warning does not reference the violating chunk: %+v", w)
	}
}

func TestChunkDocument_DenseMentionsExceedMaxWithoutSplitLoss(t *testing.T) {
	// Adjacent mentions merge into one span; entity names must survive in
	// every sub-chunk they appear in after splitting.
	e := testEngine(Config{
		EntityContextWindow: 60,
		EntityMergeDistance: 500,
		MinChunkTokens:      5,
		MaxChunkTokens:      80,
	})
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Alpha interacts with systems in line ")
		b.WriteString(strings.Repeat("detail ", 5))
		b.WriteString(".\n")
	}
	chunks, _ := e.ChunkDocument(b.String(), map[string][]Entity{
		"concepts": {{ID: "e1", Name: "Alpha"}},
	})
	if len(chunks) < 2 {
		t.Fatalf("expected the merged span to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		mentionsAlpha := strings.Contains(strings.ToLower(c.Text), "alpha")
		hasEntity := len(c.Entities) == 1 && c.Entities[0] == "e1"
		if mentionsAlpha != hasEntity {
			t.Errorf("chunk %d: mention=%v but entities=%v", i, mentionsAlpha, c.Entities)
		}
	}
}

func TestNew_ZeroConfigUsesDefaults(t *testing.T) {
	e := New(Config{}, nil)
	cfg := e.Config()
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults for zero config, got %+v", cfg)
	}
}

func TestWithConfig_SharesTokenCounter(t *testing.T) {
	base := New(DefaultConfig(), nil)
	derived := base.WithConfig(Config{MinChunkTokens: 5})
	if derived.tokens != base.tokens {
		t.Error("expected derived engine to share the token counter")
	}
	if derived.Config().MinChunkTokens != 5 {
		t.Errorf("expected overridden MinChunkTokens, got %d", derived.Config().MinChunkTokens)
	}
	if derived.Config().MaxChunkTokens != DefaultConfig().MaxChunkTokens {
		t.Errorf("expected remaining knobs backfilled with defaults")
	}
}
