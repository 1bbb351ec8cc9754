package chunker

import (
	"fmt"
	"strings"
	"testing"
)

func TestFallbackChunks_SingleSmallDocument(t *testing.T) {
	e := testEngine(DefaultConfig())
	chunks := e.fallbackChunks("one short paragraph\n\nand a second one")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Index != 0 {
		t.Errorf("expected index 0, got %d", c.Index)
	}
	if len(c.Entities) != 0 || len(c.EntityNames) != 0 || c.PrimaryEntity != "" {
		t.Errorf("expected empty entity fields, got %v / %v / %q", c.Entities, c.EntityNames, c.PrimaryEntity)
	}
}

func TestFallbackChunks_BoundedAccumulation(t *testing.T) {
	e := testEngine(Config{ChunkSize: 60, ChunkOverlap: 15})
	var paras []string
	for i := 0; i < 20; i++ {
		paras = append(paras, fmt.Sprintf("paragraph %02d holds roughly a dozen words of steady filler text here", i))
	}
	text := strings.Join(paras, "\n\n")

	chunks := e.fallbackChunks(text)
	if len(chunks) < 3 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
	}
	// Every paragraph survives somewhere.
	joined := strings.Join(collectTexts(chunks), "\n")
	for _, p := range paras {
		if !strings.Contains(joined, p) {
			t.Errorf("paragraph missing from output: %q", p)
		}
	}
}

func TestFallbackChunks_OverlapReseedsNextChunk(t *testing.T) {
	e := testEngine(Config{ChunkSize: 50, ChunkOverlap: 20})
	var paras []string
	for i := 0; i < 12; i++ {
		paras = append(paras, fmt.Sprintf("p%02d alpha beta gamma delta epsilon", i))
	}
	chunks := e.fallbackChunks(strings.Join(paras, "\n\n"))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		firstPara := strings.Split(cur.Text, "\n\n")[0]
		if !strings.Contains(prev.Text, firstPara) {
			t.Errorf("chunk %d does not begin with overlap from its predecessor", i)
		}
	}
}

func TestFallbackChunks_OversizedParagraphEmittedAlone(t *testing.T) {
	e := testEngine(Config{ChunkSize: 20, ChunkOverlap: 5})
	big := strings.Repeat("overflowing words everywhere ", 30)
	text := "small lead paragraph\n\n" + big + "\n\nsmall tail paragraph"
	chunks := e.fallbackChunks(text)

	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, "overflowing") && c.TokenCount > 20 {
			found = true
		}
	}
	if !found {
		t.Error("expected the oversized paragraph to be emitted despite exceeding the target")
	}
}

func collectTexts(chunks []Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}
