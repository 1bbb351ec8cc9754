package chunker

import "sort"

const (
	// Target/overlap tokens for background chunks, looser than the
	// large-chunk splitter on purpose: gaps are low-signal regions.
	gapChunkTarget  = 600
	gapChunkOverlap = 100
	// Character window for attaching nearby entities to a background chunk.
	nearbyEntityWindow = 500
)

// fillGaps detects regions of the document not covered by any
// entity-derived chunk and manufactures background chunks for regions
// large enough to matter. All chunks are then sorted once by position and
// indices assigned in a single pass.
func (e *Engine) fillGaps(text string, chunks []Chunk, contexts []entityContext, entities []Entity) []Chunk {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Position.Start < chunks[j].Position.Start
	})

	gaps := e.chunkGaps(text, chunks)
	if len(gaps) == 0 && len(contexts) > 0 {
		gaps = e.contextGaps(text, contexts)
	}

	for _, g := range gaps {
		for _, p := range e.accumulateParagraphs(text, g.start, g.end, gapChunkTarget, gapChunkOverlap) {
			nearby := e.nearbyEntities(text, entities, p.start, p.end)
			ids, names, primary := filterEntities(p.text, nearby, "")
			chunks = append(chunks, Chunk{
				Text:          p.text,
				TokenCount:    e.CountTokens(p.text),
				Entities:      ids,
				EntityNames:   names,
				PrimaryEntity: primary,
				Position:      Position{Start: p.start, End: p.end},
			})
		}
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Position.Start < chunks[j].Position.Start
	})
	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// chunkGaps walks the position-sorted chunks and collects uncovered
// regions of at least GapFillThreshold tokens, including the stretches
// before the first chunk and after the last.
func (e *Engine) chunkGaps(text string, sorted []Chunk) []span {
	var gaps []span
	cursor := 0
	for _, c := range sorted {
		if c.Position.Start > cursor &&
			e.CountTokens(text[cursor:c.Position.Start]) >= e.cfg.GapFillThreshold {
			gaps = append(gaps, span{cursor, c.Position.Start})
		}
		if c.Position.End > cursor {
			cursor = c.Position.End
		}
	}
	if cursor < len(text) &&
		e.CountTokens(text[cursor:]) >= e.cfg.GapFillThreshold {
		gaps = append(gaps, span{cursor, len(text)})
	}
	return gaps
}

// contextGaps is the secondary detection pass over raw entity contexts
// at half the normal threshold. It runs only when the chunk-level pass
// found nothing at all: a document with one large gap plus several small
// inter-entity gaps never reaches it.
func (e *Engine) contextGaps(text string, contexts []entityContext) []span {
	byMention := make([]entityContext, len(contexts))
	copy(byMention, contexts)
	sort.SliceStable(byMention, func(i, j int) bool {
		return byMention[i].start < byMention[j].start
	})

	half := e.cfg.GapFillThreshold / 2
	var gaps []span
	for i := 1; i < len(byMention); i++ {
		prev, cur := byMention[i-1], byMention[i]
		if cur.contextStart > prev.contextEnd &&
			e.CountTokens(text[prev.contextEnd:cur.contextStart]) >= half {
			gaps = append(gaps, span{prev.contextEnd, cur.contextStart})
		}
	}
	return gaps
}

// nearbyEntities finds entities mentioned within nearbyEntityWindow
// characters before the chunk's start or before its end, the same
// case-insensitive scan used for context extraction.
func (e *Engine) nearbyEntities(text string, entities []Entity, start, end int) map[string]string {
	nearby := make(map[string]string)
	windows := []span{
		{max(0, start-nearbyEntityWindow), start},
		{max(0, end-nearbyEntityWindow), end},
	}
	for _, w := range windows {
		region := text[w.start:w.end]
		for _, ent := range entities {
			if ent.ID == "" || ent.Name == "" {
				continue
			}
			if containsFold(region, ent.Name) {
				nearby[ent.Name] = ent.ID
			}
		}
	}
	return nearby
}
