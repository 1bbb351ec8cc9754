package chunker

import (
	"sort"
	"strings"
)

const (
	// Character increment for growing an undersized chunk span.
	expandStep = 100
	// Token overlap carried between consecutive split sub-chunks.
	splitOverlapTokens = 50
	// Word overlap between word-granularity sub-chunks.
	splitWordOverlap = 20
)

// buildChunks materializes each merged context as a chunk: spans below
// MinChunkTokens are expanded into the surrounding text, spans above
// MaxChunkTokens are handed to the large-chunk splitter.
func (e *Engine) buildChunks(text string, merged []mergedContext) []Chunk {
	var chunks []Chunk
	index := 0

	for _, m := range merged {
		start, end := m.start, m.end
		chunkText := strings.TrimSpace(text[start:end])
		if chunkText == "" {
			continue
		}

		if e.CountTokens(chunkText) < e.cfg.MinChunkTokens {
			start, end = e.expandSpan(text, start, end)
			start, end = expandToSentences(text, start, end)
			chunkText = strings.TrimSpace(text[start:end])
		}

		if e.CountTokens(chunkText) > e.cfg.MaxChunkTokens {
			sub := e.splitLargeChunk(text, start, end, m, index)
			chunks = append(chunks, sub...)
			index += len(sub)
			continue
		}

		chunks = append(chunks, e.makeChunk(index, chunkText, m, start, end))
		index++
	}
	return chunks
}

// expandSpan grows [start, end) in expandStep increments toward
// MinChunkTokens. A side only grows while the grown span stays within
// MaxChunkTokens; expansion stops when the target is reached or neither
// side can move. The two sides are evaluated independently, not jointly
// optimized.
func (e *Engine) expandSpan(text string, start, end int) (int, int) {
	for e.CountTokens(text[start:end]) < e.cfg.MinChunkTokens {
		grew := false

		if start > 0 {
			next := max(0, start-expandStep)
			if e.CountTokens(text[next:end]) <= e.cfg.MaxChunkTokens {
				start = next
				grew = true
			}
		}
		if e.CountTokens(text[start:end]) >= e.cfg.MinChunkTokens {
			break
		}
		if end < len(text) {
			next := min(len(text), end+expandStep)
			if e.CountTokens(text[start:next]) <= e.cfg.MaxChunkTokens {
				end = next
				grew = true
			}
		}

		if !grew {
			break
		}
	}
	return start, end
}

// splitLargeChunk breaks an oversized span into multiple chunks. Lines
// accumulate into a buffer; before a line would push the buffer past
// MaxChunkTokens the buffer is flushed and re-seeded with a token-bounded
// suffix of itself for continuity. A single line that alone exceeds the
// bound is split at word granularity, and the tail of its last sub-chunk
// seeds the next buffer.
func (e *Engine) splitLargeChunk(text string, start, end int, m mergedContext, startIndex int) []Chunk {
	paras := lineSpans(text[start:end], start)

	var chunks []Chunk
	index := startIndex

	var buf []span
	bufTokens := 0
	fresh := 0 // spans added since the last flush; pure-overlap buffers are never emitted

	emit := func() {
		chunkText := joinSpans(text, buf, "\n")
		chunks = append(chunks, e.makeChunk(index, chunkText, m, buf[0].start, buf[len(buf)-1].end))
		index++
	}
	reseed := func() {
		var seed []span
		seedTokens := 0
		for i := len(buf) - 1; i >= 0; i-- {
			t := e.CountTokens(text[buf[i].start:buf[i].end])
			if seedTokens+t > splitOverlapTokens {
				break
			}
			seed = append([]span{buf[i]}, seed...)
			seedTokens += t
		}
		buf = seed
		bufTokens = seedTokens
		fresh = 0
	}

	for _, p := range paras {
		pTokens := e.CountTokens(text[p.start:p.end])

		if pTokens > e.cfg.MaxChunkTokens {
			if fresh > 0 {
				emit()
			}
			wordChunks, tail, tailTokens := e.splitParagraphWords(text, p, m, index)
			chunks = append(chunks, wordChunks...)
			index += len(wordChunks)
			buf = []span{tail}
			bufTokens = tailTokens
			fresh = 0
			continue
		}

		if bufTokens+pTokens > e.cfg.MaxChunkTokens && fresh > 0 {
			emit()
			reseed()
		}
		buf = append(buf, p)
		bufTokens += pTokens
		fresh++
	}
	if fresh > 0 {
		emit()
	}
	return chunks
}

// splitParagraphWords splits one oversized paragraph at word boundaries
// with splitWordOverlap words carried between sub-chunks. Returns the
// sub-chunks plus the tail span (the last ~20 words of the final
// sub-chunk) that seeds the caller's next buffer.
func (e *Engine) splitParagraphWords(text string, p span, m mergedContext, startIndex int) ([]Chunk, span, int) {
	words := wordSpans(text[p.start:p.end], p.start)
	if len(words) == 0 {
		return nil, span{p.start, p.start}, 0
	}
	wtok := make([]int, len(words))
	for i, w := range words {
		wtok[i] = e.CountTokens(text[w.start:w.end])
	}

	var chunks []Chunk
	index := startIndex
	var tail span
	tailTokens := 0

	start := 0
	for start < len(words) {
		tokens := 0
		end := start
		for end < len(words) && (end == start || tokens+wtok[end] <= e.cfg.MaxChunkTokens) {
			tokens += wtok[end]
			end++
		}

		chunkText := text[words[start].start:words[end-1].end]
		chunks = append(chunks, e.makeChunk(index, chunkText, m, words[start].start, words[end-1].end))
		index++

		if end == len(words) {
			ts := max(start, end-splitWordOverlap)
			tail = span{words[ts].start, words[end-1].end}
			tailTokens = e.CountTokens(text[tail.start:tail.end])
			break
		}
		next := end - splitWordOverlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks, tail, tailTokens
}

// joinSpans concatenates text slices with sep.
func joinSpans(text string, spans []span, sep string) string {
	var b strings.Builder
	for i, s := range spans {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(text[s.start:s.end])
	}
	return b.String()
}

// makeChunk builds a chunk with entities re-derived from the final text.
func (e *Engine) makeChunk(index int, chunkText string, m mergedContext, start, end int) Chunk {
	ids, names, primary := filterEntities(chunkText, m.entityMap, m.primary)
	return Chunk{
		Index:         index,
		Text:          chunkText,
		TokenCount:    e.CountTokens(chunkText),
		Entities:      ids,
		EntityNames:   names,
		PrimaryEntity: primary,
		Position:      Position{Start: start, End: end},
	}
}

// filterEntities keeps only the entities whose name survives in the
// final chunk text, under the same fold matching the extractor uses. A
// merged-in entity whose mention was excluded by boundary adjustment
// drops out here. If the proposed primary is filtered away it is
// replaced by the first kept id, or emptied when none remain.
// Idempotent by construction.
func filterEntities(chunkText string, entityMap map[string]string, primary string) (ids, names []string, _ string) {
	sorted := make([]string, 0, len(entityMap))
	for name := range entityMap {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	ids = []string{}
	names = []string{}
	for _, name := range sorted {
		if containsFold(chunkText, name) {
			ids = append(ids, entityMap[name])
			names = append(names, name)
		}
	}

	keep := false
	for _, id := range ids {
		if id == primary {
			keep = true
			break
		}
	}
	if !keep {
		primary = ""
		if len(ids) > 0 {
			primary = ids[0]
		}
	}
	return ids, names, primary
}
