package chunker

// piece is an intermediate chunk of accumulated paragraphs.
type piece struct {
	text       string
	start, end int
}

// accumulateParagraphs runs the paragraph-accumulation loop shared by the
// fallback chunker, the gap filler, and hierarchical sections: paragraphs
// of doc[start:end] accumulate into a buffer bounded by target tokens;
// when a paragraph would overflow, the buffer flushes and the next one is
// re-seeded with a token-bounded suffix of trailing paragraphs. A single
// paragraph larger than target is emitted on its own — size bounds here
// are soft, the validator reports violations.
func (e *Engine) accumulateParagraphs(doc string, start, end, target, overlap int) []piece {
	paras := paragraphSpans(doc[start:end], start)

	var out []piece
	var buf []span
	bufTokens := 0
	fresh := 0

	emit := func() {
		out = append(out, piece{
			text:  joinSpans(doc, buf, "\n\n"),
			start: buf[0].start,
			end:   buf[len(buf)-1].end,
		})
	}
	reseed := func() {
		var seed []span
		seedTokens := 0
		for i := len(buf) - 1; i >= 0; i-- {
			t := e.CountTokens(doc[buf[i].start:buf[i].end])
			if seedTokens+t > overlap {
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
		pTokens := e.CountTokens(doc[p.start:p.end])
		if bufTokens+pTokens > target && fresh > 0 {
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
	return out
}

// fallbackChunks chunks a document with no usable entities: plain
// paragraph accumulation with empty entity fields.
func (e *Engine) fallbackChunks(text string) []Chunk {
	pieces := e.accumulateParagraphs(text, 0, len(text), e.cfg.ChunkSize, e.cfg.ChunkOverlap)

	chunks := make([]Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, Chunk{
			Index:       i,
			Text:        p.text,
			TokenCount:  e.CountTokens(p.text),
			Entities:    []string{},
			EntityNames: []string{},
			Position:    Position{Start: p.start, End: p.end},
		})
	}
	return chunks
}
