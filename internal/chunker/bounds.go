package chunker

import "strings"

// Sentence and paragraph boundary helpers. All spans are half-open
// [start, end) character offsets and never walk past document bounds.

// isSentenceDelim reports whether b is a safe truncation point.
func isSentenceDelim(b byte) bool {
	return b == '.' || b == '!' || b == '?' || b == '\n'
}

// expandToSentences widens [start, end) outward to the nearest sentence
// delimiters: left until the character before start is a delimiter, right
// until the character at end is a delimiter, then one more so the
// delimiter itself is captured.
func expandToSentences(text string, start, end int) (int, int) {
	for start > 0 && !isSentenceDelim(text[start-1]) {
		start--
	}
	for end < len(text) && !isSentenceDelim(text[end]) {
		end++
	}
	if end < len(text) && isSentenceDelim(text[end]) {
		end++
	}
	return start, end
}

// span is a half-open character range in document coordinates.
type span struct {
	start, end int
}

// lineSpans splits text[base:] on single newlines, skipping blank lines.
// Offsets are absolute (shifted by base). Used by the large-chunk
// splitter, which treats every non-blank line as a paragraph.
func lineSpans(text string, base int) []span {
	return splitSpans(text, base, "\n")
}

// paragraphSpans splits on blank lines, the paragraph shape the fallback
// and gap-fill chunkers accumulate.
func paragraphSpans(text string, base int) []span {
	return splitSpans(text, base, "\n\n")
}

func splitSpans(text string, base int, sep string) []span {
	var spans []span
	pos := 0
	for pos <= len(text) {
		next := strings.Index(text[pos:], sep)
		var seg string
		var segEnd int
		if next < 0 {
			seg = text[pos:]
			segEnd = len(text)
		} else {
			seg = text[pos : pos+next]
			segEnd = pos + next
		}
		// Tighten the span to the non-blank content.
		trimStart := pos + leadingSpace(seg)
		trimEnd := segEnd - trailingSpace(seg)
		if trimStart < trimEnd {
			spans = append(spans, span{base + trimStart, base + trimEnd})
		}
		if next < 0 {
			break
		}
		pos = segEnd + len(sep)
	}
	return spans
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t\r\n"))
}

func trailingSpace(s string) int {
	return len(s) - len(strings.TrimRight(s, " \t\r\n"))
}

// wordSpans locates whitespace-delimited words in text[base:], offsets
// absolute. Used for word-granularity splitting of oversized paragraphs.
func wordSpans(text string, base int) []span {
	var spans []span
	inWord := false
	start := 0
	for i := 0; i < len(text); i++ {
		isSpace := text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r'
		if !isSpace && !inWord {
			inWord = true
			start = i
		} else if isSpace && inWord {
			inWord = false
			spans = append(spans, span{base + start, base + i})
		}
	}
	if inWord {
		spans = append(spans, span{base + start, base + len(text)})
	}
	return spans
}
