package chunker

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// section is a heading-delimited region of the document with its full
// heading path from the root.
type section struct {
	path       []string
	start, end int
}

// ChunkTextHierarchical partitions text into markdown heading sections
// and chunks each section independently with the paragraph accumulator.
// Chunks carry a deterministic id chunk_{documentID}_{index} (the index
// continues across sections) and the section's heading path, used
// downstream for citation display. Text before any heading, or the whole
// document when it has no headings, falls under ["Document"].
func (e *Engine) ChunkTextHierarchical(text, documentID string) []SectionChunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []SectionChunk
	index := 0
	for _, sec := range sectionSpans(text) {
		for _, p := range e.accumulateParagraphs(text, sec.start, sec.end, e.cfg.ChunkSize, e.cfg.ChunkOverlap) {
			out = append(out, SectionChunk{
				Text:              p.text,
				ChunkID:           fmt.Sprintf("chunk_%s_%d", documentID, index),
				SectionPath:       copyPath(sec.path),
				EntitiesMentioned: []string{},
			})
			index++
		}
	}
	return out
}

// sectionSpans locates headings with goldmark and slices the raw source
// between them, so section bodies keep their original formatting. A
// stack tracks the current nesting: pushing a heading pops every entry
// at the same or deeper level first.
func sectionSpans(text string) []section {
	src := []byte(text)
	md := goldmark.New()
	doc := md.Parser().Parse(gmtext.NewReader(src))

	type heading struct {
		level     int
		title     string
		lineStart int // offset of the heading's own line
		bodyStart int // offset just past the heading text
	}
	var heads []heading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		first := h.Lines().At(0)
		last := h.Lines().At(h.Lines().Len() - 1)
		heads = append(heads, heading{
			level:     h.Level,
			title:     strings.TrimSpace(string(h.Text(src))),
			lineStart: strings.LastIndexByte(text[:first.Start], '\n') + 1,
			bodyStart: last.Stop,
		})
	}

	if len(heads) == 0 {
		return []section{{path: []string{"Document"}, start: 0, end: len(text)}}
	}

	var sections []section
	if strings.TrimSpace(text[:heads[0].lineStart]) != "" {
		sections = append(sections, section{
			path:  []string{"Document"},
			start: 0,
			end:   heads[0].lineStart,
		})
	}

	type stackEntry struct {
		title string
		level int
	}
	var stack []stackEntry

	for i, h := range heads {
		for len(stack) > 0 && stack[len(stack)-1].level >= h.level {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, stackEntry{title: h.title, level: h.level})

		end := len(text)
		if i+1 < len(heads) {
			end = heads[i+1].lineStart
		}

		path := make([]string, len(stack))
		for j, s := range stack {
			path[j] = s.title
		}
		sections = append(sections, section{path: path, start: h.bodyStart, end: end})
	}
	return sections
}

func copyPath(path []string) []string {
	if len(path) == 0 {
		return nil
	}
	out := make([]string, len(path))
	copy(out, path)
	return out
}
