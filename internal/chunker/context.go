package chunker

import "sort"

// extractContexts scans text for every occurrence of every entity name
// and builds a sentence-expanded context window around each. The search
// is case-insensitive via rune folding over the raw text, so match
// offsets are always valid offsets into text, and non-overlapping: the
// next scan resumes at the end of the previous match, so a name can
// never match inside itself. Entities with an empty name or id are
// skipped.
//
// An entity mentioned five times yields five contexts. The result is
// sorted ascending by context start, the order the merger expects.
func (e *Engine) extractContexts(text string, entities []Entity) []entityContext {
	var contexts []entityContext
	for _, ent := range entities {
		if ent.ID == "" || ent.Name == "" {
			continue
		}
		for pos := 0; pos < len(text); {
			start, end := indexFold(text, ent.Name, pos)
			if start < 0 {
				break
			}

			ctxStart := max(0, start-e.cfg.EntityContextWindow)
			ctxEnd := min(len(text), end+e.cfg.EntityContextWindow)
			ctxStart, ctxEnd = expandToSentences(text, ctxStart, ctxEnd)

			contexts = append(contexts, entityContext{
				entityID:     ent.ID,
				entityName:   ent.Name,
				start:        start,
				end:          end,
				contextStart: ctxStart,
				contextEnd:   ctxEnd,
			})
			pos = end
		}
	}

	sort.SliceStable(contexts, func(i, j int) bool {
		return contexts[i].contextStart < contexts[j].contextStart
	})
	return contexts
}

// mergeContexts greedily collapses contexts that sit close together into
// single candidate spans. Two gap measures are checked against the last
// context in the open group: the token gap between the context windows,
// and the token gap between the actual entity mentions. Both must be
// within EntityMergeDistance or the group closes.
func (e *Engine) mergeContexts(text string, contexts []entityContext) []mergedContext {
	if len(contexts) == 0 {
		return nil
	}

	var merged []mergedContext
	group := []entityContext{contexts[0]}

	for _, c := range contexts[1:] {
		prev := group[len(group)-1]

		windowGap := 0
		if c.contextStart > prev.contextEnd {
			windowGap = e.CountTokens(text[prev.contextEnd:c.contextStart])
		}
		mentionGap := 0
		if c.start > prev.end {
			mentionGap = e.CountTokens(text[prev.end:c.start])
		}

		if windowGap <= e.cfg.EntityMergeDistance && mentionGap <= e.cfg.EntityMergeDistance {
			group = append(group, c)
		} else {
			merged = append(merged, closeGroup(group))
			group = []entityContext{c}
		}
	}
	merged = append(merged, closeGroup(group))

	return merged
}

// closeGroup collapses a merge group. The primary entity is the one
// whose individual context span was widest, first maximal on ties.
func closeGroup(group []entityContext) mergedContext {
	m := mergedContext{
		start:     group[0].contextStart,
		end:       group[0].contextEnd,
		entityMap: make(map[string]string, len(group)),
	}
	widest := -1
	for _, c := range group {
		if c.contextStart < m.start {
			m.start = c.contextStart
		}
		if c.contextEnd > m.end {
			m.end = c.contextEnd
		}
		m.entityMap[c.entityName] = c.entityID
		if w := c.contextEnd - c.contextStart; w > widest {
			widest = w
			m.primary = c.entityID
		}
	}
	return m
}
