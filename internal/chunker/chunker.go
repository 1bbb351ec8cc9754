package chunker

import (
	"log/slog"
	"sort"
	"strings"
)

// Config controls chunking behavior. All values are overridable; zero
// values fall back to defaults.
type Config struct {
	EntityContextWindow int // Characters of context around an entity mention.
	EntityMergeDistance int // Max token gap between contexts to merge them.
	MinChunkTokens      int // Expand chunks below this token count.
	MaxChunkTokens      int // Split chunks above this token count.
	GapFillThreshold    int // Min tokens for an uncovered gap to be filled.
	ChunkSize           int // Target tokens for fallback/hierarchical chunks.
	ChunkOverlap        int // Overlap tokens for fallback/hierarchical chunks.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		EntityContextWindow: 400,
		EntityMergeDistance: 500,
		MinChunkTokens:      200,
		MaxChunkTokens:      1200,
		GapFillThreshold:    1000,
		ChunkSize:           800,
		ChunkOverlap:        200,
	}
}

// Engine is the entity-aware chunking engine. It is a pure computation
// over in-memory text: safe for concurrent use across documents, since
// each call operates only on its own inputs and the shared read-only
// token encoder.
type Engine struct {
	cfg    Config
	log    *slog.Logger
	tokens *TokenCounter
}

// New creates an engine. Zero-value config fields are replaced with
// defaults, matching the fail-soft contract of the engine as a whole.
func New(cfg Config, log *slog.Logger) *Engine {
	def := DefaultConfig()
	if cfg.EntityContextWindow <= 0 {
		cfg.EntityContextWindow = def.EntityContextWindow
	}
	if cfg.EntityMergeDistance <= 0 {
		cfg.EntityMergeDistance = def.EntityMergeDistance
	}
	if cfg.MinChunkTokens <= 0 {
		cfg.MinChunkTokens = def.MinChunkTokens
	}
	if cfg.MaxChunkTokens <= 0 {
		cfg.MaxChunkTokens = def.MaxChunkTokens
	}
	if cfg.GapFillThreshold <= 0 {
		cfg.GapFillThreshold = def.GapFillThreshold
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = def.ChunkOverlap
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		log:    log,
		tokens: NewTokenCounter(log),
	}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// WithConfig returns an engine with different knobs that shares this
// engine's token encoder and logger. Used for per-request overrides.
func (e *Engine) WithConfig(cfg Config) *Engine {
	eng := New(cfg, e.log)
	eng.tokens = e.tokens
	return eng
}

// CountTokens counts tokens in text. See TokenCounter.
func (e *Engine) CountTokens(text string) int {
	return e.tokens.Count(text)
}

// ChunkDocument splits text into entity-aware chunks. Entities are
// supplied grouped by category label; the grouping carries no weight and
// is flattened before extraction. When no entities are supplied, no
// occurrence is found, or no merged context survives chunk building, the
// paragraph fallback chunker runs instead.
//
// The returned warnings flag chunks that violate the soft token bounds.
// The engine never rejects a chunk: documents with very dense entity
// mentions can legitimately exceed MaxChunkTokens after merging.
func (e *Engine) ChunkDocument(text string, entities map[string][]Entity) ([]Chunk, []Warning) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	flat := flattenEntities(entities)
	if len(flat) == 0 {
		return e.withValidation(e.fallbackChunks(text))
	}

	contexts := e.extractContexts(text, flat)
	if len(contexts) == 0 {
		return e.withValidation(e.fallbackChunks(text))
	}

	merged := e.mergeContexts(text, contexts)
	chunks := e.buildChunks(text, merged)
	if len(chunks) == 0 {
		return e.withValidation(e.fallbackChunks(text))
	}

	chunks = e.fillGaps(text, chunks, contexts, flat)
	return e.withValidation(chunks)
}

// flattenEntities collapses the category grouping into one list,
// visiting categories in sorted order for determinism.
func flattenEntities(entities map[string][]Entity) []Entity {
	if len(entities) == 0 {
		return nil
	}
	categories := make([]string, 0, len(entities))
	for c := range entities {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var flat []Entity
	for _, c := range categories {
		flat = append(flat, entities[c]...)
	}
	return flat
}

// withValidation runs the non-blocking size validator over the final
// chunk list and logs every violation.
func (e *Engine) withValidation(chunks []Chunk) ([]Chunk, []Warning) {
	var warnings []Warning
	for _, c := range chunks {
		switch {
		case c.TokenCount < e.cfg.MinChunkTokens:
			warnings = append(warnings, Warning{
				ChunkIndex: c.Index,
				TokenCount: c.TokenCount,
				Bound:      "min",
				Limit:      e.cfg.MinChunkTokens,
			})
			e.log.Warn("chunk below min token bound",
				"index", c.Index,
				"tokens", c.TokenCount,
				"min", e.cfg.MinChunkTokens,
			)
		case c.TokenCount > e.cfg.MaxChunkTokens:
			warnings = append(warnings, Warning{
				ChunkIndex: c.Index,
				TokenCount: c.TokenCount,
				Bound:      "max",
				Limit:      e.cfg.MaxChunkTokens,
			})
			e.log.Warn("chunk above max token bound",
				"index", c.Index,
				"tokens", c.TokenCount,
				"max", e.cfg.MaxChunkTokens,
			)
		}
	}
	return chunks, warnings
}
