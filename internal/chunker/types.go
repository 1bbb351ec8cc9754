package chunker

// Entity is an externally supplied named entity. Extra fields on the wire
// are ignored; only the id and display name matter here.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Position is a character span within the source document.
type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Chunk is a bounded-size text segment with the entity set that is
// verifiably present in its final text.
type Chunk struct {
	Index         int      `json:"index"`
	Text          string   `json:"text"`
	TokenCount    int      `json:"token_count"`
	Entities      []string `json:"entities"`
	EntityNames   []string `json:"entity_names"`
	PrimaryEntity string   `json:"primary_entity"`
	Position      Position `json:"position"`
}

// SectionChunk is produced by hierarchical chunking. SectionPath is the
// heading hierarchy from document root to the chunk's section, e.g.
// ["Financial Results", "Revenue", "Q4"].
type SectionChunk struct {
	Text              string   `json:"text"`
	ChunkID           string   `json:"chunk_id"`
	SectionPath       []string `json:"section_path"`
	EntitiesMentioned []string `json:"entities_mentioned"`
}

// Warning flags a chunk that violates a soft token bound. Bounds are
// advisory: a chunk is reported, never rejected.
type Warning struct {
	ChunkIndex int    `json:"chunk_index"`
	TokenCount int    `json:"token_count"`
	Bound      string `json:"bound"` // "min" or "max"
	Limit      int    `json:"limit"`
}

// entityContext is one occurrence of an entity name with its surrounding
// sentence-expanded window. Start/End are the exact mention offsets.
type entityContext struct {
	entityID     string
	entityName   string
	start        int
	end          int
	contextStart int
	contextEnd   int
}

// mergedContext is a group of nearby entity contexts collapsed into one
// candidate chunk span.
type mergedContext struct {
	start     int
	end       int
	entityMap map[string]string // name -> id
	primary   string            // id of the widest individual context
}
