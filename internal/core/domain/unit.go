package domain

import (
	"strconv"
	"time"
)

// UnitIDPrefix namespaces unit IDs derived from highlight IDs.
const UnitIDPrefix = "highlight_"

// NormalizedUnit is the flat, independently retrievable entity derived
// 1:1 from a HighlightRecord. Its ID is a deterministic function of the
// highlight ID, so re-ingesting the same highlight overwrites rather
// than duplicates.
type NormalizedUnit struct {
	// ID is UnitIDPrefix plus the highlight ID.
	ID string

	// Body is the excerpt text with the user note appended, if present.
	Body string

	// Metadata holds the scalar attribution fields for the unit.
	Metadata UnitMetadata
}

// UnitMetadata is the fixed set of scalar metadata carried by a unit.
// The index store only accepts scalar values; list-valued fields (tags)
// are flattened to a single comma-delimited string at normalization
// time. A tag list that is empty or absent flattens to "".
type UnitMetadata struct {
	SourceID      int64  `json:"source_id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Category      string `json:"category"`
	BookTags      string `json:"book_tags"`
	HighlightTags string `json:"highlight_tags"`
	URL           string `json:"url,omitempty"`
	HighlightedAt string `json:"highlighted_at,omitempty"`
}

// Flatten returns the metadata as a string-keyed scalar mapping, the
// shape the index store persists. Zero-valued optional fields are
// omitted; tag fields are always present so their representation stays
// consistent across units.
func (m UnitMetadata) Flatten() map[string]string {
	flat := map[string]string{
		"source_id":      strconv.FormatInt(m.SourceID, 10),
		"title":          m.Title,
		"author":         m.Author,
		"category":       m.Category,
		"book_tags":      m.BookTags,
		"highlight_tags": m.HighlightTags,
	}
	if m.URL != "" {
		flat["url"] = m.URL
	}
	if m.HighlightedAt != "" {
		flat["highlighted_at"] = m.HighlightedAt
	}
	return flat
}

// IndexEntry is the persisted triple of unit ID, embedding vector, and
// text plus metadata. Owned by the index store; its lifecycle is tied
// to the persistent store, not the process.
type IndexEntry struct {
	ID        string
	Embedding []float32
	Body      string
	Metadata  UnitMetadata
}

// ScoredEntry pairs an IndexEntry with its similarity score against a
// query vector.
type ScoredEntry struct {
	Entry IndexEntry
	Score float64
}

// IngestStats summarises a completed ingestion run.
type IngestStats struct {
	// Sources is the number of source records fetched.
	Sources int

	// Units is the number of normalized units upserted.
	Units int

	// Skipped is the number of highlights dropped during
	// normalization (empty body, missing or duplicate ID).
	Skipped int
}

// IngestRun is the persisted record of one ingestion run.
type IngestRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Units      int
	Skipped    int
}
