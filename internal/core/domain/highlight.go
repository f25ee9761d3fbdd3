package domain

import "time"

// SourceRecord is one archived item (book, article, tweet thread) as
// returned by the highlight export API. Immutable once fetched.
type SourceRecord struct {
	// ID is the stable export identifier for the source.
	ID int64

	// Title is the human-readable title.
	Title string

	// Author is the source author, if known.
	Author string

	// Category is the source category (books, articles, tweets, ...).
	Category string

	// Tags are source-level tag names in export order.
	Tags []string

	// Highlights are the excerpts saved from this source, in export order.
	Highlights []HighlightRecord
}

// HighlightRecord is one excerpt within a source.
type HighlightRecord struct {
	// ID is the stable export identifier for the highlight.
	ID int64

	// Text is the excerpt text.
	Text string

	// Note is the optional user annotation.
	Note string

	// Tags are highlight-level tag names in export order.
	Tags []string

	// URL points at the highlight in the source, when available.
	URL string

	// HighlightedAt is when the excerpt was saved.
	HighlightedAt time.Time

	// SourceID references the owning SourceRecord by ID.
	// Lookup only, not ownership.
	SourceID int64
}
