package readwise

import (
	"time"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
)

// exportResponse is one page of the /export/ endpoint.
type exportResponse struct {
	Count          int             `json:"count"`
	NextPageCursor string          `json:"nextPageCursor"`
	Results        []sourcePayload `json:"results"`
}

// sourcePayload is the wire shape of one source with nested highlights.
type sourcePayload struct {
	UserBookID int64              `json:"user_book_id"`
	Title      string             `json:"title"`
	Author     string             `json:"author"`
	Category   string             `json:"category"`
	BookTags   []tagPayload       `json:"book_tags"`
	Highlights []highlightPayload `json:"highlights"`
}

// highlightPayload is the wire shape of one highlight.
type highlightPayload struct {
	ID            int64        `json:"id"`
	Text          string       `json:"text"`
	Note          string       `json:"note"`
	URL           string       `json:"url"`
	Tags          []tagPayload `json:"tags"`
	HighlightedAt string       `json:"highlighted_at"`
}

// tagPayload is the wire shape of a tag; only the name matters here.
type tagPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// toDomain converts a wire source into the domain record.
func (p sourcePayload) toDomain() domain.SourceRecord {
	src := domain.SourceRecord{
		ID:       p.UserBookID,
		Title:    p.Title,
		Author:   p.Author,
		Category: p.Category,
		Tags:     tagNames(p.BookTags),
	}
	for _, h := range p.Highlights {
		src.Highlights = append(src.Highlights, domain.HighlightRecord{
			ID:            h.ID,
			Text:          h.Text,
			Note:          h.Note,
			Tags:          tagNames(h.Tags),
			URL:           h.URL,
			HighlightedAt: parseTimestamp(h.HighlightedAt),
			SourceID:      p.UserBookID,
		})
	}
	return src
}

// tagNames extracts tag names in wire order.
func tagNames(tags []tagPayload) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

// parseTimestamp parses the export timestamp format, tolerating the
// missing-offset variants Readwise emits. An unparseable or empty
// value yields the zero time rather than failing the fetch.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
