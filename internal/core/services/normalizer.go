package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/logger"
)

// TagDelimiter joins tag names into the single scalar string the index
// store accepts. Original tag order is preserved.
const TagDelimiter = ","

// noteSeparator prefixes an appended user note in a unit body.
const noteSeparator = "\n\nNote: "

// Normalize converts exported source records into flat retrievable
// units, one per highlight. It is a pure function: no I/O, no external
// state.
//
// Highlights are skipped (counted, never fatal) when the combined body
// is empty or whitespace, when the highlight ID is missing, or when the
// same highlight ID appears twice in the batch. A tag list that is
// empty or absent flattens to the empty string.
func Normalize(sources []domain.SourceRecord) ([]domain.NormalizedUnit, int) {
	var units []domain.NormalizedUnit
	skipped := 0
	seen := make(map[int64]bool)

	for _, src := range sources {
		bookTags := flattenTags(src.Tags)

		for _, h := range src.Highlights {
			if h.ID == 0 {
				logger.Warn("Skipping highlight with missing ID in source %q", src.Title)
				skipped++
				continue
			}
			if seen[h.ID] {
				logger.Debug("Skipping duplicate highlight ID %d", h.ID)
				skipped++
				continue
			}

			body := combineBody(h.Text, h.Note)
			if strings.TrimSpace(body) == "" {
				logger.Debug("Skipping highlight %d: empty body", h.ID)
				seen[h.ID] = true
				skipped++
				continue
			}

			units = append(units, domain.NormalizedUnit{
				ID:   UnitID(h.ID),
				Body: body,
				Metadata: domain.UnitMetadata{
					SourceID:      src.ID,
					Title:         src.Title,
					Author:        src.Author,
					Category:      src.Category,
					BookTags:      bookTags,
					HighlightTags: flattenTags(h.Tags),
					URL:           h.URL,
					HighlightedAt: formatTime(h.HighlightedAt),
				},
			})
			seen[h.ID] = true
		}
	}

	logger.Info("Normalized %d sources into %d units (%d skipped)",
		len(sources), len(units), skipped)

	return units, skipped
}

// UnitID derives the deterministic unit ID for a highlight ID.
// Re-ingesting the same highlight always yields the same unit ID, which
// makes index upserts idempotent.
func UnitID(highlightID int64) string {
	return domain.UnitIDPrefix + strconv.FormatInt(highlightID, 10)
}

// combineBody builds the unit body from excerpt and optional note.
func combineBody(text, note string) string {
	if strings.TrimSpace(note) == "" {
		return text
	}
	return text + noteSeparator + note
}

// flattenTags joins tag names with TagDelimiter in original order.
// Empty and absent lists both produce "".
func flattenTags(tags []string) string {
	return strings.Join(tags, TagDelimiter)
}

// formatTime renders a timestamp as RFC 3339, or "" for the zero value.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
