package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
)

func TestNormalize_BasicUnit(t *testing.T) {
	highlighted := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	sources := []domain.SourceRecord{
		{
			ID:       7,
			Title:    "Thinking in Systems",
			Author:   "Donella Meadows",
			Category: "books",
			Tags:     []string{"systems", "mental-models"},
			Highlights: []domain.HighlightRecord{
				{
					ID:            101,
					Text:          "A system is more than the sum of its parts.",
					Tags:          []string{"favorite"},
					URL:           "https://example.com/h/101",
					HighlightedAt: highlighted,
					SourceID:      7,
				},
			},
		},
	}

	units, skipped := Normalize(sources)

	require.Len(t, units, 1)
	assert.Equal(t, 0, skipped)

	u := units[0]
	assert.Equal(t, "highlight_101", u.ID)
	assert.Equal(t, "A system is more than the sum of its parts.", u.Body)
	assert.Equal(t, int64(7), u.Metadata.SourceID)
	assert.Equal(t, "Thinking in Systems", u.Metadata.Title)
	assert.Equal(t, "Donella Meadows", u.Metadata.Author)
	assert.Equal(t, "books", u.Metadata.Category)
	assert.Equal(t, "systems,mental-models", u.Metadata.BookTags)
	assert.Equal(t, "favorite", u.Metadata.HighlightTags)
	assert.Equal(t, "https://example.com/h/101", u.Metadata.URL)
	assert.Equal(t, "2024-03-01T10:30:00Z", u.Metadata.HighlightedAt)
}

func TestNormalize_AppendsNote(t *testing.T) {
	sources := []domain.SourceRecord{
		{
			ID: 1,
			Highlights: []domain.HighlightRecord{
				{ID: 1, Text: "The excerpt.", Note: "My thought."},
			},
		},
	}

	units, _ := Normalize(sources)

	require.Len(t, units, 1)
	assert.Equal(t, "The excerpt.\n\nNote: My thought.", units[0].Body)
}

func TestNormalize_NoNoteLeavesBodyUntouched(t *testing.T) {
	sources := []domain.SourceRecord{
		{
			ID: 1,
			Highlights: []domain.HighlightRecord{
				{ID: 1, Text: "Just the excerpt.", Note: "   "},
			},
		},
	}

	units, _ := Normalize(sources)

	require.Len(t, units, 1)
	assert.Equal(t, "Just the excerpt.", units[0].Body)
}

func TestNormalize_EmptyTagsFlattenToEmptyString(t *testing.T) {
	sources := []domain.SourceRecord{
		{
			ID:   1,
			Tags: nil,
			Highlights: []domain.HighlightRecord{
				{ID: 1, Text: "text", Tags: []string{}},
			},
		},
	}

	units, _ := Normalize(sources)

	require.Len(t, units, 1)
	assert.Equal(t, "", units[0].Metadata.BookTags)
	assert.Equal(t, "", units[0].Metadata.HighlightTags)
}

func TestNormalize_SkipsEmptyBody(t *testing.T) {
	sources := []domain.SourceRecord{
		{
			ID: 1,
			Highlights: []domain.HighlightRecord{
				{ID: 1, Text: ""},
				{ID: 2, Text: "   \n\t  "},
				{ID: 3, Text: "kept"},
			},
		},
	}

	units, skipped := Normalize(sources)

	require.Len(t, units, 1)
	assert.Equal(t, "highlight_3", units[0].ID)
	assert.Equal(t, 2, skipped)
}

func TestNormalize_SkipsMissingAndDuplicateIDs(t *testing.T) {
	sources := []domain.SourceRecord{
		{
			ID: 1,
			Highlights: []domain.HighlightRecord{
				{ID: 0, Text: "no id"},
				{ID: 5, Text: "first occurrence"},
			},
		},
		{
			ID: 2,
			Highlights: []domain.HighlightRecord{
				{ID: 5, Text: "duplicate id"},
			},
		},
	}

	units, skipped := Normalize(sources)

	require.Len(t, units, 1)
	assert.Equal(t, "highlight_5", units[0].ID)
	assert.Equal(t, "first occurrence", units[0].Body)
	assert.Equal(t, 2, skipped)
}

func TestNormalize_ZeroTimeFormatsEmpty(t *testing.T) {
	sources := []domain.SourceRecord{
		{
			ID: 1,
			Highlights: []domain.HighlightRecord{
				{ID: 1, Text: "undated"},
			},
		},
	}

	units, _ := Normalize(sources)

	require.Len(t, units, 1)
	assert.Equal(t, "", units[0].Metadata.HighlightedAt)
}

func TestNormalize_Empty(t *testing.T) {
	units, skipped := Normalize(nil)
	assert.Empty(t, units)
	assert.Equal(t, 0, skipped)
}

func TestUnitID(t *testing.T) {
	assert.Equal(t, "highlight_42", UnitID(42))
	assert.Equal(t, "highlight_9007199254740993", UnitID(9007199254740993))
}
