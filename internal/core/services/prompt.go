package services

import (
	"fmt"
	"strings"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/logger"
)

// DefaultContextBudget bounds the total size, in characters, of the
// retrieved context included in a prompt. The question itself never
// counts against the budget and is never truncated.
const DefaultContextBudget = 6000

// defaultAnswerPrompt is the fallback template when no PromptStore is
// configured. Placeholders: context, then question.
const defaultAnswerPrompt = `Answer the question using only the context below.
The context is a set of highlights saved from the user's reading.
If the context does not contain the answer, say you don't know instead of inventing one.

Context:
%s

Question: %s

Answer:`

// blockSeparator divides attributed context blocks within a prompt.
const blockSeparator = "\n\n---\n\n"

// assembleContext renders retrieved entries into attributed context
// blocks bounded by budget characters. Entries arrive in descending
// score order; when the concatenated context would exceed the budget,
// the lowest-scored entries are dropped first. Returns the context
// text and the entries that survived, still in retrieval order.
func assembleContext(retrieved []domain.ScoredEntry, budget int) (string, []domain.ScoredEntry) {
	if budget <= 0 {
		budget = DefaultContextBudget
	}

	blocks := make([]string, len(retrieved))
	for i, r := range retrieved {
		blocks[i] = contextBlock(i+1, r.Entry)
	}

	keep := len(retrieved)
	for keep > 0 {
		text := strings.Join(blocks[:keep], blockSeparator)
		if len(text) <= budget {
			return text, retrieved[:keep]
		}
		logger.Debug("Context over budget (%d > %d chars), dropping lowest-scored unit %q",
			len(text), budget, retrieved[keep-1].Entry.ID)
		keep--
	}

	return "", nil
}

// contextBlock renders one retrieved entry with its attribution line.
func contextBlock(n int, e domain.IndexEntry) string {
	attribution := e.Metadata.Title
	if attribution == "" {
		attribution = e.ID
	}
	if e.Metadata.Author != "" {
		attribution += " - " + e.Metadata.Author
	}
	return fmt.Sprintf("[%d] %s\n%s", n, attribution, e.Body)
}
