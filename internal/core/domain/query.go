package domain

// DefaultTopK is the number of units retrieved when the caller does not
// ask for a specific k.
const DefaultTopK = 5

// QueryResult is the ephemeral answer to one question: the generated
// text plus the retrieved units (with similarity scores) that grounded
// it, in retrieval order. Produced per query and returned to the
// caller; nothing here is persisted.
type QueryResult struct {
	// Question is the original question, untruncated.
	Question string

	// Answer is the generated answer text.
	Answer string

	// Retrieved are the grounding units in descending score order.
	Retrieved []ScoredEntry
}
