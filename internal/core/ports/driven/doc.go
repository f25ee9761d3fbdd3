// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the highlight export API, the embedding
// and generation services, and the persistent vector index.
package driven
