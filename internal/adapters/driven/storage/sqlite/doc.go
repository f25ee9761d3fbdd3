// Package sqlite provides a SQLite-backed implementation of the
// IndexStore port. Embeddings are stored as little-endian float32
// blobs and similarity search is a brute-force cosine scan, which is
// more than fast enough for a personal highlight archive.
package sqlite
