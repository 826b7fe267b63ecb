// Package reembed regenerates embeddings for vector entries that already
// live in the store, typically after switching to a new or updated
// embedding model.
//
// Entries are processed in batches with progress tracking, retry logic
// with exponential backoff, and vector normalization so rewritten entries
// stay compatible with cosine similarity search.
package reembed
