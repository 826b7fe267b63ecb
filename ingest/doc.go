// Package ingest coordinates parallel fetches across all source
// connectors for a batch.
//
// The Coordinator fans every connector's Fetch out onto a worker pool and
// performs a full join: it waits for all fetches to complete rather than
// cancelling on the first failure. Successes and per-source errors are
// collected into a single RawBatch keyed by source name, so callers can
// process the sources that succeeded and retry only the ones that failed.
package ingest
