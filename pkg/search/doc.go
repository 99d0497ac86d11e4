// Package search maintains OpenSearch indexes for invoice lookup. Indexing
// is best-effort from the caller's perspective: the database remains the
// source of truth and a failed index write never fails the business
// operation that triggered it.
package search
