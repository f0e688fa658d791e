// Package retry provides caller-side retries with exponential backoff.
//
// The ingestion and conversation pipelines never retry on their own; tools
// wrap their calls with RetryIf and Transient instead.
package retry
