// Package ingestion loads a document corpus and writes it to the vector index.
//
// Coordinator enumerates a directory and parses every file on a bounded
// worker pool. Files that fail to load, including files with no registered
// loader, are collected into a PartialLoadError next to the documents that
// did load.
//
// Pipeline runs load, chunk, embed and write in sequence for a directory,
// an explicit file list, or a single URL, and summarizes the run in a Report.
// Unsupported files are reported and skipped; other load failures abort the
// run unless the caller asks to continue. Re-ingesting a file replaces the
// records of its previous version.
// When a manifest is configured, files already ingested into a namespace can
// be skipped on later runs.
package ingestion
