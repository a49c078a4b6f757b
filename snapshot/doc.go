// Package snapshot models the baseline of file digests and persists it
// as a single JSON object mapping file path to hex digest. The record
// location is supplied to NewStore; every Save replaces the whole record.
package snapshot
