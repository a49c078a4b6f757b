// Package checker hashes a set of candidate files and either records
// them as the new baseline or compares them against the stored one.
//
// Targets expands the command line path into candidates, and
// Checker.Check performs a single scan. Candidates that are not regular
// files are skipped with a notice. A scanned file that has no baseline
// entry is reported as untracked, never as a discrepancy.
package checker
