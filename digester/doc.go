// Package digester computes SHA256 content digests of files. Files are
// streamed through the hash in fixed-size chunks so arbitrarily large
// files can be fingerprinted without loading them into memory.
package digester
