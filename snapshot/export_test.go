package snapshot

// Exported aliases for testing internal functions from the
// snapshot_test package.

// DecodeForTest exposes decode.
var DecodeForTest = decode

// EncodeForTest exposes encode.
var EncodeForTest = encode
