package digester

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ChunkSize is the read buffer size used when streaming a
// file through the hash.
const ChunkSize = 4096

// Digest is a lowercase hex encoded SHA256 sum.
type Digest string

// String returns the hex form of the digest.
func (d Digest) String() string {
	return string(d)
}

// Valid reports whether d has the shape of a lowercase hex
// SHA256 sum.
func (d Digest) Valid() bool {
	if len(d) != hex.EncodedLen(sha256.Size) {
		return false
	}

	for i := 0; i < len(d); i++ {
		c := d[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}

// CalculateDigest computes the SHA256 digest of the file at
// path, reading it ChunkSize bytes at a time.
func CalculateDigest(path string) (result Digest, retErr error) {
	const errCtx = "calculating digest"

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	dg, err := fromReader(fi)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return dg, nil
}

// FromReader computes the SHA256 digest of everything read
// from r.
func FromReader(r io.Reader) (Digest, error) {
	const errCtx = "calculating digest"

	dg, err := fromReader(r)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return dg, nil
}

func fromReader(r io.Reader) (Digest, error) {
	ha := sha256.New()

	// Hiding io.WriterTo keeps CopyBuffer on the ChunkSize buffer.
	src := struct{ io.Reader }{r}

	if _, err := io.CopyBuffer(ha, src, make([]byte, ChunkSize)); err != nil {
		return "", err
	}

	return Digest(hex.EncodeToString(ha.Sum(nil))), nil
}
