package snapshot

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/integrity_check/digester"
)

// DefaultPath is the record location used when none is
// configured.
const DefaultPath = "file_hashes.json"

// recordMode is the permission of a newly created record.
const recordMode os.FileMode = 0o644

// escapeMarker prefixes record keys holding a hex encoded path.
// File paths never contain NUL, so a plain key cannot start
// with it.
const escapeMarker = "\x00"

// ErrMalformed is returned by Load when the record exists
// but does not hold a path to digest object.
var ErrMalformed = errors.New("malformed snapshot record")

// Store reads and writes a Snapshot at a fixed location.
type Store struct {
	path string
}

// NewStore returns a Store persisting to path. An empty path
// selects DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}

	return &Store{path: path}
}

// Path returns the record location.
func (st *Store) Path() string {
	return st.path
}

// Load returns the persisted snapshot, or an empty one when
// no record exists yet.
func (st *Store) Load() (Snapshot, error) {
	const errCtx = "loading snapshot"

	data, err := os.ReadFile(st.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no baseline recorded yet", "store", st.path)

		return Snapshot{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	snap, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, st.path, err)
	}

	slog.Info(
		"baseline loaded",
		"store", st.path,
		"entries", len(snap),
	)

	return snap, nil
}

// Save replaces the persisted record with snap. The record is
// written to a temporary file first and renamed into place,
// so readers never observe a partial record.
func (st *Store) Save(snap Snapshot) (retErr error) {
	const errCtx = "saving snapshot"

	data, err := encode(snap)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tmp, err := os.CreateTemp(
		filepath.Dir(st.path),
		"."+filepath.Base(st.path)+"-*",
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		}
	}()

	if err := tmp.Chmod(st.mode()); err != nil {
		_ = tmp.Close() //nolint:errcheck // chmod error takes precedence

		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence

		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := os.Rename(tmp.Name(), st.path); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"baseline stored",
		"store", st.path,
		"entries", len(snap),
	)

	return nil
}

// mode returns the permission of the current record, or
// recordMode when there is none yet.
func (st *Store) mode() os.FileMode {
	fi, err := os.Stat(st.path)
	if err != nil {
		return recordMode
	}

	return fi.Mode().Perm()
}

// encodeKey maps a path to a record key. Paths that are not
// valid UTF-8, or that start with escapeMarker, are written as
// escapeMarker followed by the hex of their bytes; JSON would
// otherwise replace invalid bytes with U+FFFD.
func encodeKey(pa Path) string {
	s := string(pa)
	if utf8.ValidString(s) && !strings.HasPrefix(s, escapeMarker) {
		return s
	}

	return escapeMarker + hex.EncodeToString([]byte(s))
}

// decodeKey reverses encodeKey.
func decodeKey(key string) (Path, error) {
	enc, ok := strings.CutPrefix(key, escapeMarker)
	if !ok {
		return Path(key), nil
	}

	raw, err := hex.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf(
			"%w: %q: bad escaped path: %w", ErrMalformed, key, err,
		)
	}

	return Path(raw), nil
}

func encode(snap Snapshot) ([]byte, error) {
	raw := make(map[string]string, len(snap))
	for pa, dg := range snap {
		raw[encodeKey(pa)] = string(dg)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}

// decode parses a record and validates every entry. Anything
// that is not an object of path to lowercase hex digest is
// rejected with ErrMalformed.
func decode(data []byte) (Snapshot, error) {
	var doc interface{}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf(
			"%w: expected object, got %T", ErrMalformed, doc,
		)
	}

	snap := make(Snapshot, len(obj))

	for key, val := range obj {
		pa, err := decodeKey(key)
		if err != nil {
			return nil, err
		}

		if pa == "" {
			return nil, fmt.Errorf("%w: empty path", ErrMalformed)
		}

		str, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf(
				"%w: %q: digest is %T, not a string",
				ErrMalformed, key, val,
			)
		}

		dg := digester.Digest(str)
		if !dg.Valid() {
			return nil, fmt.Errorf(
				"%w: %q: invalid digest %q",
				ErrMalformed, key, str,
			)
		}

		snap[pa] = dg
	}

	return snap, nil
}
