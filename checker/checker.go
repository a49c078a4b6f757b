package checker

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/byte4ever/integrity_check/digester"
	"github.com/byte4ever/integrity_check/snapshot"
)

// Baseline persists the reference snapshot between runs.
type Baseline interface {
	Load() (snapshot.Snapshot, error)
	Save(snap snapshot.Snapshot) error
}

// Config holds the collaborators of a Checker.
type Config struct {
	// Store holds the baseline snapshot.
	Store Baseline

	// Notify is called with the path of every skipped
	// candidate. Nil logs the skip at debug level.
	Notify func(path string)

	// Digest hashes one file. Nil selects
	// digester.CalculateDigest.
	Digest func(path string) (digester.Digest, error)

	// Logger receives progress logs. Nil selects
	// slog.Default().
	Logger *slog.Logger
}

// Result describes the outcome of one Check call.
type Result struct {
	// Reinitialized is set when the scan replaced the
	// baseline instead of being compared to it.
	Reinitialized bool

	// Scanned is the number of files hashed.
	Scanned int

	// Skipped lists candidates that are not regular files.
	Skipped []string

	// Discrepancies lists scanned files whose digest
	// differs from the baseline, in candidate order.
	Discrepancies []string

	// Untracked lists scanned files with no baseline entry.
	// They are never discrepancies.
	Untracked []string
}

// Clean reports whether a comparison found no discrepancy.
func (r Result) Clean() bool {
	return len(r.Discrepancies) == 0
}

// Checker runs integrity checks against a baseline.
type Checker struct {
	store  Baseline
	notify func(path string)
	digest func(path string) (digester.Digest, error)
	logger *slog.Logger
}

// New returns a Checker using the collaborators in cfg.
func New(cfg Config) *Checker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	notify := cfg.Notify
	if notify == nil {
		notify = func(path string) {
			logger.Debug("skipping non-file", "path", path)
		}
	}

	digest := cfg.Digest
	if digest == nil {
		digest = digester.CalculateDigest
	}

	return &Checker{
		store:  cfg.Store,
		notify: notify,
		digest: digest,
		logger: logger,
	}
}

// Check hashes every regular file in paths. With reinitialize
// set, the scan replaces the stored baseline. Otherwise it is
// compared to the baseline and files whose digest changed are
// reported. The first hashing or storage error aborts the
// run and nothing is stored.
func (c *Checker) Check(
	paths []string,
	reinitialize bool,
) (Result, error) {
	const errCtx = "checking integrity"

	current, order, skipped, err := c.scan(paths)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	res := Result{
		Reinitialized: reinitialize,
		Scanned:       len(order),
		Skipped:       skipped,
	}

	if reinitialize {
		if err := c.store.Save(current); err != nil {
			return Result{}, fmt.Errorf("%s: %w", errCtx, err)
		}

		return res, nil
	}

	baseline, err := c.store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	res.Discrepancies, res.Untracked = compare(current, baseline, order)

	c.logger.Info(
		"comparison done",
		"scanned", res.Scanned,
		"discrepancies", len(res.Discrepancies),
		"untracked", len(res.Untracked),
	)

	return res, nil
}

// scan hashes the regular files among paths. It returns the
// resulting snapshot, the hashed paths in candidate order and
// the skipped candidates.
func (c *Checker) scan(paths []string) (
	snapshot.Snapshot,
	[]snapshot.Path,
	[]string,
	error,
) {
	var (
		order   []snapshot.Path
		skipped []string
	)

	current := make(snapshot.Snapshot, len(paths))

	for _, pa := range paths {
		if !isRegular(pa) {
			c.notify(pa)
			skipped = append(skipped, pa)

			continue
		}

		key := snapshot.Path(pa)
		if _, seen := current[key]; seen {
			continue
		}

		dg, err := c.digest(pa)
		if err != nil {
			return nil, nil, nil, err
		}

		current[key] = dg
		order = append(order, key)
	}

	return current, order, skipped, nil
}

// compare returns the paths whose digest differs from the
// baseline and the paths the baseline does not know about.
func compare(
	current snapshot.Snapshot,
	baseline snapshot.Snapshot,
	order []snapshot.Path,
) (changed []string, untracked []string) {
	for _, pa := range order {
		stored, ok := baseline[pa]
		if !ok {
			untracked = append(untracked, string(pa))

			continue
		}

		if stored != current[pa] {
			changed = append(changed, string(pa))
		}
	}

	return changed, untracked
}

func isRegular(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && fi.Mode().IsRegular()
}
