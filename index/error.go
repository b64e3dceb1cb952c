package index

import "golang.org/x/xerrors"

// Error kinds from spec §7. Every failure this package returns wraps
// one of these sentinels so callers can xerrors.Is against a stable
// taxonomy regardless of which bleve error caused it. The query,
// config and syncer packages define sentinels of their own.
var (
	// ErrConfig signals an invalid or contradictory configuration
	// (e.g. neither lucenedir nor useramdir set, or an unknown
	// analyzer name).
	ErrConfig = xerrors.New("index: invalid configuration")

	// ErrInvalidQuery signals a malformed query string or an
	// incomplete reserved-pattern group when incompletequeryfail is
	// enabled.
	ErrInvalidQuery = xerrors.New("index: invalid query")

	// ErrIndexIO signals a failure reading or writing the underlying
	// full-text index (disk I/O, lock contention, corrupt segment).
	ErrIndexIO = xerrors.New("index: I/O failure")

	// ErrStore signals a failure reported by the surrounding triple
	// store while the Synchroniser or Query Iterator was reading from
	// it.
	ErrStore = xerrors.New("index: triple store failure")

	// ErrCorruptState signals an internal invariant violation (e.g.
	// more than one document found for a single subject).
	ErrCorruptState = xerrors.New("index: corrupt internal state")
)
