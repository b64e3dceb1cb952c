package syncer

import "golang.org/x/xerrors"

// ErrAbort is wrapped around whatever underlying failure aborted an
// Apply call partway through, after the Synchroniser has already
// logged the failing operation.
var ErrAbort = xerrors.New("syncer: apply aborted")
