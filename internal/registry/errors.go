package registry

import "errors"

// ErrFabricationConflict is returned by UpsertResource when a channel value
// being written is present in the fabrication blocklist.
var ErrFabricationConflict = errors.New("registry: channel value conflicts with known fabrication")

// ErrStaleVerification is returned by UpsertResource when verified_on is
// older than the configured staleness threshold.
var ErrStaleVerification = errors.New("registry: verified_on is stale")

// ErrNotFound is returned when a resource id does not exist in the snapshot.
var ErrNotFound = errors.New("registry: resource not found")

// ErrCorrupt signals the in-memory snapshot failed an internal consistency
// check. Per the pipeline's failure semantics this is fatal: callers must
// refuse to serve rather than guess.
var ErrCorrupt = errors.New("registry: snapshot failed consistency check")
