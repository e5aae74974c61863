package orchestrator

import "errors"

// ErrRegistryEmpty is raised when the registry returned zero active
// resources for a directive and no emergency fallback was available either.
var ErrRegistryEmpty = errors.New("orchestrator: registry empty, no emergency fallback available")

// ErrModelUnreachable wraps any transport-level failure from the model
// client (connection refused, DNS failure, non-timeout network error).
var ErrModelUnreachable = errors.New("orchestrator: model unreachable")

// ErrModelTimeout wraps a model call that exceeded its bounded interval.
var ErrModelTimeout = errors.New("orchestrator: model call timed out")
