package toolcall

import "errors"

// ErrMalformedDirective is surfaced when a [TOOL_CALL: occurrence cannot be
// structurally parsed.
var ErrMalformedDirective = errors.New("toolcall: malformed directive")

// ErrUnknownTool is surfaced when a directive names a tool outside the
// closed set.
var ErrUnknownTool = errors.New("toolcall: unknown tool")

// ErrUnknownArgument is surfaced when a directive's arguments do not match
// its tool's closed argument schema.
var ErrUnknownArgument = errors.New("toolcall: unknown or invalid argument")

// ErrRegistryEmpty is surfaced when get_crisis_resources resolves to zero
// active resources for the requested region/situation.
var ErrRegistryEmpty = errors.New("toolcall: registry returned no resources")

// ErrFabricationBlocked is surfaced when a literal the executor was about to
// forward is present on the fabrication blocklist.
var ErrFabricationBlocked = errors.New("toolcall: literal is a known fabrication")
