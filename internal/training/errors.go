package training

import "errors"

var (
	// ErrMissingReference is returned by Compose when a Prompt references an
	// instruction template or output id that does not exist.
	ErrMissingReference = errors.New("training: referenced id not found")
	// ErrFabricationInOutput is a hard validation failure: a literal matching
	// the fabrication blocklist appears in a composed output.
	ErrFabricationInOutput = errors.New("training: output contains a known fabrication")
	// ErrUnregisteredLiteral is a hard validation failure: a literal
	// phone/URL/email appears in an output but is not in the registry for
	// the example's asserted region.
	ErrUnregisteredLiteral = errors.New("training: output contains an unregistered literal")
)
