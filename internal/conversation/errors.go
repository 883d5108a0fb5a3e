package conversation

import "errors"

var (
	// ErrUnknownCall is returned for events addressing a call_id with no
	// active state. Events never create state implicitly.
	ErrUnknownCall = errors.New("conversation: unknown call")

	// ErrDuplicateCall is returned when Initialize is called twice for the
	// same call_id.
	ErrDuplicateCall = errors.New("conversation: call already active")

	// ErrCallEnded is returned for turn events on a call that has already
	// ended, including a late generator response discarded after a
	// provider-side hangup.
	ErrCallEnded = errors.New("conversation: call ended")

	// ErrNotEnded is returned when Finalize runs on a still-active call.
	ErrNotEnded = errors.New("conversation: call not ended")
)
