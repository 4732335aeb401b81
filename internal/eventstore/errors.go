package eventstore

import (
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.RuntimeError("could not open event store database").Build()

	// ErrEventAppendFailed indicates appending an event failed.
	ErrEventAppendFailed = errors.RuntimeError("failed to append event to store").Build()

	// ErrEventQueryFailed indicates querying or scanning events failed.
	ErrEventQueryFailed = errors.RuntimeError("failed to query events from store").Build()

	// ErrMarshalPayloadFailed indicates JSON marshaling of an event payload failed.
	ErrMarshalPayloadFailed = errors.InternalError("failed to marshal event payload").Build()

	// ErrUnmarshalPayloadFailed indicates a stored payload could not be decoded.
	ErrUnmarshalPayloadFailed = errors.InternalError("failed to unmarshal event payload").Build()
)

// wrap attaches cause to a sentinel; errors.Is still matches the sentinel.
func wrap(sentinel *errors.ClassifiedError, cause error) *errors.ClassifiedError {
	return errors.WrapError(cause, sentinel.Category(), sentinel.Message()).Build()
}
