package services

import "errors"

// Kind classifies a service failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindStorage      Kind = "storage"
	KindUpstream     Kind = "upstream"
)

// Error is a classified failure. Message is safe to show to clients;
// Err keeps the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func UnauthorizedError(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func ForbiddenError(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFoundError(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func StorageError(message string, err error) error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// UpstreamError wraps a failure reported by a collaborator such as the
// upload handler; details is shown to the client.
func UpstreamError(message, details string, err error) error {
	return &Error{Kind: KindUpstream, Message: message, Details: details, Err: err}
}

// KindOf returns the kind of err, or KindStorage for unclassified errors.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindStorage
}
