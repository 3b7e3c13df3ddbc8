package translate

import (
	"errors"
)

// Failure categories. Every error returned by this package wraps exactly
// one of these, so callers can branch with errors.Is.
var (
	ErrUnsupportedDimensionality = errors.New("dataset must have exactly two pixel axes")
	ErrAxisMismatch              = errors.New("selection axis is not a pixel axis of the dataset")
	ErrEmptyRange                = errors.New("multi-range selection has no ranges")
	ErrUnsupportedShape          = errors.New("unsupported region of interest")
	ErrUnsupportedSubsetKind     = errors.New("unsupported selection kind")
	ErrTooDeep                   = errors.New("selection is nested too deeply")
	ErrUnknownFormat             = errors.New("no exporter registered for format")
)

// Error describes a rejected selection. Kind names the node or ROI kind
// that was being translated when the failure was detected.
type Error struct {
	Err    error
	Kind   string
	Detail string

	// Cause is set when a nested translation failed and was re-raised under
	// the outer Kind
	Cause error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Kind != "" {
		msg += ": " + e.Kind
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func fail(err error, kind, detail string) error {
	return &Error{Err: err, Kind: kind, Detail: detail}
}
