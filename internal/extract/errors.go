package extract

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedKind   = errors.New("unsupported document kind")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrEncryptedDocument = errors.New("encrypted document")
	ErrUnreadable        = errors.New("unreadable document")
)

// ExtractionError reports a document that could not be turned into text.
// It is never retried: the same bytes fail the same way.
type ExtractionError struct {
	Path string
	Kind Kind
	Op   string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e == nil {
		return ""
	}
	msg := "extract"
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Kind != KindUnknown {
		msg += " " + e.Kind.String()
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" %q", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(path string, kind Kind, op string, err error) *ExtractionError {
	return &ExtractionError{Path: path, Kind: kind, Op: op, Err: err}
}

// Reason is a short description of the failure that is safe to show to the
// person who uploaded the document.
func (e *ExtractionError) Reason() string {
	switch {
	case e == nil:
		return ""
	case errors.Is(e.Err, ErrUnsupportedKind):
		return "unsupported document type"
	case errors.Is(e.Err, ErrEncryptedDocument):
		return "document is encrypted"
	case errors.Is(e.Err, ErrCorruptDocument):
		return "document is corrupt"
	default:
		return "document could not be read"
	}
}
