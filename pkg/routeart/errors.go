package routeart

import "fmt"

// Kind enumerates the error taxonomy of §7.
type Kind string

const (
	BadRequest        Kind = "BadRequest"
	TemplateNotFound   Kind = "TemplateNotFound"
	TemplateInvalid    Kind = "TemplateInvalid"
	TemplateTooSparse  Kind = "TemplateTooSparse"
	GraphUnavailable   Kind = "GraphUnavailable"
	NoPath             Kind = "NoPath"
	ConnectorTooLong   Kind = "ConnectorTooLong"
	FitFailed          Kind = "FitFailed"
	OutputUnavailable  Kind = "OutputUnavailable"
	Cancelled          Kind = "Cancelled"
	Internal           Kind = "Internal"
)

// Error is the typed error carried through the route pipeline. Every kind
// except Internal is converted at the HTTP boundary into
// {ok:false, error:{kind, message}}.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// newErr constructs an *Error of the given kind.
func newErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
