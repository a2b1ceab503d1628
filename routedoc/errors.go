package routedoc

import (
	"errors"
	"fmt"

	"github.com/Zachacious/go-routedoc/route"
)

// AttributeParseError reports malformed route directive syntax.
type AttributeParseError = route.ParseError

// ErrGeneratorFinished is returned when a Generator is used after IntoOpenAPI.
var ErrGeneratorFinished = errors.New("routedoc: generator already produced its document")

// SchemaGenerationError reports a type no schema could be derived for.
type SchemaGenerationError struct {
	Type string
	Err  error
}

func (e *SchemaGenerationError) Error() string {
	return fmt.Sprintf("cannot generate schema for type %s: %v", e.Type, e.Err)
}

func (e *SchemaGenerationError) Unwrap() error { return e.Err }

// DuplicateOperationError reports two operations for the same path and method.
type DuplicateOperationError struct {
	Path   string
	Method route.Method
	// Existing and Duplicate name the handlers involved, when known.
	Existing  string
	Duplicate string
}

func (e *DuplicateOperationError) Error() string {
	msg := fmt.Sprintf("duplicate operation %s %s", e.Method, e.Path)
	if e.Existing != "" || e.Duplicate != "" {
		msg += fmt.Sprintf(" (registered by %s, again by %s)", orUnknown(e.Existing), orUnknown(e.Duplicate))
	}
	return msg
}

// MergeConflictError reports a merge the merge rules cannot resolve. The
// current rules resolve every merge, so Merge does not return it yet.
type MergeConflictError struct {
	Path     string
	Existing string
	Reason   string
}

func (e *MergeConflictError) Error() string {
	if e.Existing != "" {
		return fmt.Sprintf("cannot merge path %s: %s (conflicts with %s)", e.Path, e.Reason, e.Existing)
	}
	return fmt.Sprintf("cannot merge path %s: %s", e.Path, e.Reason)
}

// HandlerError wraps any failure while documenting one handler.
type HandlerError struct {
	Handler string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("could not generate OpenAPI operation for %s: %v", orUnknown(e.Handler), e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

func orUnknown(s string) string {
	if s == "" {
		return "<unknown>"
	}
	return s
}
