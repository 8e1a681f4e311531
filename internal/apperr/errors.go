// Package apperr defines the error values shared across graphdown.
//
// Core failures are plain values carrying a machine-readable code; they are
// returned, collected, and compared, never panicked across a package
// boundary. The sentinel errors at the bottom belong to the service/API
// layer, which maps them onto HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies one failure class. The set is closed: collaborators
// (CLI, API, MCP) may rely on it being exhaustive.
type Code string

const (
	// Layout.
	CodeDirMissing       Code = "dir_missing"
	CodeUnknownRecordDir Code = "unknown_record_dir"

	// Syntax.
	CodeFrontMatterMissing      Code = "front_matter_missing"
	CodeFrontMatterUnterminated Code = "front_matter_unterminated"
	CodeDocumentInvalid         Code = "document_invalid"
	CodeDocumentNotObject       Code = "document_not_object"
	CodeUTF8Invalid             Code = "utf8_invalid"

	// Identity.
	CodeInvalidIdentifier     Code = "invalid_identifier"
	CodeDuplicateID           Code = "duplicate_id"
	CodeDuplicateRecordTypeID Code = "duplicate_record_type_id"
	CodeRecordTypeIDInvalid   Code = "record_type_id_invalid"
	CodeTypeIDMismatch        Code = "type_id_mismatch"

	// Schema.
	CodeRequiredFieldMissing           Code = "required_field_missing"
	CodeForbiddenTopLevelKey           Code = "forbidden_top_level_key"
	CodeCompositionSchemaInvalid       Code = "composition_schema_invalid"
	CodeCompositionUnknownType         Code = "composition_unknown_type"
	CodeCompositionConstraintViolation Code = "composition_constraint_violation"

	// Content addressing.
	CodeBlobPathInvalid      Code = "blob_path_invalid"
	CodeBlobReferenceMissing Code = "blob_reference_missing"
	CodeBlobDigestMismatch   Code = "blob_digest_mismatch"

	// Catch-all.
	CodeInternal Code = "internal"
	CodeUsage    Code = "usage"
)

// Error is one classified failure. File and Hint are optional.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// New builds an Error for the given code and file (file may be empty).
func New(code Code, file, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), File: file}
}

// WithHint attaches a hint and returns the same error for chaining.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// List accumulates errors across a validation run.
type List []*Error

// Add appends non-nil errors.
func (l *List) Add(errs ...*Error) {
	for _, e := range errs {
		if e != nil {
			*l = append(*l, e)
		}
	}
}

// Has reports whether any collected error carries the given code.
func (l List) Has(code Code) bool {
	for _, e := range l {
		if e.Code == code {
			return true
		}
	}
	return false
}

func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Service-layer sentinels.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)
