package object

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/johnbenac/graphdown/internal/apperr"
)

// Role names the header key an identifier was declared under. The reserved
// word check applies only to type identifiers.
type Role string

const (
	RoleTypeID   Role = "typeId"
	RoleRecordID Role = "recordId"
)

// ReservedTypeID is the type identifier reserved for blob reference tokens.
const ReservedTypeID = "gdblob"

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// IsIdentifier reports whether s satisfies the identifier grammar.
func IsIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// ValidateIdentifier checks that value is a non-empty, trimmed string
// conforming to the identifier grammar (and, for type identifiers, not the
// reserved word). On success it returns the identifier.
func ValidateIdentifier(value any, file string, role Role) (string, *apperr.Error) {
	s, ok := value.(string)
	if !ok {
		return "", apperr.New(apperr.CodeInvalidIdentifier, file,
			"%s must be a string", role)
	}
	if s != strings.TrimSpace(s) {
		return "", apperr.New(apperr.CodeInvalidIdentifier, file,
			"%s %q has surrounding whitespace", role, s)
	}
	if err := validation.Validate(s,
		validation.Required,
		validation.Match(identifierRe),
	); err != nil {
		return "", apperr.New(apperr.CodeInvalidIdentifier, file,
			"%s %q: %v", role, s, err).
			WithHint("identifiers match [A-Za-z0-9][A-Za-z0-9_-]* and may not contain ':'")
	}
	if role == RoleTypeID && s == ReservedTypeID {
		return "", apperr.New(apperr.CodeInvalidIdentifier, file,
			"%s %q is reserved", role, s)
	}
	return s, nil
}
