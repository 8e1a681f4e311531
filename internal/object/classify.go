// Package object turns one file's decoded header and body into exactly one
// of: a type object, a record object, an ignored file, or a classified
// error.
package object

import (
	"sort"

	"github.com/johnbenac/graphdown/internal/apperr"
	"github.com/johnbenac/graphdown/internal/parser"
)

// Kind tags the classification outcome.
type Kind int

const (
	KindIgnored Kind = iota
	KindType
	KindRecord
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindRecord:
		return "record"
	case KindInvalid:
		return "invalid"
	default:
		return "ignored"
	}
}

// Object is the classifier's tagged result for one file. Err is set only
// when Kind is KindInvalid.
type Object struct {
	File     string
	Kind     Kind
	TypeID   string
	RecordID string
	Fields   map[string]any
	Body     string
	Err      *apperr.Error
}

// Identity returns the structural identity: the typeId for type objects,
// typeId:recordId for records. This is distinct from any declared
// fields.id.
func (o Object) Identity() string {
	if o.Kind == KindRecord {
		return o.TypeID + ":" + o.RecordID
	}
	return o.TypeID
}

// DeclaredID returns the object's own fields.id, or "" when absent or not
// a non-empty string.
func (o Object) DeclaredID() string {
	if o.Fields == nil {
		return ""
	}
	id, _ := o.Fields["id"].(string)
	return id
}

func invalid(file string, err *apperr.Error) Object {
	return Object{File: file, Kind: KindInvalid, Err: err}
}

// Classify maps one decoded header document and body to an Object. The
// typeId branch is a deliberate three-way match: key absent (ignored),
// key present but invalid (error), key valid (type or record).
func Classify(file string, doc map[string]any, body string) Object {
	rawType, hasType := doc["typeId"]
	if !hasType {
		return Object{File: file, Kind: KindIgnored}
	}
	typeID, err := ValidateIdentifier(rawType, file, RoleTypeID)
	if err != nil {
		return invalid(file, err)
	}

	_, hasRecord := doc["recordId"]
	allowed := map[string]bool{"typeId": true, "fields": true}
	if hasRecord {
		allowed["recordId"] = true
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !allowed[k] {
			return invalid(file, apperr.New(apperr.CodeForbiddenTopLevelKey, file,
				"unexpected top-level key %q", k).
				WithHint("only typeId, recordId, and fields are allowed at the top level"))
		}
	}

	fields, ok := doc["fields"].(map[string]any)
	if !ok {
		return invalid(file, apperr.New(apperr.CodeRequiredFieldMissing, file,
			"fields must be present and be an object"))
	}

	if hasRecord {
		recordID, err := ValidateIdentifier(doc["recordId"], file, RoleRecordID)
		if err != nil {
			return invalid(file, err)
		}
		return Object{File: file, Kind: KindRecord, TypeID: typeID,
			RecordID: recordID, Fields: fields, Body: body}
	}
	return Object{File: file, Kind: KindType, TypeID: typeID, Fields: fields, Body: body}
}

// ClassifyFile runs the full per-file pipeline: strict UTF-8 decode,
// newline normalization, front-matter split, header decode, classification.
func ClassifyFile(file string, data []byte) Object {
	text, err := parser.DecodeText(file, data)
	if err != nil {
		return invalid(file, err)
	}
	header, body, err := parser.SplitFrontMatter(file, text)
	if err != nil {
		return invalid(file, err)
	}
	doc, err := parser.DecodeHeader(file, header)
	if err != nil {
		return invalid(file, err)
	}
	return Classify(file, doc, body)
}
