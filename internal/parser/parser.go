// Package parser handles the file-level syntax of graphdown objects:
// dataset sniffing, newline normalization, strict UTF-8 decoding,
// front-matter splitting, and YAML header decoding.
package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/johnbenac/graphdown/internal/apperr"
)

const delim = "---"

// Sniff reports whether a file looks like a dataset object: the path ends
// in .md and the raw bytes open with a front-matter delimiter on the first
// line. It operates on bytes before any decoding so the pipeline can skip
// unrelated files cheaply.
func Sniff(path string, data []byte) bool {
	if !strings.HasSuffix(path, ".md") {
		return false
	}
	return bytes.HasPrefix(data, []byte(delim+"\n")) || bytes.HasPrefix(data, []byte(delim+"\r\n"))
}

// DecodeText decodes raw bytes as strict UTF-8 and normalizes all line
// endings to \n. Invalid byte sequences are fatal: a digest or parse over
// misdecoded text would be meaningless.
func DecodeText(file string, data []byte) (string, *apperr.Error) {
	if !utf8.Valid(data) {
		return "", apperr.New(apperr.CodeUTF8Invalid, file, "file is not valid UTF-8")
	}
	return NormalizeNewlines(string(data)), nil
}

// NormalizeNewlines collapses \r\n and bare \r to \n.
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// SplitFrontMatter separates normalized text into the header block and the
// body. The first line must be exactly the delimiter; the header is every
// line strictly between it and the next delimiter line; the body is
// everything after the closing delimiter.
func SplitFrontMatter(file, text string) (header, body string, err *apperr.Error) {
	lines := strings.Split(text, "\n")
	if lines[0] != delim {
		return "", "", apperr.New(apperr.CodeFrontMatterMissing, file,
			"first line must be %q", delim)
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == delim {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}
	return "", "", apperr.New(apperr.CodeFrontMatterUnterminated, file,
		"front matter opened but never closed with %q", delim)
}

// DecodeHeader parses the header block into a generic key/value document.
// Malformed syntax and "parsed but not a mapping" are distinct failures.
// An empty header decodes to an empty document.
func DecodeHeader(file, header string) (map[string]any, *apperr.Error) {
	var doc any
	if err := yaml.Unmarshal([]byte(header), &doc); err != nil {
		return nil, apperr.New(apperr.CodeDocumentInvalid, file, "invalid header: %v", err)
	}
	switch v := doc.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, apperr.New(apperr.CodeDocumentNotObject, file,
			"header is not a key/value mapping")
	}
}

// Render serializes a header document and body back into front-matter text.
// Re-parsing the result yields an equal document and a byte-identical body.
func Render(doc map[string]any, body string) (string, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", err
	}
	return delim + "\n" + string(out) + delim + "\n" + body, nil
}
