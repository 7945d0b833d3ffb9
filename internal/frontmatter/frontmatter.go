// Package frontmatter splits `---` delimited YAML frontmatter from a Markdown
// body and decodes it into a generic field map.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Style captures the newline convention of a document.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Document is the result of splitting a source file.
type Document struct {
	// Frontmatter holds the raw YAML between the delimiters (without them).
	Frontmatter []byte
	// Body is everything after the closing delimiter line.
	Body []byte
	// Had reports whether the document opened with a delimiter line.
	Had   bool
	Style Style
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a delimiter line, Had is false and Body
// is the full input. A closing delimiter may be the last line of the file
// without a trailing newline. When the opening delimiter has no matching
// closing line, ErrMissingClosingDelimiter is returned.
func Split(content []byte) (Document, error) {
	style := detectStyle(content)
	doc := Document{Body: content, Style: style}

	first, rest, hasNL := cutLine(content)
	if !isDelimiter(first) {
		return doc, nil
	}
	if !hasNL {
		// A lone "---" with nothing after it never closes.
		return doc, ErrMissingClosingDelimiter
	}

	start := len(content) - len(rest)
	offset := start
	for remaining := rest; len(remaining) > 0; {
		line, next, _ := cutLine(remaining)
		if isDelimiter(line) {
			doc.Frontmatter = content[start:offset]
			doc.Body = next
			doc.Had = true
			return doc, nil
		}
		offset += len(remaining) - len(next)
		remaining = next
	}

	return doc, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
//
// Empty input and a YAML null document both yield an empty, non-nil map. A
// document whose top level is not a mapping is an error.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// cutLine returns the first line of b without its terminator, the remainder
// after the terminator, and whether a newline was found.
func cutLine(b []byte) (line, rest []byte, found bool) {
	idx := bytes.IndexByte(b, '\n')
	if idx < 0 {
		return bytes.TrimSuffix(b, []byte("\r")), nil, false
	}
	return bytes.TrimSuffix(b[:idx], []byte("\r")), b[idx+1:], true
}

func isDelimiter(line []byte) bool {
	return bytes.Equal(bytes.TrimRight(line, " \t"), []byte(delimiter))
}

func detectStyle(content []byte) Style {
	newline := "\n"
	if idx := bytes.IndexByte(content, '\n'); idx > 0 && content[idx-1] == '\r' {
		newline = "\r\n"
	}

	return Style{
		Newline:            newline,
		HasTrailingNewline: len(content) > 0 && content[len(content)-1] == '\n',
	}
}
