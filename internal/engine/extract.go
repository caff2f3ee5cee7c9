package engine

import (
	"bytes"
	"errors"

	"golang.org/x/net/html"
)

// InitialDataMarker is the global the page assigns its embedded JSON to.
const InitialDataMarker = "ytInitialData"

var errUnbalanced = errors.New("unbalanced delimiters")

// ExtractInitialData finds the ytInitialData assignment in an HTML page and parses it.
// Inline <script> bodies are searched first; the raw page is scanned if no script matches.
func ExtractInitialData(page []byte) (*Blob, error) {
	raw, err := locateInScripts(page)
	if err != nil && !errors.Is(err, errMarkerNotFound) {
		return nil, err
	}
	if raw == nil {
		raw, err = locateAssignment(page)
		if err != nil {
			return nil, err
		}
	}
	root, err := decodeTree(raw)
	if err != nil {
		return nil, &ExtractionError{Reason: "invalid JSON", Err: err}
	}
	return &Blob{Root: root}, nil
}

// ParseBatch parses a continuation response, which is a bare JSON document.
func ParseBatch(body []byte) (*Blob, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, &ExtractionError{Reason: "empty continuation body"}
	}
	root, err := decodeTree(body)
	if err != nil {
		return nil, &ExtractionError{Reason: "invalid continuation JSON", Err: err}
	}
	if _, ok := root.(*Object); !ok {
		return nil, &ExtractionError{Reason: "continuation body is not a JSON object"}
	}
	return &Blob{Root: root}, nil
}

var errMarkerNotFound = &ExtractionError{Reason: InitialDataMarker + " not found"}

func locateInScripts(page []byte) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(page))
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return nil, errMarkerNotFound
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			text := z.Text()
			if !bytes.Contains(text, []byte(InitialDataMarker)) {
				continue
			}
			raw, err := locateAssignment(text)
			if errors.Is(err, errMarkerNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			// z.Text is only valid until the next call to Next.
			return bytes.Clone(raw), nil
		}
	}
}

// locateAssignment returns the balanced JSON object assigned to the marker.
// Accepted forms: `ytInitialData = {`, `var ytInitialData={`, `window["ytInitialData"] = {`.
func locateAssignment(b []byte) ([]byte, error) {
	marker := []byte(InitialDataMarker)
	for off := 0; off < len(b); {
		idx := bytes.Index(b[off:], marker)
		if idx < 0 {
			break
		}
		pos := off + idx + len(marker)
		off = pos
		pos = skipByte(b, pos, '"')
		pos = skipByte(b, pos, '\'')
		pos = skipByte(b, pos, ']')
		pos = skipSpace(b, pos)
		if pos >= len(b) || b[pos] != '=' {
			continue
		}
		pos = skipSpace(b, pos+1)
		if pos >= len(b) || b[pos] != '{' {
			continue
		}
		end, err := scanBalanced(b[pos:])
		if err != nil {
			return nil, &ExtractionError{Reason: "scan JSON literal", Err: err}
		}
		return b[pos : pos+end], nil
	}
	return nil, errMarkerNotFound
}

// scanBalanced returns the length of the JSON object or array starting at b[0],
// tracking nesting depth and string/escape state so braces inside strings are ignored.
func scanBalanced(b []byte) (int, error) {
	if len(b) == 0 || (b[0] != '{' && b[0] != '[') {
		return 0, errors.New("literal must start with { or [")
	}
	var stack []byte
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return 0, errUnbalanced
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1, nil
			}
		}
	}
	return 0, errUnbalanced
}

func skipSpace(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == '\n' || b[i] == '\r') {
		i++
	}
	return i
}

func skipByte(b []byte, i int, c byte) int {
	if i < len(b) && b[i] == c {
		return i + 1
	}
	return i
}
