package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Node is one value of a decoded blob: *Object, []Node, string, json.Number, bool or nil.
type Node any

// Object is a JSON object that remembers key order.
type Object struct {
	Keys   []string
	Fields map[string]Node
}

// Get returns the field value, or nil when absent.
func (o *Object) Get(key string) Node {
	if o == nil {
		return nil
	}
	return o.Fields[key]
}

// Blob is one parsed ytInitialData document or continuation batch.
type Blob struct {
	Root Node
}

// decodeTree parses data into an ordered tree. Trailing content after the first value is an error.
func decodeTree(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &Object{Fields: map[string]Node{}}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				if _, dup := obj.Fields[key]; !dup {
					obj.Keys = append(obj.Keys, key)
				}
				obj.Fields[key] = v
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := []Node{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	default:
		return t, nil
	}
}

// Lookup follows a path of object keys (string) and array indexes (int).
// It returns nil as soon as a step does not apply.
func Lookup(n Node, path ...any) Node {
	for _, step := range path {
		switch s := step.(type) {
		case string:
			obj, ok := n.(*Object)
			if !ok {
				return nil
			}
			n = obj.Get(s)
		case int:
			arr, ok := n.([]Node)
			if !ok || s < 0 || s >= len(arr) {
				return nil
			}
			n = arr[s]
		default:
			return nil
		}
		if n == nil {
			return nil
		}
	}
	return n
}

// String returns the node as a trimmed, non-empty string.
func String(n Node) (string, bool) {
	s, ok := n.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Int returns an integer from a JSON number or a numeric string.
func Int(n Node) (int64, bool) {
	var raw string
	switch v := n.(type) {
	case json.Number:
		raw = v.String()
	case string:
		raw = strings.TrimSpace(v)
	default:
		return 0, false
	}
	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Text flattens a YouTube text object ({"simpleText": ...} or {"runs": [{"text": ...}]}).
func Text(n Node) (string, bool) {
	if s, ok := String(n); ok {
		return s, true
	}
	obj, ok := n.(*Object)
	if !ok {
		return "", false
	}
	if s, ok := String(obj.Get("simpleText")); ok {
		return s, true
	}
	runs, ok := obj.Get("runs").([]Node)
	if !ok {
		return "", false
	}
	var sb strings.Builder
	for _, r := range runs {
		if t, ok := Lookup(r, "text").(string); ok {
			sb.WriteString(t)
		}
	}
	s := strings.TrimSpace(sb.String())
	return s, s != ""
}
