package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInitialData(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		title string
	}{
		{
			name:  "var assignment in script",
			page:  `<html><script>var ytInitialData = {"a":{"title":"x"}};</script></html>`,
			title: "x",
		},
		{
			name:  "window bracket assignment",
			page:  `<script>window["ytInitialData"] = {"a":{"title":"y"}};</script>`,
			title: "y",
		},
		{
			name:  "no spaces",
			page:  `<script>ytInitialData={"a":{"title":"z"}}</script>`,
			title: "z",
		},
		{
			name:  "braces and quotes inside strings",
			page:  `<script>var ytInitialData = {"a":{"title":"}{ \"q\" ]["}};var other = {};</script>`,
			title: `}{ "q" ][`,
		},
		{
			name:  "marker mentioned before the assignment",
			page:  `<script>if (window.ytInitialData) {}</script><script>var ytInitialData = {"a":{"title":"w"}};</script>`,
			title: "w",
		},
		{
			name:  "outside of script tags",
			page:  `<div>ytInitialData = {"a":{"title":"raw"}}</div>`,
			title: "raw",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := ExtractInitialData([]byte(tt.page))
			require.NoError(t, err)
			got, ok := String(Lookup(blob.Root, "a", "title"))
			require.True(t, ok)
			assert.Equal(t, tt.title, got)
		})
	}
}

func TestExtractInitialDataErrors(t *testing.T) {
	tests := []struct {
		name string
		page string
	}{
		{"marker absent", `<html><script>var x = {};</script></html>`},
		{"unbalanced", `<script>var ytInitialData = {"a":[1,2};</script>`},
		{"truncated", `<script>var ytInitialData = {"a":{"b":"c"`},
		{"invalid json", `<script>var ytInitialData = {a:1};</script>`},
		{"empty page", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractInitialData([]byte(tt.page))
			var ee *ExtractionError
			require.True(t, errors.As(err, &ee), "want *ExtractionError, got %v", err)
			assert.True(t, IsUpstreamError(err))
		})
	}
}

func TestParseBatch(t *testing.T) {
	blob, err := ParseBatch([]byte("  " + batchJSON("next", vid(1)) + "\n"))
	require.NoError(t, err)
	tok, ok := String(Lookup(blob.Root, "onResponseReceivedActions", 0, "appendContinuationItemsAction",
		"continuationItems", 1, "continuationItemRenderer", "continuationEndpoint", "continuationCommand", "token"))
	require.True(t, ok)
	assert.Equal(t, "next", tok)

	for _, body := range []string{"", "   ", "[1,2]", `{"a":1} trailing`, `{"a":`} {
		_, err := ParseBatch([]byte(body))
		var ee *ExtractionError
		assert.True(t, errors.As(err, &ee), "body %q: got %v", body, err)
	}
}

func TestScanBalanced(t *testing.T) {
	n, err := scanBalanced([]byte(`{"a":"\\"}tail`))
	require.NoError(t, err)
	assert.Equal(t, len(`{"a":"\\"}`), n)

	_, err = scanBalanced([]byte(`{"a":[}`))
	assert.ErrorIs(t, err, errUnbalanced)
}

func TestDecodeTreeKeepsOrder(t *testing.T) {
	root, err := decodeTree([]byte(`{"z":1,"a":2,"m":{"y":true,"b":null}}`))
	require.NoError(t, err)
	obj := root.(*Object)
	assert.Equal(t, []string{"z", "a", "m"}, obj.Keys)
	assert.Equal(t, []string{"y", "b"}, obj.Get("m").(*Object).Keys)

	n, ok := Int(obj.Get("a"))
	require.True(t, ok)
	assert.Equal(t, int64(2), n)
}

func TestText(t *testing.T) {
	root, err := decodeTree([]byte(`{"s":{"simpleText":" hi "},"r":{"runs":[{"text":"a"},{"text":"b "}]},"e":{"runs":[]},"p":"plain"}`))
	require.NoError(t, err)
	for key, want := range map[string]string{"s": "hi", "r": "ab", "p": "plain"} {
		got, ok := Text(Lookup(root, key))
		require.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	_, ok := Text(Lookup(root, "e"))
	assert.False(t, ok)
	_, ok = Text(Lookup(root, "missing"))
	assert.False(t, ok)
}
