package engine

import "iter"

// Kind is the variant of a renderer record.
type Kind int

const (
	KindItem Kind = iota + 1
	KindContinuation
	KindHeader
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindContinuation:
		return "continuation"
	case KindHeader:
		return "header"
	}
	return "unknown"
}

// RendererRecord is one tagged subtree found by Walk.
type RendererRecord struct {
	Tag  string
	Kind Kind
	Node Node
}

// ItemFunc builds an item from a renderer subtree. It never fails: missing fields stay nil.
// Item.ID is validated by the normalizer afterwards.
type ItemFunc func(n Node) Item

// TokenFunc pulls a continuation token out of a continuation renderer.
type TokenFunc func(n Node) (string, bool)

// Header is page-level metadata, e.g. a playlist title.
type Header struct {
	Title *string
	Count *int
}

// HeaderFunc pulls page-level metadata out of a header renderer.
type HeaderFunc func(n Node) Header

// Dispatch maps discriminator keys to renderer variants and their handlers.
// New upstream variants are supported by registering a tag, never by hardcoding a path.
type Dispatch struct {
	kinds   map[string]Kind
	items   map[string]ItemFunc
	tokens  map[string]TokenFunc
	headers map[string]HeaderFunc
}

// NewDispatch returns an empty dispatch table.
func NewDispatch() *Dispatch {
	return &Dispatch{
		kinds:   map[string]Kind{},
		items:   map[string]ItemFunc{},
		tokens:  map[string]TokenFunc{},
		headers: map[string]HeaderFunc{},
	}
}

func (d *Dispatch) RegisterItem(tag string, fn ItemFunc) {
	d.kinds[tag] = KindItem
	d.items[tag] = fn
}

func (d *Dispatch) RegisterContinuation(tag string, fn TokenFunc) {
	d.kinds[tag] = KindContinuation
	d.tokens[tag] = fn
}

func (d *Dispatch) RegisterHeader(tag string, fn HeaderFunc) {
	d.kinds[tag] = KindHeader
	d.headers[tag] = fn
}

// Token extracts the continuation token from a continuation record.
func (d *Dispatch) Token(rec RendererRecord) (string, bool) {
	fn, ok := d.tokens[rec.Tag]
	if !ok || rec.Kind != KindContinuation {
		return "", false
	}
	return fn(rec.Node)
}

// Header extracts page metadata from a header record.
func (d *Dispatch) Header(rec RendererRecord) (Header, bool) {
	fn, ok := d.headers[rec.Tag]
	if !ok || rec.Kind != KindHeader {
		return Header{}, false
	}
	return fn(rec.Node), true
}

// Walk yields every registered renderer in document order, depth-first.
// A matched subtree is not descended into. The sequence is single-pass and stops
// as soon as the consumer stops ranging.
func (d *Dispatch) Walk(b *Blob) iter.Seq[RendererRecord] {
	return func(yield func(RendererRecord) bool) {
		if b == nil {
			return
		}
		d.walk(b.Root, yield)
	}
}

func (d *Dispatch) walk(n Node, yield func(RendererRecord) bool) bool {
	switch v := n.(type) {
	case *Object:
		for _, key := range v.Keys {
			child := v.Fields[key]
			if kind, ok := d.kinds[key]; ok {
				if !yield(RendererRecord{Tag: key, Kind: kind, Node: child}) {
					return false
				}
				continue
			}
			if !d.walk(child, yield) {
				return false
			}
		}
	case []Node:
		for _, child := range v {
			if !d.walk(child, yield) {
				return false
			}
		}
	}
	return true
}
