// Package dom is a small document object model over golang.org/x/net/html.
//
// It supports CSS selector queries, attribute and class manipulation, the
// hidden attribute, event listeners with bubbling and preventDefault, form
// data and native constraint validation. A Document is not safe for
// concurrent use; it is driven from a single goroutine.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Listener handles an event dispatched on, or bubbled to, an element.
type Listener func(*Event)

// Document is a parsed HTML page together with its event listeners.
type Document struct {
	root *html.Node

	// handlers are the single on<event> slots, listeners the appended ones.
	handlers  map[*html.Node]map[string]Listener
	listeners map[*html.Node]map[string][]Listener
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Document{
		root:      root,
		handlers:  make(map[*html.Node]map[string]Listener),
		listeners: make(map[*html.Node]map[string][]Listener),
	}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Query returns the first element matching sel, or nil.
func (d *Document) Query(sel string) *Element {
	return d.wrap(queryFirst(d.root, sel))
}

// QueryAll returns every element matching sel in document order.
func (d *Document) QueryAll(sel string) []*Element {
	return d.wrapAll(queryAll(d.root, sel))
}

// ByID returns the element with the given id attribute, or nil.
func (d *Document) ByID(id string) *Element {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return d.wrap(found)
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return buf.String(), nil
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

// forget drops the listeners registered on n and its descendants.
func (d *Document) forget(n *html.Node) {
	walk(n, func(c *html.Node) bool {
		delete(d.handlers, c)
		delete(d.listeners, c)
		return true
	})
}

func compile(sel string) cascadia.Selector {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil
	}
	return s
}

// queryFirst searches the descendants of n, excluding n itself.
func queryFirst(n *html.Node, sel string) *html.Node {
	s := compile(sel)
	if s == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := s.MatchFirst(c); m != nil {
			return m
		}
	}
	return nil
}

func queryAll(n *html.Node, sel string) []*html.Node {
	s := compile(sel)
	if s == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, s.MatchAll(c)...)
	}
	return out
}

// ValidSelector reports whether sel compiles.
func ValidSelector(sel string) bool {
	return compile(sel) != nil
}

// walk visits n and its descendants depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}
