package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element wraps an element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node returns the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

// Is reports whether e and other wrap the same node.
func (e *Element) Is(other *Element) bool {
	return e != nil && other != nil && e.node == other.node
}

// TagName returns the lowercase tag name.
func (e *Element) TagName() string { return e.node.Data }

// ID returns the id attribute.
func (e *Element) ID() string { return attr(e.node, "id") }

// Attr returns the value of attribute key, or "".
func (e *Element) Attr(key string) string { return attr(e.node, key) }

// HasAttr reports whether attribute key is present.
func (e *Element) HasAttr(key string) bool { return hasAttr(e.node, key) }

// SetAttr sets attribute key to val.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes attribute key.
func (e *Element) RemoveAttr(key string) {
	attrs := e.node.Attr[:0]
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	e.node.Attr = attrs
}

// Dataset returns the data-<key> attribute.
func (e *Element) Dataset(key string) string { return attr(e.node, "data-"+key) }

// Classes returns the class list.
func (e *Element) Classes() []string { return strings.Fields(attr(e.node, "class")) }

// HasClass reports whether class is in the class list.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass adds class to the class list if missing.
func (e *Element) AddClass(class string) {
	if e.HasClass(class) {
		return
	}
	e.SetAttr("class", strings.TrimSpace(attr(e.node, "class")+" "+class))
}

// RemoveClass removes class from the class list.
func (e *Element) RemoveClass(class string) {
	if !e.HasClass(class) {
		return
	}
	var kept []string
	for _, c := range e.Classes() {
		if c != class {
			kept = append(kept, c)
		}
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// Hidden reports whether the hidden attribute is set.
func (e *Element) Hidden() bool { return hasAttr(e.node, "hidden") }

// SetHidden toggles the hidden attribute.
func (e *Element) SetHidden(hidden bool) {
	if hidden {
		if !e.Hidden() {
			e.SetAttr("hidden", "")
		}
		return
	}
	e.RemoveAttr("hidden")
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var sb strings.Builder
	walk(e.node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return sb.String()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.Clear()
	if text != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// InnerHTML renders the children of e.
func (e *Element) InnerHTML() (string, error) {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render children: %w", err)
		}
	}
	return buf.String(), nil
}

// SetInnerHTML replaces the children of e with the parsed fragment.
func (e *Element) SetInnerHTML(markup string) error {
	e.Clear()
	return e.InsertHTML(markup)
}

// InsertHTML parses markup in the context of e and appends the result.
func (e *Element) InsertHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// Clear removes every child of e.
func (e *Element) Clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		e.doc.forget(c)
		c = next
	}
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e.node.Parent == nil {
		return
	}
	e.node.Parent.RemoveChild(e.node)
	e.doc.forget(e.node)
}

// Attached reports whether e is still part of the document tree.
func (e *Element) Attached() bool {
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

// Parent returns the parent element, or nil.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// FirstElementChild returns the first child element, or nil.
func (e *Element) FirstElementChild() *Element {
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return e.doc.wrap(c)
		}
	}
	return nil
}

// PreviousElementSibling returns the closest preceding sibling element, or nil.
func (e *Element) PreviousElementSibling() *Element {
	for s := e.node.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return e.doc.wrap(s)
		}
	}
	return nil
}

// Closest returns the nearest inclusive ancestor matching sel, or nil.
func (e *Element) Closest(sel string) *Element {
	s := compile(sel)
	if s == nil {
		return nil
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && s.Match(n) {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// Query returns the first descendant matching sel, or nil.
func (e *Element) Query(sel string) *Element {
	return e.doc.wrap(queryFirst(e.node, sel))
}

// QueryAll returns every descendant matching sel.
func (e *Element) QueryAll(sel string) []*Element {
	return e.doc.wrapAll(queryAll(e.node, sel))
}

// Value returns the current value of a form control.
func (e *Element) Value() string {
	if e.node.DataAtom == atom.Textarea {
		return e.Text()
	}
	return attr(e.node, "value")
}

// SetValue sets the current value of a form control.
func (e *Element) SetValue(v string) {
	if e.node.DataAtom == atom.Textarea {
		e.SetText(v)
		return
	}
	e.SetAttr("value", v)
}
