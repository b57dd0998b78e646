package dom

import (
	"regexp"
	"strings"

	"golang.org/x/net/html/atom"
)

// Validity mirrors the constraint validation flags a browser computes for
// a form control.
type Validity struct {
	ValueMissing    bool
	PatternMismatch bool
}

// Valid reports whether no constraint is violated.
func (v Validity) Valid() bool {
	return !v.ValueMissing && !v.PatternMismatch
}

// FormEntry is one successful control of a form.
type FormEntry struct {
	Name  string
	Value string
}

// IsControl reports whether e is an input or textarea.
func (e *Element) IsControl() bool {
	switch e.node.DataAtom {
	case atom.Input, atom.Textarea:
		return true
	}
	return false
}

func (e *Element) inputType() string {
	t := strings.ToLower(strings.TrimSpace(e.Attr("type")))
	if t == "" {
		return "text"
	}
	return t
}

// barred reports whether e is excluded from constraint validation.
func (e *Element) barred() bool {
	if !e.IsControl() || e.HasAttr("disabled") || e.HasAttr("readonly") {
		return true
	}
	switch e.inputType() {
	case "hidden", "submit", "button", "reset", "image":
		return e.node.DataAtom == atom.Input
	}
	return false
}

// Validity evaluates the required and pattern constraints of e.
// Patterns are anchored to the whole value; an invalid pattern is ignored.
func (e *Element) Validity() Validity {
	var v Validity
	if e.barred() {
		return v
	}

	value := e.Value()
	if e.HasAttr("required") && value == "" {
		v.ValueMissing = true
	}
	if pattern := e.Attr("pattern"); pattern != "" && value != "" && e.node.DataAtom == atom.Input {
		re, err := regexp.Compile("^(?:" + pattern + ")$")
		if err == nil && !re.MatchString(value) {
			v.PatternMismatch = true
		}
	}
	return v
}

// Controls returns the form controls inside e in document order.
func (e *Element) Controls() []*Element {
	return e.QueryAll("input, textarea")
}

// CheckValidity reports whether every control inside e is valid.
func (e *Element) CheckValidity() bool {
	for _, c := range e.Controls() {
		if !c.Validity().Valid() {
			return false
		}
	}
	return true
}

// FormData returns the named, enabled controls of e with their values,
// in document order. Buttons are not included.
func (e *Element) FormData() []FormEntry {
	var out []FormEntry
	for _, c := range e.Controls() {
		name := c.Attr("name")
		if name == "" || c.HasAttr("disabled") {
			continue
		}
		if c.node.DataAtom == atom.Input {
			switch c.inputType() {
			case "submit", "button", "reset", "image":
				continue
			case "checkbox", "radio":
				if !c.HasAttr("checked") {
					continue
				}
			}
		}
		out = append(out, FormEntry{Name: name, Value: c.Value()})
	}
	return out
}

// FormValue returns the value of the first entry called name.
func (e *Element) FormValue(name string) string {
	for _, entry := range e.FormData() {
		if entry.Name == name {
			return entry.Value
		}
	}
	return ""
}
