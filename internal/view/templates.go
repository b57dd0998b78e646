package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/pbaille/contacts/internal/dom"
)

// Markup contract for embedded templates.
const (
	templateSelector = `script[type="text/x-template"]`
	partialSelector  = `[data-type="partial"]`
)

// partialLoader resolves {% include %} names against partials registered
// from the page.
type partialLoader struct {
	partials map[string]string
}

func (l *partialLoader) Abs(base, name string) string {
	return name
}

func (l *partialLoader) Get(path string) (io.Reader, error) {
	src, ok := l.partials[path]
	if !ok {
		return nil, fmt.Errorf("partial %q is not registered", path)
	}
	return strings.NewReader(src), nil
}

// Templates holds every template embedded in a page, compiled by id.
type Templates struct {
	set    *pongo2.TemplateSet
	loader *partialLoader
	byName map[string]*pongo2.Template
}

// CompileTemplates registers every partial of doc by id and then compiles
// every embedded template by id. Partials are registered first because
// includes are resolved at compile time.
func CompileTemplates(doc *dom.Document) (*Templates, error) {
	loader := &partialLoader{partials: make(map[string]string)}
	t := &Templates{
		set:    pongo2.NewSet("contacts", loader),
		loader: loader,
		byName: make(map[string]*pongo2.Template),
	}

	for _, el := range doc.QueryAll(partialSelector) {
		if el.ID() == "" {
			return nil, fmt.Errorf("partial without id")
		}
		loader.partials[el.ID()] = el.Text()
	}

	for _, el := range doc.QueryAll(templateSelector) {
		if el.ID() == "" {
			return nil, fmt.Errorf("template without id")
		}
		tpl, err := t.set.FromString(el.Text())
		if err != nil {
			return nil, fmt.Errorf("compile template %s: %w", el.ID(), err)
		}
		t.byName[el.ID()] = tpl
	}

	return t, nil
}

// Names returns the compiled template ids.
func (t *Templates) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	return names
}

// Has reports whether a template called name was compiled.
func (t *Templates) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Render executes the template called name with data.
func (t *Templates) Render(name string, data map[string]any) (string, error) {
	tpl, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return out, nil
}
