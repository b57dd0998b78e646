// Package view renders contacts into a dom.Document and turns document
// events into callbacks. It holds no business logic: callbacks receive the
// element or key involved and decide what to do.
package view

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pbaille/contacts/internal/dom"
	"github.com/pbaille/contacts/internal/domain"
)

//go:embed assets/page.html
var DefaultPage string

// Template ids the renderer relies on.
const (
	ListTemplate = "contact-list-template"
	FormTemplate = "form_template"
)

// Class and id contract with the page markup.
const (
	hiddenClass  = "hidden"
	invalidClass = "invalid_field"
)

// Renderer owns every read and write of the document.
type Renderer struct {
	doc       *dom.Document
	templates *Templates
	confirm   Confirmer

	main              *dom.Element
	formContainer     *dom.Element
	contactsContainer *dom.Element
	search            *dom.Element
	clearTag          *dom.Element

	form         *dom.Element
	contactsList *dom.Element
	contacts     []*dom.Element
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithConfirmer replaces the terminal confirmation prompt.
func WithConfirmer(c Confirmer) Option {
	return func(r *Renderer) {
		if c != nil {
			r.confirm = c
		}
	}
}

// New compiles the templates embedded in doc and acquires the elements the
// renderer works with.
func New(doc *dom.Document, opts ...Option) (*Renderer, error) {
	templates, err := CompileTemplates(doc)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{ListTemplate, FormTemplate} {
		if !templates.Has(name) {
			return nil, fmt.Errorf("page is missing template %s", name)
		}
	}

	r := &Renderer{
		doc:       doc,
		templates: templates,
		confirm:   SurveyConfirmer{},
	}
	for _, opt := range opts {
		opt(r)
	}

	required := map[string]**dom.Element{
		"main":                    &r.main,
		"#contact_form_container": &r.formContainer,
		"#contacts":               &r.contactsContainer,
		"#search":                 &r.search,
		"#clear_tag":              &r.clearTag,
	}
	for sel, dst := range required {
		el := doc.Query(sel)
		if el == nil {
			return nil, fmt.Errorf("page is missing %s", sel)
		}
		*dst = el
	}

	return r, nil
}

// NewDefault parses the embedded default page and builds a Renderer on it.
func NewDefault(opts ...Option) (*Renderer, error) {
	doc, err := dom.ParseString(DefaultPage)
	if err != nil {
		return nil, err
	}
	return New(doc, opts...)
}

// Document returns the document being rendered.
func (r *Renderer) Document() *dom.Document { return r.doc }

// Form returns the displayed contact form, or nil in list mode.
func (r *Renderer) Form() *dom.Element { return r.form }

// ContactElements returns the rendered contact items.
func (r *Renderer) ContactElements() []*dom.Element { return r.contacts }

// RenderList replaces the list container content with the rendered list.
func (r *Renderer) RenderList(contacts []*domain.Contact) error {
	items := make([]map[string]any, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, contactData(c))
	}

	out, err := r.templates.Render(ListTemplate, map[string]any{"contacts": items})
	if err != nil {
		return err
	}
	if err := r.contactsContainer.SetInnerHTML(out); err != nil {
		return err
	}
	r.acquireContacts()
	return nil
}

func (r *Renderer) acquireContacts() {
	r.contactsList = r.doc.Query("#contacts_list")
	r.contacts = r.doc.QueryAll("#contacts_list li")
}

// ShowForm hides the list and displays the contact form, pre-filled from c
// when c is not nil.
func (r *Renderer) ShowForm(c *domain.Contact) error {
	data := map[string]any{}
	if c != nil {
		data = contactData(c)
		data["tags"] = domain.FormatTags(c.Tags)
	}

	out, err := r.templates.Render(FormTemplate, data)
	if err != nil {
		return err
	}

	r.contactsContainer.AddClass(hiddenClass)
	if err := r.formContainer.SetInnerHTML(out); err != nil {
		return err
	}
	r.form = r.formContainer.FirstElementChild()
	r.formContainer.RemoveClass(hiddenClass)
	return nil
}

// HideForm clears the form and shows the list again.
func (r *Renderer) HideForm() {
	r.formContainer.AddClass(hiddenClass)
	r.formContainer.Clear()
	r.form = nil
	r.contactsContainer.RemoveClass(hiddenClass)
}

// BindNewContact calls fn for clicks on any add-contact control.
func (r *Renderer) BindNewContact(fn func(target *dom.Element)) {
	r.main.SetHandler(dom.Click, func(ev *dom.Event) {
		if !ev.Target.HasClass("add_contact") {
			return
		}
		ev.PreventDefault()
		fn(ev.Target)
	})
}

// BindCancel calls fn when the form's cancel button is clicked.
func (r *Renderer) BindCancel(fn func(target *dom.Element)) {
	cancel := r.doc.Query("#cancel_contact_form")
	if cancel == nil {
		return
	}
	cancel.SetHandler(dom.Click, func(ev *dom.Event) {
		ev.PreventDefault()
		fn(ev.Target)
	})
}

// BindEdit calls fn with the contact item whose edit control was clicked.
func (r *Renderer) BindEdit(fn func(item *dom.Element)) {
	r.contactsContainer.AddEventListener(dom.Click, func(ev *dom.Event) {
		if !ev.Target.HasClass("edit_contact") {
			return
		}
		ev.PreventDefault()
		fn(ev.Target.Parent())
	})
}

// BindDelete calls fn with the contact item whose delete control was clicked.
func (r *Renderer) BindDelete(fn func(item *dom.Element)) {
	r.contactsContainer.SetHandler(dom.Click, func(ev *dom.Event) {
		if !ev.Target.HasClass("delete_contact") {
			return
		}
		ev.PreventDefault()
		fn(ev.Target.Parent())
	})
}

// BindTags calls fn with the tag element that was clicked.
func (r *Renderer) BindTags(fn func(tag *dom.Element)) {
	r.contactsContainer.AddEventListener(dom.Click, func(ev *dom.Event) {
		if !ev.Target.HasClass("tag") {
			return
		}
		ev.PreventDefault()
		fn(ev.Target)
	})
}

// BindClearTag calls fn when the clear-tag control is clicked.
func (r *Renderer) BindClearTag(fn func()) {
	r.clearTag.SetHandler(dom.Click, func(ev *dom.Event) {
		ev.PreventDefault()
		fn()
	})
}

// BindSearch calls fn with every printable key and Backspace typed in the
// search box. Other keys keep their default action.
func (r *Renderer) BindSearch(fn func(key string)) {
	r.search.SetHandler(dom.KeyDown, func(ev *dom.Event) {
		if ev.Key != "Backspace" && utf8.RuneCountInString(ev.Key) != 1 {
			return
		}
		ev.PreventDefault()
		fn(ev.Key)
	})
}

// BindSubmit routes submissions of the displayed form to valid or invalid
// depending on native constraint validation.
func (r *Renderer) BindSubmit(valid, invalid func(form *dom.Element)) {
	if r.form == nil {
		return
	}
	r.form.SetHandler(dom.Submit, func(ev *dom.Event) {
		ev.PreventDefault()
		form := ev.CurrentTarget
		if form.CheckValidity() {
			valid(form)
		} else {
			invalid(form)
		}
	})
}

// BindFocusOut calls fn when an input of the form loses focus.
func (r *Renderer) BindFocusOut(fn func(input *dom.Element)) {
	r.bindFormInput(dom.FocusOut, fn)
}

// BindFocusIn calls fn when an input of the form gains focus.
func (r *Renderer) BindFocusIn(fn func(input *dom.Element)) {
	r.bindFormInput(dom.FocusIn, fn)
}

func (r *Renderer) bindFormInput(typ string, fn func(input *dom.Element)) {
	if r.form == nil {
		return
	}
	r.form.AddEventListener(typ, func(ev *dom.Event) {
		if ev.Target.TagName() != "input" {
			return
		}
		fn(ev.Target)
	})
}

// ConfirmDestructive asks before deleting the contact shown by item.
func (r *Renderer) ConfirmDestructive(item *dom.Element) bool {
	name := ""
	if h := item.Query("h3"); h != nil {
		name = strings.TrimSpace(h.Text())
	}
	return r.confirm.Confirm(fmt.Sprintf("Are you sure? Deleting %s can't be undone.", name))
}

// RemoveContact detaches a contact item from the list.
func (r *Renderer) RemoveContact(item *dom.Element) {
	item.Remove()
	kept := r.contacts[:0]
	for _, c := range r.contacts {
		if !c.Is(item) {
			kept = append(kept, c)
		}
	}
	r.contacts = kept
}

// SearchValue returns the current search box text.
func (r *Renderer) SearchValue() string { return r.search.Value() }

// SetSearchValue replaces the search box text.
func (r *Renderer) SetSearchValue(v string) { r.search.SetValue(v) }

// FilterByText hides every contact whose name does not contain text,
// ignoring case. An empty text shows everything.
func (r *Renderer) FilterByText(text string) {
	text = strings.ToLower(text)
	for _, c := range r.contacts {
		name := ""
		if first := c.FirstElementChild(); first != nil {
			name = strings.ToLower(first.Text())
		}
		c.SetHidden(!(text == "" || strings.Contains(name, text)))
	}
}

// FilterByIDs hides every contact whose id is not in ids.
func (r *Renderer) FilterByIDs(ids []int) {
	keep := make(map[int]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	for _, c := range r.contacts {
		id, err := strconv.Atoi(c.Dataset("id"))
		c.SetHidden(err != nil || !keep[id])
	}
}

// ClearFilter shows every contact.
func (r *Renderer) ClearFilter() {
	for _, c := range r.contacts {
		c.SetHidden(false)
	}
}

// ShowClearTag reveals the clear-tag control.
func (r *Renderer) ShowClearTag() { r.clearTag.RemoveClass(hiddenClass) }

// HideClearTag hides the clear-tag control.
func (r *Renderer) HideClearTag() { r.clearTag.AddClass(hiddenClass) }

// ClearTagVisible reports whether the clear-tag control is shown.
func (r *Renderer) ClearTagVisible() bool { return !r.clearTag.HasClass(hiddenClass) }

// SetFormError writes msg into the form's error area.
func (r *Renderer) SetFormError(msg string) {
	if r.form == nil {
		return
	}
	if el := r.form.Query(".form_errors"); el != nil {
		el.SetText(msg)
	}
}

// FieldLabel returns the text of the label pointing at input.
func (r *Renderer) FieldLabel(input *dom.Element) string {
	label := r.doc.Query(fmt.Sprintf(`label[for=%q]`, input.Attr("name")))
	if label == nil {
		return input.Attr("name")
	}
	return strings.TrimSpace(label.Text())
}

// SetFieldError shows msg next to input and marks it invalid.
func (r *Renderer) SetFieldError(input *dom.Element, msg string) {
	if span := input.PreviousElementSibling(); span != nil {
		span.SetText(msg)
	}
	input.AddClass(invalidClass)
}

// ClearFieldError removes the message and the invalid marker from input.
func (r *Renderer) ClearFieldError(input *dom.Element) {
	if span := input.PreviousElementSibling(); span != nil {
		span.SetText("")
	}
	input.RemoveClass(invalidClass)
}

// FieldInvalid reports whether input carries the invalid marker.
func (r *Renderer) FieldInvalid(input *dom.Element) bool {
	return input.HasClass(invalidClass)
}

func contactData(c *domain.Contact) map[string]any {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":    c.ID,
		"name":  c.Name,
		"email": c.Email,
		"phone": c.Phone,
		"tags":  tags,
	}
}
