package view

import (
	"testing"

	"github.com/pbaille/contacts/internal/dom"
	"github.com/pbaille/contacts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContacts() []*domain.Contact {
	return []*domain.Contact{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Phone: "555-1234", Tags: []string{"work", "friend"}},
		{ID: 2, Name: "Jane <Roe>", Email: "jane@example.com", Phone: "555-9876", Tags: []string{"sales"}},
		{ID: 5, Name: "Bob Johnson", Email: "bob@example.com", Phone: "555-0000"},
	}
}

func newRenderer(t *testing.T, answer bool) (*Renderer, *[]string) {
	t.Helper()
	var asked []string
	r, err := NewDefault(WithConfirmer(ConfirmFunc(func(msg string) bool {
		asked = append(asked, msg)
		return answer
	})))
	require.NoError(t, err)
	return r, &asked
}

func TestCompileTemplates(t *testing.T) {
	doc, err := dom.ParseString(DefaultPage)
	require.NoError(t, err)

	tpls, err := CompileTemplates(doc)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"contact-list-template", "contact_partial", "form_template"}, tpls.Names())

	_, err = tpls.Render("nope", nil)
	assert.Error(t, err)
}

func TestCompileTemplatesMissingPartial(t *testing.T) {
	doc, err := dom.ParseString(`<html><body>
<script type="text/x-template" id="list">{% include "ghost" %}</script>
</body></html>`)
	require.NoError(t, err)

	_, err = CompileTemplates(doc)
	assert.Error(t, err)
}

func TestNewRequiresPageElements(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><main></main>
<script type="text/x-template" id="contact-list-template"></script>
<script type="text/x-template" id="form_template"></script>
</body></html>`)
	require.NoError(t, err)

	_, err = New(doc)
	assert.ErrorContains(t, err, "page is missing")
}

func TestRenderList(t *testing.T) {
	r, _ := newRenderer(t, true)

	require.NoError(t, r.RenderList(sampleContacts()))
	items := r.ContactElements()
	require.Len(t, items, 3)
	assert.Equal(t, "5", items[2].Dataset("id"))
	assert.Equal(t, "Jane <Roe>", items[1].Query("h3").Text())

	tags := items[0].QueryAll(".tag")
	require.Len(t, tags, 2)
	assert.Equal(t, "friend", tags[1].Text())

	// Re-rendering replaces rather than appends.
	require.NoError(t, r.RenderList(sampleContacts()[:1]))
	assert.Len(t, r.Document().QueryAll("#contacts li"), 1)
	assert.Len(t, r.ContactElements(), 1)
}

func TestRenderEmptyList(t *testing.T) {
	r, _ := newRenderer(t, true)

	require.NoError(t, r.RenderList(nil))
	assert.Empty(t, r.ContactElements())
	assert.Contains(t, r.Document().ByID("contacts").VisibleText(), "There are no contacts.")
}

func TestShowAndHideForm(t *testing.T) {
	r, _ := newRenderer(t, true)
	require.NoError(t, r.RenderList(sampleContacts()))

	require.NoError(t, r.ShowForm(nil))
	require.NotNil(t, r.Form())
	assert.True(t, r.Document().ByID("contacts").HasClass("hidden"))
	assert.False(t, r.Document().ByID("contact_form_container").HasClass("hidden"))
	assert.Nil(t, r.Form().Query(`input[name="id"]`))
	assert.Equal(t, "", r.Form().FormValue("name"))

	r.HideForm()
	assert.Nil(t, r.Form())
	assert.False(t, r.Document().ByID("contacts").HasClass("hidden"))
	assert.True(t, r.Document().ByID("contact_form_container").HasClass("hidden"))
	assert.Nil(t, r.Document().ByID("contact_form"))
}

func TestShowFormPrefilled(t *testing.T) {
	r, _ := newRenderer(t, true)
	c := sampleContacts()[0]

	require.NoError(t, r.ShowForm(c))
	form := r.Form()
	assert.Equal(t, "1", form.FormValue("id"))
	assert.Equal(t, "John Doe", form.FormValue("name"))
	assert.Equal(t, "work,friend", form.FormValue("tags"))
	assert.True(t, form.CheckValidity())
}

func TestFilterByText(t *testing.T) {
	r, _ := newRenderer(t, true)
	require.NoError(t, r.RenderList(sampleContacts()))
	items := r.ContactElements()

	r.FilterByText("JOHN")
	assert.False(t, items[0].Hidden())
	assert.True(t, items[1].Hidden())
	assert.False(t, items[2].Hidden())

	r.FilterByText("")
	for _, it := range items {
		assert.False(t, it.Hidden())
	}
}

func TestFilterByIDs(t *testing.T) {
	r, _ := newRenderer(t, true)
	require.NoError(t, r.RenderList(sampleContacts()))
	items := r.ContactElements()

	r.FilterByIDs([]int{2, 5})
	assert.True(t, items[0].Hidden())
	assert.False(t, items[1].Hidden())
	assert.False(t, items[2].Hidden())

	r.ClearFilter()
	for _, it := range items {
		assert.False(t, it.Hidden())
	}
}

func TestBindingsPreventDefault(t *testing.T) {
	r, _ := newRenderer(t, true)
	require.NoError(t, r.RenderList(sampleContacts()))
	doc := r.Document()

	var edited, deleted, tagged string
	r.BindEdit(func(item *dom.Element) { edited = item.Dataset("id") })
	r.BindDelete(func(item *dom.Element) { deleted = item.Dataset("id") })
	r.BindTags(func(tag *dom.Element) { tagged = tag.Text() })

	ev := doc.Dispatch(doc.Query(`li[data-id="2"] .edit_contact`), dom.Click, "")
	assert.True(t, ev.DefaultPrevented())
	assert.Equal(t, "2", edited)
	assert.Empty(t, deleted)

	doc.Dispatch(doc.Query(`li[data-id="5"] .delete_contact`), dom.Click, "")
	assert.Equal(t, "5", deleted)

	doc.Dispatch(doc.Query(`li[data-id="1"] .tag`), dom.Click, "")
	assert.Equal(t, "work", tagged)

	ev = doc.Dispatch(doc.Query(`li[data-id="1"] h3`), dom.Click, "")
	assert.False(t, ev.DefaultPrevented())
}

func TestBindSearchKeys(t *testing.T) {
	r, _ := newRenderer(t, true)
	doc := r.Document()

	var keys []string
	r.BindSearch(func(key string) { keys = append(keys, key) })

	search := doc.ByID("search")
	assert.True(t, doc.Dispatch(search, dom.KeyDown, "j").DefaultPrevented())
	assert.True(t, doc.Dispatch(search, dom.KeyDown, "Backspace").DefaultPrevented())
	assert.False(t, doc.Dispatch(search, dom.KeyDown, "Shift").DefaultPrevented())
	assert.Equal(t, []string{"j", "Backspace"}, keys)
}

func TestBindSubmitBranches(t *testing.T) {
	r, _ := newRenderer(t, true)
	require.NoError(t, r.ShowForm(nil))

	var result string
	r.BindSubmit(
		func(*dom.Element) { result = "valid" },
		func(*dom.Element) { result = "invalid" },
	)

	form := r.Form()
	r.Document().Dispatch(form, dom.Submit, "")
	assert.Equal(t, "invalid", result)

	form.Query(`[name="name"]`).SetValue("Mia")
	form.Query(`[name="email"]`).SetValue("mia@example.com")
	form.Query(`[name="phone"]`).SetValue("555-2222")
	r.Document().Dispatch(form, dom.Submit, "")
	assert.Equal(t, "valid", result)
}

func TestFieldErrors(t *testing.T) {
	r, _ := newRenderer(t, true)
	require.NoError(t, r.ShowForm(nil))
	input := r.Form().Query(`[name="email"]`)

	assert.Equal(t, "Email address", r.FieldLabel(input))

	r.SetFieldError(input, "Email address is a required field.")
	assert.True(t, r.FieldInvalid(input))
	assert.Equal(t, "Email address is a required field.", input.PreviousElementSibling().Text())

	r.ClearFieldError(input)
	assert.False(t, r.FieldInvalid(input))
	assert.Empty(t, input.PreviousElementSibling().Text())

	r.SetFormError("Fix errors before submitting contact")
	assert.Equal(t, "Fix errors before submitting contact", r.Form().Query(".form_errors").Text())
}

func TestConfirmDestructiveAndRemove(t *testing.T) {
	r, asked := newRenderer(t, false)
	require.NoError(t, r.RenderList(sampleContacts()))
	item := r.ContactElements()[0]

	assert.False(t, r.ConfirmDestructive(item))
	assert.Equal(t, []string{"Are you sure? Deleting John Doe can't be undone."}, *asked)

	r.RemoveContact(item)
	assert.Len(t, r.ContactElements(), 2)
	assert.Nil(t, r.Document().Query(`li[data-id="1"]`))
}

func TestClearTagControl(t *testing.T) {
	r, _ := newRenderer(t, true)
	assert.False(t, r.ClearTagVisible())
	r.ShowClearTag()
	assert.True(t, r.ClearTagVisible())
	r.HideClearTag()
	assert.False(t, r.ClearTagVisible())
}
