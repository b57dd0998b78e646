package app

import (
	"github.com/pbaille/contacts/internal/dom"
	"github.com/pbaille/contacts/internal/domain"
)

// Renderer is the document surface the controller drives. view.Renderer
// implements it.
type Renderer interface {
	RenderList(contacts []*domain.Contact) error
	ShowForm(c *domain.Contact) error
	HideForm()

	BindNewContact(fn func(target *dom.Element))
	BindCancel(fn func(target *dom.Element))
	BindEdit(fn func(item *dom.Element))
	BindDelete(fn func(item *dom.Element))
	BindTags(fn func(tag *dom.Element))
	BindClearTag(fn func())
	BindSearch(fn func(key string))
	BindSubmit(valid, invalid func(form *dom.Element))
	BindFocusOut(fn func(input *dom.Element))
	BindFocusIn(fn func(input *dom.Element))

	ConfirmDestructive(item *dom.Element) bool
	RemoveContact(item *dom.Element)

	SearchValue() string
	SetSearchValue(v string)
	FilterByText(text string)
	FilterByIDs(ids []int)
	ClearFilter()
	ShowClearTag()
	HideClearTag()

	SetFormError(msg string)
	FieldLabel(input *dom.Element) string
	SetFieldError(input *dom.Element, msg string)
	ClearFieldError(input *dom.Element)
	FieldInvalid(input *dom.Element) bool
}
