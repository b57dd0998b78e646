// Package app wires renderer events to datastore operations.
//
// The controller has two implicit modes. In list mode the form is hidden
// and list bindings are live; they are registered once at startup. In form
// mode a new or edit form is displayed and its bindings are registered
// every time the form is shown, because the form markup is recreated.
package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pbaille/contacts/internal/datastore"
	"github.com/pbaille/contacts/internal/dom"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InvalidSubmitMessage is shown when a submitted form fails validation.
const InvalidSubmitMessage = "Fix errors before submitting contact"

const jsonContentType = "application/json"

// Controller connects a Renderer to a DataStore.
type Controller struct {
	ctx    context.Context
	store  *datastore.Store
	view   Renderer
	logger zerolog.Logger
	bound  bool
}

// New creates a controller. Call Start to perform the first render.
func New(store *datastore.Store, view Renderer) *Controller {
	return &Controller{
		ctx:    context.Background(),
		store:  store,
		view:   view,
		logger: log.With().Str("component", "app").Logger(),
	}
}

// Start loads the contacts, renders the list and registers list bindings.
// ctx is used for every request issued by later handlers. Calling Start
// again reloads and re-renders without registering the bindings twice.
func (c *Controller) Start(ctx context.Context) error {
	c.ctx = ctx
	if c.store.List(ctx) == nil {
		c.logger.Warn().Msg("contacts could not be loaded")
	}
	if err := c.view.RenderList(c.store.Contacts()); err != nil {
		return fmt.Errorf("render contacts: %w", err)
	}
	if !c.bound {
		c.bindEvents()
		c.bound = true
	}
	return nil
}

func (c *Controller) bindEvents() {
	c.view.BindNewContact(c.handleNewContact)
	c.view.BindDelete(c.handleDelete)
	c.view.BindEdit(c.handleEdit)
	c.view.BindSearch(c.handleSearch)
	c.view.BindTags(c.handleTag)
	c.view.BindClearTag(c.handleClearTag)
}

func (c *Controller) bindFormEvents() {
	c.view.BindCancel(c.handleCancel)
	c.view.BindSubmit(c.handleSubmit, c.handleInvalidSubmit)
	c.view.BindFocusOut(c.handleFocusOut)
	c.view.BindFocusIn(c.handleFocusIn)
}

func (c *Controller) handleNewContact(*dom.Element) {
	if err := c.view.ShowForm(nil); err != nil {
		c.logger.Error().Err(err).Msg("show form")
		return
	}
	c.bindFormEvents()
}

func (c *Controller) handleEdit(item *dom.Element) {
	id, err := strconv.Atoi(item.Dataset("id"))
	if err != nil {
		c.logger.Error().Str("id", item.Dataset("id")).Msg("contact item without numeric id")
		return
	}
	contact := c.store.FindByID(id)
	if contact == nil {
		c.logger.Warn().Int("id", id).Msg("edit: contact not found")
		return
	}
	if err := c.view.ShowForm(contact); err != nil {
		c.logger.Error().Err(err).Msg("show form")
		return
	}
	c.bindFormEvents()
}

func (c *Controller) handleCancel(*dom.Element) {
	c.view.HideForm()
}

func (c *Controller) handleSubmit(form *dom.Element) {
	fields := form.FormData()
	entries := make([]datastore.FormEntry, 0, len(fields))
	for _, f := range fields {
		entries = append(entries, datastore.FormEntry{Name: f.Name, Value: f.Value})
	}

	payload, err := datastore.FormToJSON(entries)
	if err != nil {
		c.logger.Error().Err(err).Msg("encode form")
		return
	}

	if raw := strings.TrimSpace(form.FormValue("id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.logger.Error().Str("id", raw).Msg("form id is not numeric")
			return
		}
		c.store.Update(c.ctx, id, payload, jsonContentType)
	} else {
		c.store.Create(c.ctx, payload, jsonContentType)
	}

	if err := c.view.RenderList(c.store.Contacts()); err != nil {
		c.logger.Error().Err(err).Msg("render contacts")
	}
	c.view.HideForm()
}

func (c *Controller) handleInvalidSubmit(*dom.Element) {
	c.view.SetFormError(InvalidSubmitMessage)
}

// handleDelete removes the contact locally before the remote delete is
// issued. A failed remote delete is logged and not rolled back.
func (c *Controller) handleDelete(item *dom.Element) {
	if !c.view.ConfirmDestructive(item) {
		return
	}

	id, err := strconv.Atoi(item.Dataset("id"))
	if err != nil {
		c.logger.Error().Str("id", item.Dataset("id")).Msg("contact item without numeric id")
		return
	}
	c.store.Remove(id)
	c.view.RemoveContact(item)
	if !c.store.Delete(c.ctx, id) {
		c.logger.Warn().Int("id", id).Msg("remote delete failed; local copy already removed")
	}
}

func (c *Controller) handleSearch(key string) {
	text := c.view.SearchValue()
	if key == "Backspace" {
		if text != "" {
			_, size := utf8.DecodeLastRuneInString(text)
			text = text[:len(text)-size]
		}
	} else if utf8.RuneCountInString(key) == 1 {
		text += key
	}
	c.view.SetSearchValue(text)
	c.view.FilterByText(text)
}

func (c *Controller) handleTag(tag *dom.Element) {
	name := strings.ToLower(strings.TrimSpace(tag.Text()))
	c.view.FilterByIDs(c.store.FindIDsByTag(name))
	c.view.ShowClearTag()
}

func (c *Controller) handleClearTag() {
	c.view.ClearFilter()
	c.view.HideClearTag()
}

func (c *Controller) handleFocusOut(input *dom.Element) {
	validity := input.Validity()
	switch {
	case validity.ValueMissing:
		c.view.SetFieldError(input, fmt.Sprintf("%s is a required field.", c.view.FieldLabel(input)))
	case validity.PatternMismatch:
		c.view.SetFieldError(input, fmt.Sprintf("Please enter a valid %s", c.view.FieldLabel(input)))
	}
}

func (c *Controller) handleFocusIn(input *dom.Element) {
	if !c.view.FieldInvalid(input) {
		return
	}
	c.view.ClearFieldError(input)
}
