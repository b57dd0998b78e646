package store

import (
	"path/filepath"
	"testing"

	"github.com/pbaille/contacts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "contacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndGetContact(t *testing.T) {
	s := newTestStore(t)

	c, err := s.AddContact(domain.Contact{Name: "Jo Smith", Email: "jo@example.com", Tags: []string{"Work", "friend", "work"}})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, []string{"work", "friend"}, c.Tags)

	got, err := s.GetContact(c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestGetContactNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetContact(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListContactsInInsertionOrder(t *testing.T) {
	s := newTestStore(t)

	list, err := s.ListContacts()
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"Ann", "Bob", "Cy"} {
		_, err := s.AddContact(domain.Contact{Name: name})
		require.NoError(t, err)
	}

	list, err = s.ListContacts()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Ann", list[0].Name)
	assert.Equal(t, "Cy", list[2].Name)
}

func TestUpdateContact(t *testing.T) {
	s := newTestStore(t)

	c, err := s.AddContact(domain.Contact{Name: "Ann", Phone: "111"})
	require.NoError(t, err)

	updated, err := s.UpdateContact(c.ID, domain.Contact{Name: "Ann B", Phone: "222", Tags: []string{"sales"}})
	require.NoError(t, err)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "Ann B", updated.Name)
	assert.Equal(t, []string{"sales"}, updated.Tags)

	_, err = s.UpdateContact(999, domain.Contact{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteContact(t *testing.T) {
	s := newTestStore(t)

	c, err := s.AddContact(domain.Contact{Name: "Ann"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteContact(c.ID))
	assert.ErrorIs(t, s.DeleteContact(c.ID), ErrNotFound)

	_, err = s.GetContact(c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchContacts(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"John", "Joanna", "Mike"} {
		_, err := s.AddContact(domain.Contact{Name: name})
		require.NoError(t, err)
	}

	found, err := s.SearchContacts("jo")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}
