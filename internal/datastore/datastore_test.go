package datastore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pbaille/contacts/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeAPI is an in-memory contacts resource that records request bodies.
type fakeAPI struct {
	mu       sync.Mutex
	contacts map[int]string
	nextID   int
	bodies   []string
	fail     bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		contacts: map[int]string{
			1: `{"id":1,"name":"John Doe","email":"john@example.com","phone":"555-1234","tags":"Work, friend"}`,
			2: `{"id":2,"name":"Jane Roe","email":"jane@example.com","phone":"555-9876","tags":"sales,WORK,"}`,
			3: `{"id":3,"name":"Bob","email":"bob@example.com","phone":"555-0000","tags":null}`,
		},
		nextID: 4,
	}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	if len(body) > 0 {
		f.bodies = append(f.bodies, string(body))
	}
	if f.fail {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/contacts")
	path = strings.TrimPrefix(path, "/")
	switch {
	case path == "" && r.Method == http.MethodGet:
		var items []string
		for id := 1; id < f.nextID; id++ {
			if c, ok := f.contacts[id]; ok {
				items = append(items, c)
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		io.WriteString(w, "["+strings.Join(items, ",")+"]")
	case path == "" && r.Method == http.MethodPost:
		id := f.nextID
		f.nextID++
		c := `{"id":` + strconv.Itoa(id) +
			`,"name":` + gjson.GetBytes(body, "name").Raw +
			`,"email":` + gjson.GetBytes(body, "email").Raw +
			`,"phone":` + gjson.GetBytes(body, "phone").Raw +
			`,"tags":` + gjson.GetBytes(body, "tags").Raw + `}`
		f.contacts[id] = c
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, c)
	default:
		id, err := strconv.Atoi(path)
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		existing, ok := f.contacts[id]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, existing)
		case http.MethodPut:
			c := `{"id":` + strconv.Itoa(id) +
				`,"name":` + gjson.GetBytes(body, "name").Raw +
				`,"email":` + gjson.GetBytes(body, "email").Raw +
				`,"phone":` + gjson.GetBytes(body, "phone").Raw +
				`,"tags":` + gjson.GetBytes(body, "tags").Raw + `}`
			f.contacts[id] = c
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, c)
		case http.MethodDelete:
			delete(f.contacts, id)
			w.WriteHeader(http.StatusNoContent)
		}
	}
}

func newTestStore(t *testing.T) (*Store, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/contacts", WithLogger(zerolog.Nop())), api
}

func TestListNormalizesTags(t *testing.T) {
	s, _ := newTestStore(t)

	contacts := s.List(context.Background())
	require.Len(t, contacts, 3)

	want := []*domain.Contact{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Phone: "555-1234", Tags: []string{"work", "friend"}},
		{ID: 2, Name: "Jane Roe", Email: "jane@example.com", Phone: "555-9876", Tags: []string{"sales", "work"}},
		{ID: 3, Name: "Bob", Email: "bob@example.com", Phone: "555-0000"},
	}
	if diff := cmp.Diff(want, contacts); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, contacts, s.Contacts())
}

func TestListFailureReturnsNil(t *testing.T) {
	s, api := newTestStore(t)
	api.fail = true

	assert.Nil(t, s.List(context.Background()))
	assert.Empty(t, s.Contacts())
}

func TestTransportFailureReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s := New(url, WithLogger(zerolog.Nop()))
	assert.Nil(t, s.List(context.Background()))
	assert.Nil(t, s.Get(context.Background(), 1))
	assert.False(t, s.Delete(context.Background(), 1))
}

func TestGet(t *testing.T) {
	s, _ := newTestStore(t)

	c := s.Get(context.Background(), 2)
	require.NotNil(t, c)
	assert.Equal(t, "Jane Roe", c.Name)
	assert.Equal(t, []string{"sales", "work"}, c.Tags)

	assert.Nil(t, s.Get(context.Background(), 99))
}

func TestCreateAppends(t *testing.T) {
	s, api := newTestStore(t)
	require.NotNil(t, s.List(context.Background()))

	payload, err := FormToJSON([]FormEntry{
		{Name: "name", Value: "Mia"},
		{Name: "email", Value: "mia@example.com"},
		{Name: "phone", Value: "555-2222"},
		{Name: "tags", Value: "Friend, friend,Work"},
	})
	require.NoError(t, err)

	c := s.Create(context.Background(), payload, "application/json")
	require.NotNil(t, c)
	assert.Equal(t, 4, c.ID)
	assert.Equal(t, []string{"friend", "work"}, c.Tags)
	assert.Len(t, s.Contacts(), 4)
	assert.Same(t, c, s.FindByID(4))

	require.Len(t, api.bodies, 1)
	assert.Equal(t, "friend,work", gjson.Get(api.bodies[0], "tags").String())
}

func TestCreateFailureLeavesCollection(t *testing.T) {
	s, api := newTestStore(t)
	require.NotNil(t, s.List(context.Background()))
	api.fail = true

	assert.Nil(t, s.Create(context.Background(), []byte(`{"name":"x"}`), "application/json"))
	assert.Len(t, s.Contacts(), 3)
}

func TestUpdatePreservesIdentity(t *testing.T) {
	s, _ := newTestStore(t)
	require.NotNil(t, s.List(context.Background()))

	held := s.FindByID(1)
	require.NotNil(t, held)

	payload, err := FormToJSON([]FormEntry{
		{Name: "id", Value: "1"},
		{Name: "name", Value: "John Q Doe"},
		{Name: "email", Value: "jq@example.com"},
		{Name: "phone", Value: "555-1111"},
		{Name: "tags", Value: "Marketing"},
	})
	require.NoError(t, err)

	updated := s.Update(context.Background(), 1, payload, "application/json")
	require.NotNil(t, updated)
	assert.Same(t, held, updated)
	assert.Equal(t, "John Q Doe", held.Name)
	assert.Equal(t, "jq@example.com", held.Email)
	assert.Equal(t, []string{"marketing"}, held.Tags)
	assert.Len(t, s.Contacts(), 3)
}

func TestDeleteDoesNotMutateCollection(t *testing.T) {
	s, api := newTestStore(t)
	require.NotNil(t, s.List(context.Background()))

	assert.True(t, s.Delete(context.Background(), 2))
	assert.Len(t, s.Contacts(), 3)
	_, stillThere := api.contacts[2]
	assert.False(t, stillThere)
}

func TestRemoveDropsExactlyOne(t *testing.T) {
	s, _ := newTestStore(t)
	require.NotNil(t, s.List(context.Background()))

	assert.True(t, s.Remove(2))
	assert.Len(t, s.Contacts(), 2)
	assert.Nil(t, s.FindByID(2))
	assert.NotNil(t, s.FindByID(1))
	assert.NotNil(t, s.FindByID(3))

	assert.False(t, s.Remove(2))
	assert.Len(t, s.Contacts(), 2)
}

func TestFindByID(t *testing.T) {
	s, _ := newTestStore(t)
	require.NotNil(t, s.List(context.Background()))

	assert.Equal(t, "Bob", s.FindByID(3).Name)
	for _, id := range []int{0, -1, 4, 100} {
		assert.Nil(t, s.FindByID(id), "id %d", id)
	}
}

func TestFindIDsByTag(t *testing.T) {
	s, _ := newTestStore(t)
	require.NotNil(t, s.List(context.Background()))

	assert.Equal(t, []int{1, 2}, s.FindIDsByTag("work"))
	assert.Equal(t, []int{1, 2}, s.FindIDsByTag("WORK"))
	assert.Equal(t, []int{1}, s.FindIDsByTag("friend"))
	assert.Empty(t, s.FindIDsByTag("engineering"))
}

func TestRequestDecodesByContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/text":
			w.Header().Set("Content-Type", "text/plain")
			io.WriteString(w, `{"id":1}`)
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"id":1}`)
		case "/none":
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL, WithLogger(zerolog.Nop()))
	ctx := context.Background()

	body, ok := s.Request(ctx, http.MethodGet, srv.URL+"/text", nil, "")
	require.True(t, ok)
	assert.Equal(t, `{"id":1}`, body)

	body, ok = s.Request(ctx, http.MethodGet, srv.URL+"/json", nil, "")
	require.True(t, ok)
	assert.Equal(t, json.RawMessage(`{"id":1}`), body)

	body, ok = s.Request(ctx, http.MethodGet, srv.URL+"/none", nil, "")
	require.True(t, ok)
	assert.Nil(t, body)
}

func TestListRejectsTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "hello")
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL, WithLogger(zerolog.Nop()))
	assert.Nil(t, s.List(context.Background()))
}

func TestRequestSendsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL, WithLogger(zerolog.Nop()))
	_, ok := s.Request(context.Background(), http.MethodPost, srv.URL, []byte(`{}`), "application/json")
	require.True(t, ok)
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Len(t, got.Get("X-Request-Id"), 36)
}
