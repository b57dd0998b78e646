// Package datastore holds the client-side contact collection and performs
// all network I/O against the contacts REST resource.
//
// Failures never reach callers as errors: transport errors and non-2xx
// responses are logged and reported as an absent result.
package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pbaille/contacts/internal/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the contacts resource of the development backend.
const DefaultBaseURL = "http://localhost:3000/api/contacts"

// Store owns the in-memory contact collection. It is the only component
// permitted to mutate it.
type Store struct {
	url      string
	client   *http.Client
	logger   zerolog.Logger
	contacts []*domain.Contact
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient overrides the client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) {
		if c != nil {
			s.client = c
		}
	}
}

// WithLogger overrides the logger used for request diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a Store talking to the collection at url.
func New(url string, opts ...Option) *Store {
	if strings.TrimSpace(url) == "" {
		url = DefaultBaseURL
	}
	s := &Store{
		url:    strings.TrimRight(url, "/"),
		client: http.DefaultClient,
		logger: log.With().Str("component", "datastore").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Contacts returns the current collection. The slice is shared; callers
// must not modify it.
func (s *Store) Contacts() []*domain.Contact {
	return s.contacts
}

// List fetches the full collection and replaces the local one.
// It returns nil when the request did not succeed.
func (s *Store) List(ctx context.Context) []*domain.Contact {
	body, ok := s.request(ctx, http.MethodGet, s.url, nil, "")
	if !ok {
		return nil
	}

	var contacts []*domain.Contact
	if !s.decode(body, &contacts) {
		return nil
	}
	if contacts == nil {
		contacts = []*domain.Contact{}
	}
	s.contacts = contacts
	return contacts
}

// Get fetches a single contact. The local collection is not touched.
func (s *Store) Get(ctx context.Context, id int) *domain.Contact {
	body, ok := s.request(ctx, http.MethodGet, s.itemURL(id), nil, "")
	if !ok {
		return nil
	}

	var c domain.Contact
	if !s.decode(body, &c) {
		return nil
	}
	return &c
}

// Create posts payload and appends the created contact to the collection.
func (s *Store) Create(ctx context.Context, payload []byte, contentType string) *domain.Contact {
	body, ok := s.request(ctx, http.MethodPost, s.url, payload, contentType)
	if !ok {
		return nil
	}

	var c domain.Contact
	if !s.decode(body, &c) {
		return nil
	}
	s.contacts = append(s.contacts, &c)
	return &c
}

// Update puts payload and copies the response into the existing contact
// with id, so references held elsewhere observe the new values.
func (s *Store) Update(ctx context.Context, id int, payload []byte, contentType string) *domain.Contact {
	body, ok := s.request(ctx, http.MethodPut, s.itemURL(id), payload, contentType)
	if !ok {
		return nil
	}

	var updated domain.Contact
	if !s.decode(body, &updated) {
		return nil
	}

	existing := s.FindByID(updated.ID)
	if existing == nil {
		s.logger.Warn().Int("id", updated.ID).Msg("updated contact is not in the local collection")
		return nil
	}
	*existing = updated
	return existing
}

// Delete issues the remote delete. It does not mutate the collection; see Remove.
func (s *Store) Delete(ctx context.Context, id int) bool {
	_, ok := s.request(ctx, http.MethodDelete, s.itemURL(id), nil, "")
	return ok
}

// Remove drops the contact with id from the local collection and reports
// whether one was removed.
func (s *Store) Remove(id int) bool {
	for i, c := range s.contacts {
		if c.ID == id {
			s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns the contact with id, or nil.
func (s *Store) FindByID(id int) *domain.Contact {
	for _, c := range s.contacts {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// FindIDsByTag returns the ids of every contact carrying tag.
func (s *Store) FindIDsByTag(tag string) []int {
	ids := []int{}
	for _, c := range s.contacts {
		if c.HasTag(tag) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func (s *Store) itemURL(id int) string {
	return s.url + "/" + strconv.Itoa(id)
}

// decode unmarshals a JSON body into out. Anything else is logged and rejected.
func (s *Store) decode(body any, out any) bool {
	raw, ok := body.(json.RawMessage)
	if !ok {
		s.logger.Error().Type("body", body).Msg("expected a JSON response")
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Error().Err(err).Msg("decode response")
		return false
	}
	return true
}

// Request performs a single request and decodes the response by its content
// type. The second result is false when the request failed.
func (s *Store) Request(ctx context.Context, method, url string, payload []byte, contentType string) (any, bool) {
	return s.request(ctx, method, url, payload, contentType)
}

func (s *Store) request(ctx context.Context, method, url string, payload []byte, contentType string) (any, bool) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		s.logger.Error().Err(err).Str("method", method).Str("url", url).Msg("create request")
		return nil, false
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logger := s.logger.With().
		Str("request_id", requestID).
		Str("method", method).
		Str("url", url).
		Logger()

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error().Err(err).Msg("request failed")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error().Int("status", resp.StatusCode).Msgf("Response Status: %s", resp.Status)
		return nil, false
	}

	data, err := decodeBody(resp)
	if err != nil {
		logger.Error().Err(err).Msg("read response")
		return nil, false
	}
	logger.Debug().Int("status", resp.StatusCode).Msg("request done")
	return data, true
}

// decodeBody returns nil when the response declares no content type,
// json.RawMessage when the type mentions json, and the raw text otherwise.
func decodeBody(resp *http.Response) (any, error) {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if strings.Contains(contentType, "json") {
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid json body")
		}
		return json.RawMessage(data), nil
	}
	return string(data), nil
}
