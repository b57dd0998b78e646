package api

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pbaille/contacts/internal/domain"
	"github.com/pbaille/contacts/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server exposes the contacts REST resource backed by the sqlite store.
type Server struct {
	store    *store.Store
	addr     string
	sanitize *bluemonday.Policy
	logger   zerolog.Logger
}

// New creates a new API server
func New(s *store.Store, addr string) *Server {
	return &Server{
		store:    s,
		addr:     addr,
		sanitize: bluemonday.StrictPolicy(),
		logger:   log.With().Str("component", "api").Logger(),
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/contacts", s.listContacts)
	mux.HandleFunc("POST /api/contacts", s.addContact)
	mux.HandleFunc("GET /api/contacts/{id}", s.getContact)
	mux.HandleFunc("PUT /api/contacts/{id}", s.updateContact)
	mux.HandleFunc("DELETE /api/contacts/{id}", s.deleteContact)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return s.withRequestID(withCORS(mux))
}

// Run starts the HTTP server and blocks until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("starting server")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS headers for browser clients
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

// withRequestID tags each request with an id, reusing the caller's when present.
func (s *Server) withRequestID(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		start := time.Now()
		h.ServeHTTP(w, r)
		s.logger.Debug().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("handled")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ContactRequest is the request body for creating or updating a contact.
// Unknown fields, such as the id echoed back by form submissions, are ignored.
type ContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Tags  string `json:"tags"`
}

func (s *Server) decodeContact(r *http.Request) (domain.Contact, error) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.Contact{}, errors.New("invalid request body")
	}

	c := domain.Contact{
		Name:  s.clean(req.Name),
		Email: s.clean(req.Email),
		Phone: s.clean(req.Phone),
		Tags:  domain.ParseTags(s.clean(req.Tags)),
	}
	if c.Name == "" {
		return domain.Contact{}, errors.New("name is required")
	}
	return c, nil
}

// clean strips markup from a submitted field and returns plain text.
func (s *Server) clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitize.Sanitize(v)))
}

func (s *Server) addContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.decodeContact(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.AddContact(c)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) getContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := s.store.GetContact(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := s.decodeContact(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.store.UpdateContact(id, c)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteContact(id); err != nil {
		writeStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	var (
		contacts []domain.Contact
		err      error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		contacts, err = s.store.SearchContacts(q)
	} else {
		contacts, err = s.store.ListContacts()
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if contacts == nil {
		contacts = []domain.Contact{}
	}

	writeJSON(w, http.StatusOK, contacts)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
