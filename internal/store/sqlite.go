package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/contacts/internal/domain"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no contact matches the requested id.
var ErrNotFound = errors.New("contact not found")

// Store handles database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// AddContact inserts a contact and returns it with its assigned id.
// Tags are normalized before they are written.
func (s *Store) AddContact(c domain.Contact) (*domain.Contact, error) {
	tags := domain.FormatTags(c.Tags)
	res, err := s.db.Exec(
		"INSERT INTO contacts (name, email, phone, tags, created_at) VALUES (?, ?, ?, ?, ?)",
		c.Name, c.Email, c.Phone, domain.NormalizeTags(tags), time.Now(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert contact id: %w", err)
	}

	return s.GetContact(int(id))
}

// GetContact retrieves a contact by id
func (s *Store) GetContact(id int) (*domain.Contact, error) {
	var (
		c    domain.Contact
		tags string
	)
	err := s.db.QueryRow(
		"SELECT id, name, email, phone, tags FROM contacts WHERE id = ?",
		id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	c.Tags = domain.ParseTags(tags)

	return &c, nil
}

// ListContacts returns every contact in insertion order
func (s *Store) ListContacts() ([]domain.Contact, error) {
	rows, err := s.db.Query("SELECT id, name, email, phone, tags FROM contacts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		var (
			c    domain.Contact
			tags string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &tags); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		c.Tags = domain.ParseTags(tags)
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	return contacts, nil
}

// UpdateContact overwrites the stored fields of the contact with id.
func (s *Store) UpdateContact(id int, c domain.Contact) (*domain.Contact, error) {
	res, err := s.db.Exec(
		"UPDATE contacts SET name = ?, email = ?, phone = ?, tags = ? WHERE id = ?",
		c.Name, c.Email, c.Phone, domain.NormalizeTags(domain.FormatTags(c.Tags)), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return s.GetContact(id)
}

// DeleteContact removes the contact with id
func (s *Store) DeleteContact(id int) error {
	res, err := s.db.Exec("DELETE FROM contacts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchContacts returns contacts whose name contains query
func (s *Store) SearchContacts(query string) ([]domain.Contact, error) {
	rows, err := s.db.Query(
		"SELECT id, name, email, phone, tags FROM contacts WHERE name LIKE ? ORDER BY id",
		"%"+query+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("search contacts: %w", err)
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var (
			c    domain.Contact
			tags string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &tags); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		c.Tags = domain.ParseTags(tags)
		contacts = append(contacts, c)
	}

	return contacts, nil
}
