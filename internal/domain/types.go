package domain

import (
	"encoding/json"
	"strings"
)

// Contact represents a single address book entry.
// Tags are held lowercase, unique and in first-seen order.
type Contact struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Phone string   `json:"phone"`
	Tags  []string `json:"tags"`
}

// wireContact is the JSON shape used by the REST resource, where tags
// travel as a comma separated string.
type wireContact struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone string  `json:"phone"`
	Tags  *string `json:"tags"`
}

// MarshalJSON encodes the contact in wire format.
func (c Contact) MarshalJSON() ([]byte, error) {
	tags := FormatTags(c.Tags)
	return json.Marshal(wireContact{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
		Tags:  &tags,
	})
}

// UnmarshalJSON decodes a wire contact and normalizes its tags.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var w wireContact
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	c.ID = w.ID
	c.Name = w.Name
	c.Email = w.Email
	c.Phone = w.Phone
	c.Tags = nil
	if w.Tags != nil {
		c.Tags = ParseTags(*w.Tags)
	}
	return nil
}

// HasTag reports whether the contact carries tag, ignoring case.
func (c *Contact) HasTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ParseTags splits a comma separated tag string into a lowercase,
// de-duplicated slice. Surrounding whitespace and a trailing empty
// segment are dropped.
func ParseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimRight(raw, " \t\n\r,")
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		tag := strings.ToLower(strings.TrimSpace(p))
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// FormatTags joins tags back into their wire representation.
func FormatTags(tags []string) string {
	return strings.Join(tags, ",")
}

// NormalizeTags is ParseTags followed by FormatTags.
func NormalizeTags(raw string) string {
	return FormatTags(ParseTags(raw))
}
