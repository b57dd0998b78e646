package datastore

import (
	"fmt"

	"github.com/pbaille/contacts/internal/domain"
	"github.com/tidwall/sjson"
)

// FormEntry is one name/value pair of a submitted form.
type FormEntry struct {
	Name  string
	Value string
}

// FormToJSON builds the wire payload for a submitted form. Entries keep
// their document order and a later entry with the same name wins. The tags
// entry is normalized and de-duplicated.
func FormToJSON(entries []FormEntry) ([]byte, error) {
	payload := []byte(`{}`)
	hasTags := false
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		value := e.Value
		if e.Name == "tags" {
			value = domain.NormalizeTags(value)
			hasTags = true
		}

		var err error
		payload, err = sjson.SetBytes(payload, escapePath(e.Name), value)
		if err != nil {
			return nil, fmt.Errorf("set %s: %w", e.Name, err)
		}
	}
	if !hasTags {
		var err error
		payload, err = sjson.SetBytes(payload, "tags", "")
		if err != nil {
			return nil, fmt.Errorf("set tags: %w", err)
		}
	}
	return payload, nil
}

// escapePath quotes the characters sjson treats as path syntax so form field
// names are always used as literal keys.
func escapePath(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '.', '*', '?', '|', '#', '@', '!', '\\', ':':
			out = append(out, '\\')
		}
		out = append(out, name[i])
	}
	return string(out)
}
