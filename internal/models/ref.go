package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Entity is implemented by every record mirrored from the backend.
type Entity interface {
	GetID() string
}

// Ref is a reference from a product to a color or a category. The backend
// returns either the populated document or only its identifier.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts both `"id"` and `{"_id": "id", "name": "..."}`.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("invalid reference: %w", err)
		}
		*r = Ref{ID: id}
		return nil
	}

	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("invalid reference: %w", err)
	}
	*r = Ref(p)
	return nil
}

// RefIDs returns the identifiers of refs, in order.
func RefIDs(refs []Ref) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids
}

// RefNames returns the non-empty names of refs, in order.
func RefNames(refs []Ref) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}
