package domain

import (
	"slices"
	"strings"
)

// Snapshot is the complete persisted state of one workspace.
type Snapshot struct {
	// Name is the workspace identifier.
	Name string `json:"name"`

	// Version is bumped by the store on every successful commit.
	// A snapshot with Version 0 has never been stored.
	Version int64 `json:"version"`

	// Members maps a user name to the bcrypt hash of that user's access token.
	Members map[string]string `json:"members,omitempty"`

	Entities map[ID]*Entity `json:"entities"`
}

// NewSnapshot creates an empty, never stored snapshot.
func NewSnapshot(name string) *Snapshot {
	return &Snapshot{
		Name:     name,
		Members:  make(map[string]string),
		Entities: make(map[ID]*Entity),
	}
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Name:     s.Name,
		Version:  s.Version,
		Members:  make(map[string]string, len(s.Members)),
		Entities: make(map[ID]*Entity, len(s.Entities)),
	}
	for k, v := range s.Members {
		c.Members[k] = v
	}
	for id, e := range s.Entities {
		c.Entities[id] = e.Clone()
	}
	return c
}

// Sorted returns the entities ordered by ID.
func (s *Snapshot) Sorted() []*Entity {
	out := make([]*Entity, 0, len(s.Entities))
	for _, e := range s.Entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Entity) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

// Referrers returns the IDs of entities holding a reference to target, ordered by ID.
func (s *Snapshot) Referrers(target ID) []ID {
	var out []ID
	for _, e := range s.Sorted() {
		if e.ID != target && e.References(target) {
			out = append(out, e.ID)
		}
	}
	return out
}
