package domain

import "slices"

// ID identifies an entity inside a workspace.
type ID string

func (id ID) String() string { return string(id) }

// Entity is the stored form of any workspace object, system or user defined.
// Field values are split by kind so that snapshots survive a JSON round-trip untouched.
type Entity struct {
	ID      ID                `json:"id"`
	Class   ID                `json:"class"`
	Strings map[string]string `json:"strings,omitempty"`
	Ints    map[string]int64  `json:"ints,omitempty"`
	Bools   map[string]bool   `json:"bools,omitempty"`
	Refs    map[string]ID     `json:"refs,omitempty"`
	Lists   map[string][]ID   `json:"lists,omitempty"`
}

// NewEntity returns an entity of the given class with no fields set.
func NewEntity(id ID, class ID) *Entity {
	return &Entity{ID: id, Class: class}
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	c := &Entity{ID: e.ID, Class: e.Class}
	if e.Strings != nil {
		c.Strings = make(map[string]string, len(e.Strings))
		for k, v := range e.Strings {
			c.Strings[k] = v
		}
	}
	if e.Ints != nil {
		c.Ints = make(map[string]int64, len(e.Ints))
		for k, v := range e.Ints {
			c.Ints[k] = v
		}
	}
	if e.Bools != nil {
		c.Bools = make(map[string]bool, len(e.Bools))
		for k, v := range e.Bools {
			c.Bools[k] = v
		}
	}
	if e.Refs != nil {
		c.Refs = make(map[string]ID, len(e.Refs))
		for k, v := range e.Refs {
			c.Refs[k] = v
		}
	}
	if e.Lists != nil {
		c.Lists = make(map[string][]ID, len(e.Lists))
		for k, v := range e.Lists {
			c.Lists[k] = slices.Clone(v)
		}
	}
	return c
}

// References reports whether any reference or collection field of e points at target.
func (e *Entity) References(target ID) bool {
	for _, id := range e.Refs {
		if id == target {
			return true
		}
	}
	for _, ids := range e.Lists {
		if slices.Contains(ids, target) {
			return true
		}
	}
	return false
}

// Unlink drops every reference from e to target and reports whether anything changed.
// It does not touch the other side of an inverse pair.
func (e *Entity) Unlink(target ID) bool {
	changed := false
	for k, id := range e.Refs {
		if id == target {
			delete(e.Refs, k)
			changed = true
		}
	}
	for k, ids := range e.Lists {
		if slices.Contains(ids, target) {
			e.Lists[k] = slices.DeleteFunc(ids, func(id ID) bool { return id == target })
			changed = true
		}
	}
	return changed
}

// PutString sets a string field.
func (e *Entity) PutString(key, v string) {
	if e.Strings == nil {
		e.Strings = make(map[string]string)
	}
	e.Strings[key] = v
}

// PutInt sets an integer field.
func (e *Entity) PutInt(key string, v int64) {
	if e.Ints == nil {
		e.Ints = make(map[string]int64)
	}
	e.Ints[key] = v
}

// PutBool sets a boolean field.
func (e *Entity) PutBool(key string, v bool) {
	if e.Bools == nil {
		e.Bools = make(map[string]bool)
	}
	e.Bools[key] = v
}

// PutRef points a reference field at target. An empty target clears the field.
func (e *Entity) PutRef(key string, target ID) {
	if target == "" {
		delete(e.Refs, key)
		return
	}
	if e.Refs == nil {
		e.Refs = make(map[string]ID)
	}
	e.Refs[key] = target
}

// Append adds target to a collection field unless it is already present.
func (e *Entity) Append(key string, target ID) {
	if e.Lists == nil {
		e.Lists = make(map[string][]ID)
	}
	if slices.Contains(e.Lists[key], target) {
		return
	}
	e.Lists[key] = append(e.Lists[key], target)
}

// Drop removes target from field key, whether it is a reference or a collection.
func (e *Entity) Drop(key string, target ID) {
	if e.Refs[key] == target {
		delete(e.Refs, key)
	}
	if ids, ok := e.Lists[key]; ok {
		e.Lists[key] = slices.DeleteFunc(ids, func(id ID) bool { return id == target })
		if len(e.Lists[key]) == 0 {
			delete(e.Lists, key)
		}
	}
}
