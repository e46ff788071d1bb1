package workspace

import (
	"fmt"
	"slices"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// Fields is a batch of assignments for Entity.Assign.
// Values may be string, int, int64, bool, *Entity (reference, nil clears) or
// []*Entity (collection, replaces the current members).
type Fields map[string]any

// Entity is a handle on an entity inside one transaction.
// Reads on a deleted entity or a closed transaction return zero values.
type Entity struct {
	tx *Tx
	id domain.ID
}

func (e *Entity) ID() domain.ID { return e.id }

func (e *Entity) stored() *domain.Entity {
	s, err := e.tx.lookup(e.id)
	if err != nil {
		return nil
	}
	return s
}

// Exists reports whether the entity is still part of the transaction.
func (e *Entity) Exists() bool { return e.stored() != nil }

// Class returns the entity's class, or the zero ClassRef if it no longer exists.
func (e *Entity) Class() domain.ClassRef {
	if s := e.stored(); s != nil {
		return domain.RefOf(s.Class)
	}
	return domain.ClassRef{}
}

// Is reports whether the entity is an instance of class or one of its subclasses.
func (e *Entity) Is(class domain.ClassRef) bool {
	s := e.stored()
	return s != nil && e.tx.isA(s.Class, class.ID())
}

func (e *Entity) String(key string) string {
	if s := e.stored(); s != nil {
		return s.Strings[key]
	}
	return ""
}

func (e *Entity) Int(key string) int64 {
	if s := e.stored(); s != nil {
		return s.Ints[key]
	}
	return 0
}

func (e *Entity) Bool(key string) bool {
	if s := e.stored(); s != nil {
		return s.Bools[key]
	}
	return false
}

// Ref follows a reference field. Returns nil if unset.
func (e *Entity) Ref(key string) *Entity {
	s := e.stored()
	if s == nil || s.Refs[key] == "" {
		return nil
	}
	return e.tx.handle(s.Refs[key])
}

// List returns the members of a collection field in order.
func (e *Entity) List(key string) []*Entity {
	s := e.stored()
	if s == nil {
		return nil
	}
	out := make([]*Entity, 0, len(s.Lists[key]))
	for _, id := range s.Lists[key] {
		out = append(out, e.tx.handle(id))
	}
	return out
}

func (e *Entity) SetString(key, v string) error {
	s, _, err := e.field(key, domain.KindString)
	if err != nil {
		return err
	}
	s.PutString(key, v)
	e.tx.dirty = true
	return nil
}

func (e *Entity) SetInt(key string, v int64) error {
	s, _, err := e.field(key, domain.KindInt)
	if err != nil {
		return err
	}
	s.PutInt(key, v)
	e.tx.dirty = true
	return nil
}

func (e *Entity) SetBool(key string, v bool) error {
	s, _, err := e.field(key, domain.KindBool)
	if err != nil {
		return err
	}
	s.PutBool(key, v)
	e.tx.dirty = true
	return nil
}

// SetRef points a reference field at target; nil clears it.
// If the field has an inverse, the other end is updated too.
func (e *Entity) SetRef(key string, target *Entity) error {
	s, f, err := e.field(key, domain.KindRef)
	if err != nil {
		return err
	}
	if target == nil {
		if old := s.Refs[key]; old != "" {
			e.tx.unlink(s, f, old)
		}
		return nil
	}
	t, err := e.target(target)
	if err != nil {
		return err
	}
	return e.tx.link(s, f, t)
}

// Add appends target to a collection field, keeping an inverse consistent.
func (e *Entity) Add(key string, target *Entity) error {
	s, f, err := e.field(key, domain.KindList)
	if err != nil {
		return err
	}
	t, err := e.target(target)
	if err != nil {
		return err
	}
	return e.tx.link(s, f, t)
}

// Remove takes target out of a collection field, keeping an inverse consistent.
func (e *Entity) Remove(key string, target *Entity) error {
	s, f, err := e.field(key, domain.KindList)
	if err != nil {
		return err
	}
	if target != nil && slices.Contains(s.Lists[key], target.id) {
		e.tx.unlink(s, f, target.id)
	}
	return nil
}

// Assign applies several fields in key order and stops at the first failure.
func (e *Entity) Assign(fields Fields) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		var err error
		switch v := fields[k].(type) {
		case string:
			err = e.SetString(k, v)
		case int:
			err = e.SetInt(k, int64(v))
		case int64:
			err = e.SetInt(k, v)
		case bool:
			err = e.SetBool(k, v)
		case *Entity:
			err = e.SetRef(k, v)
		case []*Entity:
			err = e.replaceList(k, v)
		default:
			err = e.fieldError(k, fmt.Sprintf("unsupported value type %T", v))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Entity) replaceList(key string, members []*Entity) error {
	for _, old := range e.List(key) {
		if !slices.ContainsFunc(members, func(m *Entity) bool { return m.id == old.id }) {
			if err := e.Remove(key, old); err != nil {
				return err
			}
		}
	}
	for _, m := range members {
		if err := e.Add(key, m); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the entity, every reference to it, and whatever it owns.
func (e *Entity) Delete() error {
	if _, err := e.tx.lookup(e.id); err != nil {
		return err
	}
	return e.tx.delete(e.id)
}

func (e *Entity) field(key string, kind domain.Kind) (*domain.Entity, domain.FieldDef, error) {
	s, err := e.tx.lookup(e.id)
	if err != nil {
		return nil, domain.FieldDef{}, err
	}
	def, err := e.tx.classDef(s.Class)
	if err != nil {
		return nil, domain.FieldDef{}, err
	}
	f, ok := def.Field(key)
	if !ok {
		return nil, domain.FieldDef{}, e.fieldError(key, "no such field")
	}
	if f.Kind != kind {
		return nil, domain.FieldDef{}, e.fieldError(key, fmt.Sprintf("is a %s field, not %s", f.Kind, kind))
	}
	return s, f, nil
}

func (e *Entity) target(t *Entity) (*domain.Entity, error) {
	if t == nil {
		return nil, fmt.Errorf("nil target: %w", domain.ErrEntityNotFound)
	}
	if t.tx != e.tx {
		return nil, fmt.Errorf("%s belongs to another transaction", t.id)
	}
	return e.tx.lookup(t.id)
}

func (e *Entity) fieldError(key, reason string) error {
	class := ""
	if s := e.stored(); s != nil {
		class = e.tx.className(s.Class)
	}
	return &domain.FieldError{Entity: e.id, Class: class, Field: key, Reason: reason}
}
