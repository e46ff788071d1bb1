package workspace

import (
	"fmt"
	"slices"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// link makes a's field f refer to b and, when f has an inverse, makes b refer back.
// A reference field first lets go of its previous target. An inverse that is itself a
// reference takes b away from whichever entity held it before.
func (tx *Tx) link(a *domain.Entity, f domain.FieldDef, b *domain.Entity) error {
	if f.Target != "" && !tx.isA(b.Class, f.Target) {
		return &domain.FieldError{
			Entity: a.ID,
			Class:  tx.className(a.Class),
			Field:  f.Key,
			Reason: fmt.Sprintf("expects %s, got %s", tx.className(f.Target), tx.className(b.Class)),
		}
	}

	var inv domain.FieldDef
	if f.Inverse != "" {
		def, err := tx.classDef(b.Class)
		if err != nil {
			return err
		}
		var ok bool
		if inv, ok = def.Field(f.Inverse); !ok {
			return &domain.FieldError{
				Entity: b.ID,
				Class:  def.Name,
				Field:  f.Inverse,
				Reason: fmt.Sprintf("missing inverse of %s.%s", tx.className(a.Class), f.Key),
			}
		}
	}

	switch f.Kind {
	case domain.KindRef:
		old := a.Refs[f.Key]
		if old == b.ID {
			return nil
		}
		if old != "" {
			tx.unlink(a, f, old)
		}
	case domain.KindList:
		if slices.Contains(a.Lists[f.Key], b.ID) {
			return nil
		}
	}

	if inv.Kind == domain.KindRef {
		if prev := b.Refs[inv.Key]; prev != "" && prev != a.ID {
			if p, ok := tx.snap.Entities[prev]; ok {
				p.Drop(f.Key, b.ID)
			}
		}
	}

	if f.Kind == domain.KindRef {
		a.PutRef(f.Key, b.ID)
	} else {
		a.Append(f.Key, b.ID)
	}
	switch inv.Kind {
	case domain.KindRef:
		b.PutRef(inv.Key, a.ID)
	case domain.KindList:
		b.Append(inv.Key, a.ID)
	}

	tx.dirty = true
	return nil
}

// unlink removes target from a's field f and a from target's inverse field.
func (tx *Tx) unlink(a *domain.Entity, f domain.FieldDef, target domain.ID) {
	a.Drop(f.Key, target)
	if f.Inverse != "" {
		if b, ok := tx.snap.Entities[target]; ok {
			b.Drop(f.Inverse, a.ID)
		}
	}
	tx.dirty = true
}

// delete removes an entity and every reference to it, then cascades:
// owned targets go with it, orphan-collected targets go once nothing references them,
// and a deleted ClassSpec takes its instances along.
func (tx *Tx) delete(id domain.ID) error {
	e, ok := tx.snap.Entities[id]
	if !ok {
		return nil
	}

	var owned, orphans []domain.ID
	if def, err := tx.classDef(e.Class); err == nil {
		if def.Singleton {
			return fmt.Errorf("cannot delete %q: %w", def.Name, domain.ErrSingleton)
		}
		for _, key := range sortedKeys(def.Fields) {
			f := def.Fields[key]
			targets := targetsOf(e, f)
			switch {
			case f.Owned:
				owned = append(owned, targets...)
			case f.Orphans:
				orphans = append(orphans, targets...)
			}
		}
	}
	if e.Class == domain.ClassSpecClassID {
		owned = append(owned, tx.instances(id)...)
	}

	for _, rid := range tx.snap.Referrers(id) {
		tx.snap.Entities[rid].Unlink(id)
	}
	delete(tx.snap.Entities, id)
	tx.dirty = true

	for _, o := range owned {
		if err := tx.delete(o); err != nil {
			return err
		}
	}
	for _, o := range orphans {
		if _, ok := tx.snap.Entities[o]; ok && len(tx.snap.Referrers(o)) == 0 {
			if err := tx.delete(o); err != nil {
				return err
			}
		}
	}
	return nil
}

func targetsOf(e *domain.Entity, f domain.FieldDef) []domain.ID {
	switch f.Kind {
	case domain.KindRef:
		if id := e.Refs[f.Key]; id != "" {
			return []domain.ID{id}
		}
	case domain.KindList:
		return slices.Clone(e.Lists[f.Key])
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
