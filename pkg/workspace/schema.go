package workspace

import (
	"fmt"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// ResolveClass finds a class by name among system classes and ClassSpec entities.
func (tx *Tx) ResolveClass(name string) (domain.ClassRef, error) {
	if tx.closed {
		return domain.ClassRef{}, domain.ErrTxClosed
	}

	var matches []domain.ID
	for _, c := range domain.SystemClasses() {
		if c.Name == name {
			matches = append(matches, c.ID)
		}
	}
	for _, e := range tx.snap.Sorted() {
		if e.Class == domain.ClassSpecClassID && e.Strings["name"] == name {
			matches = append(matches, e.ID)
		}
	}

	switch len(matches) {
	case 0:
		return domain.ClassRef{}, &domain.UnknownClassError{Name: name}
	case 1:
		return domain.RefOf(matches[0]), nil
	default:
		return domain.ClassRef{}, &domain.AmbiguousClassError{Name: name, Matches: matches}
	}
}

// classDef resolves a class against the current state of the transaction.
// User classes are computed on every call so that schema edits made earlier in the
// same transaction are already in effect.
func (tx *Tx) classDef(id domain.ID) (*domain.ClassDef, error) {
	if c, ok := domain.SystemClass(id); ok {
		return c, nil
	}
	return tx.userClass(id, make(map[domain.ID]bool))
}

func (tx *Tx) userClass(id domain.ID, seen map[domain.ID]bool) (*domain.ClassDef, error) {
	spec, ok := tx.snap.Entities[id]
	if !ok || spec.Class != domain.ClassSpecClassID {
		return nil, &domain.UnknownClassError{Name: string(id)}
	}
	if seen[id] {
		return nil, fmt.Errorf("class %q inherits from itself", spec.Strings["name"])
	}
	seen[id] = true

	def := &domain.ClassDef{
		ID:       id,
		Name:     spec.Strings["name"],
		Abstract: spec.Bools["abstract"],
		Ancestor: spec.Refs["ancestor"],
		Fields:   make(map[string]domain.FieldDef),
	}

	if def.Ancestor != "" {
		parent, err := tx.userClass(def.Ancestor, seen)
		if err != nil {
			return nil, fmt.Errorf("ancestor of %q: %w", def.Name, err)
		}
		for k, f := range parent.Fields {
			def.Fields[k] = f
		}
	}

	for _, pid := range spec.Lists["properties"] {
		if f, ok := tx.propertyField(pid); ok {
			def.Fields[f.Key] = f
		}
	}
	return def, nil
}

// fieldClashes describes the properties of spec whose field key is already taken,
// by an earlier property of the same class or by an ancestor.
func (tx *Tx) fieldClashes(spec *domain.Entity) []string {
	inherited := make(map[string]bool)
	if anc := spec.Refs["ancestor"]; anc != "" {
		if parent, err := tx.userClass(anc, map[domain.ID]bool{spec.ID: true}); err == nil {
			for k := range parent.Fields {
				inherited[k] = true
			}
		}
	}

	owner := make(map[string]domain.ID)
	var clashes []string
	for _, pid := range spec.Lists["properties"] {
		f, ok := tx.propertyField(pid)
		if !ok {
			continue
		}
		switch {
		case inherited[f.Key]:
			clashes = append(clashes, fmt.Sprintf("property %s redefines inherited field %q", pid, f.Key))
		case owner[f.Key] != "":
			clashes = append(clashes, fmt.Sprintf("properties %s and %s both map to field %q", owner[f.Key], pid, f.Key))
		default:
			owner[f.Key] = pid
		}
	}
	return clashes
}

// propertyField turns a Property entity into a field definition.
// Properties without a name or a usable type are not fields yet.
func (tx *Tx) propertyField(pid domain.ID) (domain.FieldDef, bool) {
	p, ok := tx.snap.Entities[pid]
	if !ok {
		return domain.FieldDef{}, false
	}
	key := domain.FieldKey(p.Strings["name"])
	typ, ok := tx.snap.Entities[p.Refs["type"]]
	if key == "" || !ok {
		return domain.FieldDef{}, false
	}

	f := domain.FieldDef{Key: key}
	switch typ.Class {
	case domain.StringTypeClassID:
		f.Kind = domain.KindString
	case domain.IntegerTypeClassID:
		f.Kind = domain.KindInt
	case domain.ReferenceTypeClassID:
		f.Kind = domain.KindRef
		f.Target = typ.Refs["elementClass"]
	case domain.CollectionTypeClassID:
		f.Kind = domain.KindList
		f.Target = typ.Refs["elementClass"]
	default:
		return domain.FieldDef{}, false
	}

	if inv, ok := tx.snap.Entities[p.Refs["inverse"]]; ok {
		for _, other := range inv.Lists["properties"] {
			if o, ok := tx.snap.Entities[other]; ok && other != pid {
				f.Inverse = domain.FieldKey(o.Strings["name"])
				break
			}
		}
	}
	return f, true
}

// isA reports whether class is want or inherits from it.
func (tx *Tx) isA(class, want domain.ID) bool {
	seen := make(map[domain.ID]bool)
	for c := class; c != "" && !seen[c]; {
		if c == want {
			return true
		}
		seen[c] = true

		if sys, ok := domain.SystemClass(c); ok {
			c = sys.Ancestor
			continue
		}
		spec, ok := tx.snap.Entities[c]
		if !ok || spec.Class != domain.ClassSpecClassID {
			return false
		}
		c = spec.Refs["ancestor"]
	}
	return false
}

func (tx *Tx) className(id domain.ID) string {
	if def, err := tx.classDef(id); err == nil && def.Name != "" {
		return def.Name
	}
	return string(id)
}
