package workspace

import (
	"fmt"
	"slices"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// Check verifies the invariants of the working snapshot:
// every entity has a known class, no reference dangles, collections hold no duplicates,
// both ends of every inverse pair agree, no two properties of a class share a field key,
// and each singleton class has exactly one instance.
// Transact runs it before every commit.
func (tx *Tx) Check() error {
	if tx.closed {
		return domain.ErrTxClosed
	}

	var violations []domain.Violation
	report := func(id domain.ID, field, format string, args ...any) {
		violations = append(violations, domain.Violation{Entity: id, Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	singletons := make(map[domain.ID]int)
	for _, c := range domain.SystemClasses() {
		if c.Singleton {
			singletons[c.ID] = 0
		}
	}

	for _, e := range tx.snap.Sorted() {
		for _, key := range sortedKeys(e.Refs) {
			if _, ok := tx.snap.Entities[e.Refs[key]]; !ok {
				report(e.ID, key, "dangling reference to %s", e.Refs[key])
			}
		}
		for _, key := range sortedKeys(e.Lists) {
			ids := e.Lists[key]
			for i, id := range ids {
				if _, ok := tx.snap.Entities[id]; !ok {
					report(e.ID, key, "dangling reference to %s", id)
				}
				if slices.Index(ids, id) != i {
					report(e.ID, key, "duplicate member %s", id)
				}
			}
		}

		if e.Class == domain.ClassSpecClassID {
			for _, clash := range tx.fieldClashes(e) {
				report(e.ID, "properties", "%s", clash)
			}
		}

		def, err := tx.classDef(e.Class)
		if err != nil {
			report(e.ID, "", "unknown class %s", e.Class)
			continue
		}
		if _, ok := singletons[def.ID]; ok {
			singletons[def.ID]++
		}

		for _, key := range sortedKeys(def.Fields) {
			f := def.Fields[key]
			if f.Inverse == "" {
				continue
			}
			for _, tid := range targetsOf(e, f) {
				t, ok := tx.snap.Entities[tid]
				if !ok {
					continue
				}
				if t.Refs[f.Inverse] != e.ID && !slices.Contains(t.Lists[f.Inverse], e.ID) {
					report(e.ID, key, "%s.%s does not point back", tid, f.Inverse)
				}
			}
		}
	}

	for _, id := range sortedKeys(stringKeyed(singletons)) {
		if n := singletons[domain.ID(id)]; n != 1 {
			report(domain.ID(id), "", "singleton class has %d instances", n)
		}
	}

	if len(violations) > 0 {
		return &domain.InvariantError{Violations: violations}
	}
	return nil
}

func stringKeyed(m map[domain.ID]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
