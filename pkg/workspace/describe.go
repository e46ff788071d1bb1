package workspace

import (
	"slices"
	"strings"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// ClassInfo is a read-only summary of a user class.
type ClassInfo struct {
	ID          domain.ID
	Name        string
	Description string
	Module      string
	Ancestor    string
	Abstract    bool
	Instances   int
	Fields      []FieldInfo
}

// FieldInfo describes one field of a class, inherited fields included.
type FieldInfo struct {
	Key     string
	Kind    domain.Kind
	Target  string
	Inverse string
}

// Describe summarizes every user class of the transaction, ordered by module then name.
func (tx *Tx) Describe() []ClassInfo {
	if tx.closed {
		return nil
	}

	var out []ClassInfo
	for _, spec := range tx.snap.Sorted() {
		if spec.Class != domain.ClassSpecClassID {
			continue
		}
		def, err := tx.classDef(spec.ID)
		if err != nil {
			continue
		}

		info := ClassInfo{
			ID:          spec.ID,
			Name:        def.Name,
			Description: spec.Strings["description"],
			Abstract:    def.Abstract,
			Instances:   len(tx.instances(spec.ID)),
		}
		if m, ok := tx.snap.Entities[spec.Refs["module"]]; ok {
			info.Module = m.Strings["name"]
		}
		if def.Ancestor != "" {
			info.Ancestor = tx.className(def.Ancestor)
		}
		for _, key := range sortedKeys(def.Fields) {
			f := def.Fields[key]
			fi := FieldInfo{Key: key, Kind: f.Kind, Inverse: f.Inverse}
			if f.Target != "" {
				fi.Target = tx.className(f.Target)
			}
			info.Fields = append(info.Fields, fi)
		}
		out = append(out, info)
	}

	slices.SortStableFunc(out, func(a, b ClassInfo) int {
		if c := strings.Compare(a.Module, b.Module); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
