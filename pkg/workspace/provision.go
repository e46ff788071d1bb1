package workspace

import (
	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// Fixed identities of the entities every workspace starts with.
const (
	WorkspaceRootID    domain.ID = "workspace"
	SystemModuleID     domain.ID = "module-system"
	MainModuleID       domain.ID = "module-main"
	DefaultLookupStore domain.ID = "store-default"
)

// seed builds the initial snapshot of a workspace: the root, the system module, and one
// user module with its default lookup store.
func seed(name string) (*domain.Snapshot, error) {
	tx := newTx(domain.NewSnapshot(name))

	root, err := tx.create(WorkspaceRootID, domain.WorkspaceClass)
	if err != nil {
		return nil, err
	}
	system, err := tx.create(SystemModuleID, domain.ModuleClass)
	if err != nil {
		return nil, err
	}
	main, err := tx.create(MainModuleID, domain.ModuleClass)
	if err != nil {
		return nil, err
	}
	store, err := tx.create(DefaultLookupStore, domain.StoreClass)
	if err != nil {
		return nil, err
	}

	steps := []struct {
		entity *Entity
		fields Fields
	}{
		{root, Fields{"name": name}},
		{system, Fields{"name": "System", "description": "Platform classes and types", "system": true, "workspace": root}},
		{main, Fields{"name": "Main", "system": false, "workspace": root, "defaultLookupStore": store}},
		{store, Fields{"name": "Default", "module": main}},
	}
	for _, s := range steps {
		if err := s.entity.Assign(s.fields); err != nil {
			return nil, err
		}
	}

	if err := tx.Check(); err != nil {
		return nil, err
	}
	return tx.snap, nil
}
