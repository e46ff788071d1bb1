package workspace

import (
	"fmt"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/google/uuid"
)

// Tx is one atomic unit of work. It mutates a private copy of the stage snapshot;
// nothing is visible outside until the enclosing Transact commits.
// A Tx is not safe for concurrent use.
type Tx struct {
	snap   *domain.Snapshot
	dirty  bool
	closed bool
}

func newTx(base *domain.Snapshot) *Tx {
	return &Tx{snap: base.Clone()}
}

func (tx *Tx) close() { tx.closed = true }

func (tx *Tx) handle(id domain.ID) *Entity {
	return &Entity{tx: tx, id: id}
}

// lookup returns the stored entity, failing once the Tx is closed.
func (tx *Tx) lookup(id domain.ID) (*domain.Entity, error) {
	if tx.closed {
		return nil, domain.ErrTxClosed
	}
	e, ok := tx.snap.Entities[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrEntityNotFound)
	}
	return e, nil
}

// Get returns a handle on an existing entity.
func (tx *Tx) Get(id domain.ID) (*Entity, error) {
	if _, err := tx.lookup(id); err != nil {
		return nil, err
	}
	return tx.handle(id), nil
}

// Create allocates a new entity of the given class.
func (tx *Tx) Create(class domain.ClassRef) (*Entity, error) {
	return tx.create(domain.ID(uuid.NewString()), class)
}

// CreateNamed resolves a class by name, then creates an instance of it.
func (tx *Tx) CreateNamed(name string) (*Entity, error) {
	class, err := tx.ResolveClass(name)
	if err != nil {
		return nil, err
	}
	return tx.Create(class)
}

func (tx *Tx) create(id domain.ID, class domain.ClassRef) (*Entity, error) {
	if tx.closed {
		return nil, domain.ErrTxClosed
	}
	if class.IsZero() {
		return nil, &domain.UnknownClassError{}
	}
	def, err := tx.classDef(class.ID())
	if err != nil {
		return nil, err
	}
	if def.Abstract {
		return nil, fmt.Errorf("%q: %w", def.Name, domain.ErrAbstractClass)
	}
	if def.Singleton && len(tx.instances(def.ID)) > 0 {
		return nil, fmt.Errorf("%q already has its %w", def.Name, domain.ErrSingleton)
	}
	if _, taken := tx.snap.Entities[id]; taken {
		return nil, fmt.Errorf("entity id %s already in use", id)
	}

	tx.snap.Entities[id] = domain.NewEntity(id, def.ID)
	tx.dirty = true
	return tx.handle(id), nil
}

// SingletonInstance returns the only instance of a singleton class.
func (tx *Tx) SingletonInstance(class domain.ClassRef) (*Entity, error) {
	if tx.closed {
		return nil, domain.ErrTxClosed
	}
	def, err := tx.classDef(class.ID())
	if err != nil {
		return nil, err
	}
	if !def.Singleton {
		return nil, fmt.Errorf("class %q is not a singleton", def.Name)
	}
	ids := tx.instances(def.ID)
	if len(ids) != 1 {
		return nil, fmt.Errorf("singleton %q: %d instances: %w", def.Name, len(ids), domain.ErrEntityNotFound)
	}
	return tx.handle(ids[0]), nil
}

// All returns every instance of class, subclasses included, ordered by ID.
func (tx *Tx) All(class domain.ClassRef) []*Entity {
	if tx.closed {
		return nil
	}
	var out []*Entity
	for _, e := range tx.snap.Sorted() {
		if tx.isA(e.Class, class.ID()) {
			out = append(out, tx.handle(e.ID))
		}
	}
	return out
}

// instances returns the IDs of direct instances of class.
func (tx *Tx) instances(class domain.ID) []domain.ID {
	var ids []domain.ID
	for _, e := range tx.snap.Sorted() {
		if e.Class == class {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// ClassOf turns a ClassSpec entity into a class reference usable with Create.
func (tx *Tx) ClassOf(spec *Entity) (domain.ClassRef, error) {
	e, err := tx.lookup(spec.id)
	if err != nil {
		return domain.ClassRef{}, err
	}
	if e.Class != domain.ClassSpecClassID {
		return domain.ClassRef{}, fmt.Errorf("%s is not a ClassSpec", e.ID)
	}
	return domain.RefOf(e.ID), nil
}

// Changed reports whether the transaction has modified anything.
func (tx *Tx) Changed() bool { return tx.dirty }
