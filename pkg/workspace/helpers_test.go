package workspace_test

import (
	"context"
	"testing"

	"github.com/frusal/deploy-my-schema/pkg/adapters/memory"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var owner = &domain.Credential{User: "ada", Token: "s3cret"}

type fixture struct {
	store *memory.Store
	svc   *workspace.Service
	ws    *workspace.Workspace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	svc := workspace.NewService(store, workspace.WithHashCost(bcrypt.MinCost))
	require.NoError(t, svc.Provision(ctx, "shop", owner))

	ws, err := svc.Open(ctx, "shop", owner)
	require.NoError(t, err)
	return &fixture{store: store, svc: svc, ws: ws}
}

// transact runs fn in a fresh stage and requires it to commit.
func (f *fixture) transact(t *testing.T, fn func(*workspace.Tx) error) {
	t.Helper()
	err := f.ws.WithTempStage(context.Background(), func(ctx context.Context, stage *workspace.Stage) error {
		return stage.Transact(ctx, fn)
	})
	require.NoError(t, err)
}

// treeSchema holds the IDs of a Parent/Child schema with a
// Parent.children <-> Child.parent inverse.
type treeSchema struct {
	parent, child domain.ID
}

func defineTree(t *testing.T, tx *workspace.Tx) treeSchema {
	t.Helper()

	module, err := tx.Get(workspace.MainModuleID)
	require.NoError(t, err)

	create := func(class domain.ClassRef) *workspace.Entity {
		e, err := tx.Create(class)
		require.NoError(t, err)
		return e
	}

	text := create(domain.StringTypeClass)
	parent := create(domain.ClassSpecClass)
	child := create(domain.ClassSpecClass)
	children := create(domain.CollectionTypeClass)
	parentRef := create(domain.ReferenceTypeClass)
	inverse := create(domain.InverseClass)
	name := create(domain.PropertyClass)
	pChildren := create(domain.PropertyClass)
	cParent := create(domain.PropertyClass)

	steps := []struct {
		e *workspace.Entity
		f workspace.Fields
	}{
		{text, workspace.Fields{"name": "Text", "module": module}},
		{children, workspace.Fields{"name": "Children", "elementClass": child}},
		{parentRef, workspace.Fields{"name": "Parent", "elementClass": parent}},
		{name, workspace.Fields{"name": "Name", "type": text}},
		{pChildren, workspace.Fields{"name": "Children", "type": children, "inverse": inverse}},
		{cParent, workspace.Fields{"name": "Parent", "type": parentRef, "inverse": inverse}},
		{parent, workspace.Fields{"name": "Parent", "module": module, "properties": []*workspace.Entity{name, pChildren}}},
		{child, workspace.Fields{"name": "Child", "module": module, "properties": []*workspace.Entity{cParent}}},
	}
	for _, s := range steps {
		require.NoError(t, s.e.Assign(s.f))
	}
	return treeSchema{parent: parent.ID(), child: child.ID()}
}
