package deploy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/frusal/deploy-my-schema/pkg/adapters/memory"
	"github.com/frusal/deploy-my-schema/pkg/deploy"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/session"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var ada = &domain.Credential{User: "ada", Token: "s3cret"}

type env struct {
	store *memory.Store
	svc   *workspace.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	svc := workspace.NewService(store, workspace.WithHashCost(bcrypt.MinCost))
	require.NoError(t, svc.Provision(context.Background(), "shop", ada))
	return &env{store: store, svc: svc}
}

func (e *env) deploy(t *testing.T) *deploy.Result {
	t.Helper()
	ctx := context.Background()
	sess, err := session.New(ctx, e.svc, memory.NewCredentials(ada))
	require.NoError(t, err)

	res, err := deploy.Run(ctx, sess, "shop")
	require.NoError(t, err)
	return res
}

// read runs fn in a transaction that must not change anything.
func (e *env) read(t *testing.T, fn func(tx *workspace.Tx)) {
	t.Helper()
	ctx := context.Background()
	ws, err := e.svc.Open(ctx, "shop", ada)
	require.NoError(t, err)
	require.NoError(t, ws.WithTempStage(ctx, func(ctx context.Context, stage *workspace.Stage) error {
		return stage.Transact(ctx, func(tx *workspace.Tx) error {
			fn(tx)
			return nil
		})
	}))
}

// mockSession records how it is used.
type mockSession struct {
	user     bool
	ws       *workspace.Workspace
	loginErr error
	closeErr error

	logins []string
	closes int
}

func (m *mockSession) User() (string, bool) { return "ada", m.user }

func (m *mockSession) Login(ctx context.Context, name string) (*workspace.Workspace, error) {
	m.logins = append(m.logins, name)
	return m.ws, m.loginErr
}

func (m *mockSession) Close(ctx context.Context) error {
	m.closes++
	return m.closeErr
}

func TestRun_Deploys(t *testing.T) {
	e := newEnv(t)

	res := e.deploy(t)
	assert.True(t, res.Deployed())
	assert.Equal(t, "Main", res.Module)
	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 8, res.Products)

	e.read(t, func(tx *workspace.Tx) {
		products := tx.All(res.Schema.Product)
		require.Len(t, products, len(deploy.Fruits))
		var names []string
		for _, p := range products {
			names = append(names, p.String("name"))
		}
		assert.ElementsMatch(t, deploy.Fruits, names)

		// Products are Named Entities.
		assert.Len(t, tx.All(res.Schema.NamedEntity), len(deploy.Fruits))

		class, err := tx.Get(res.Schema.Product.ID())
		require.NoError(t, err)
		assert.Equal(t, "Default", class.Ref("store").String("name"))
	})
}

func TestRun_TwiceKeepsOneSchema(t *testing.T) {
	e := newEnv(t)

	first := e.deploy(t)
	second := e.deploy(t)

	// String, Numeric and the four classes.
	assert.Equal(t, 6, second.Deleted)
	assert.NotEqual(t, first.Schema.Product, second.Schema.Product)

	e.read(t, func(tx *workspace.Tx) {
		module, err := deploy.FindUserModule(tx)
		require.NoError(t, err)

		count := map[string]int{}
		for _, c := range append(module.List("classes"), module.List("types")...) {
			if c.String("description") == deploy.Marker {
				count[c.String("name")]++
			}
		}
		assert.Equal(t, map[string]int{
			"String":       1,
			"Numeric":      1,
			"Named Entity": 1,
			"Product":      1,
			"Order":        1,
			"Order Line":   1,
		}, count)

		// Nothing of the first schema is left behind.
		assert.Len(t, tx.All(domain.InverseClass), 1)
		assert.Len(t, tx.All(domain.PropertyClass), 7)
		assert.Len(t, tx.All(domain.InverseSideClass), 2)
		assert.Len(t, tx.All(domain.ReferenceTypeClass), 2)
		assert.Len(t, tx.All(domain.CollectionTypeClass), 1)

		// Products of the replaced class went with it.
		assert.Len(t, tx.All(second.Schema.Product), len(deploy.Fruits))
	})
}

func TestSchema_OrderLinesInverse(t *testing.T) {
	e := newEnv(t)
	res := e.deploy(t)

	e.read(t, func(tx *workspace.Tx) {
		order, err := tx.Create(res.Schema.Order)
		require.NoError(t, err)
		other, err := tx.Create(res.Schema.Order)
		require.NoError(t, err)
		line, err := tx.Create(res.Schema.OrderLine)
		require.NoError(t, err)

		require.NoError(t, order.Add("orderLines", line))
		assert.Equal(t, order.ID(), line.Ref("order").ID())

		require.NoError(t, line.SetRef("order", other))
		assert.Empty(t, order.List("orderLines"))
		require.Len(t, other.List("orderLines"), 1)
		assert.Equal(t, line.ID(), other.List("orderLines")[0].ID())

		product := tx.All(res.Schema.Product)[0]
		require.NoError(t, line.Assign(workspace.Fields{"product": product, "quantity": 3, "name": "#1"}))
		require.NoError(t, other.SetString("deliveryAddress", "1 Fruit Lane"))

		require.NoError(t, line.Delete())
		assert.Empty(t, other.List("orderLines"))

		assert.NoError(t, tx.Check())
	})
}

func TestDeleteMarked_KeepsUnmarked(t *testing.T) {
	e := newEnv(t)

	var keptClass, keptType domain.ID
	e.read(t, func(tx *workspace.Tx) {
		module, err := deploy.FindUserModule(tx)
		require.NoError(t, err)

		class, err := tx.Create(domain.ClassSpecClass)
		require.NoError(t, err)
		require.NoError(t, class.Assign(workspace.Fields{"name": "Customer", "description": "Hand made", "module": module}))
		typ, err := tx.Create(domain.StringTypeClass)
		require.NoError(t, err)
		require.NoError(t, typ.Assign(workspace.Fields{"name": "Email", "module": module}))
		keptClass, keptType = class.ID(), typ.ID()
	})

	e.deploy(t)
	e.deploy(t)

	e.read(t, func(tx *workspace.Tx) {
		class, err := tx.Get(keptClass)
		require.NoError(t, err)
		assert.Equal(t, "Customer", class.String("name"))
		_, err = tx.Get(keptType)
		assert.NoError(t, err)
	})
}

func TestDeleteMarked_LegacyMarker(t *testing.T) {
	e := newEnv(t)

	var legacyClass, legacyType domain.ID
	e.read(t, func(tx *workspace.Tx) {
		module, err := deploy.FindUserModule(tx)
		require.NoError(t, err)

		class, err := tx.Create(domain.ClassSpecClass)
		require.NoError(t, err)
		require.NoError(t, class.Assign(workspace.Fields{"name": "Product", "description": deploy.LegacyMarker, "module": module}))
		typ, err := tx.Create(domain.StringTypeClass)
		require.NoError(t, err)
		require.NoError(t, typ.Assign(workspace.Fields{"name": "String", "description": deploy.LegacyMarker, "module": module}))
		legacyClass, legacyType = class.ID(), typ.ID()
	})

	res := e.deploy(t)
	assert.Equal(t, 2, res.Deleted)

	e.read(t, func(tx *workspace.Tx) {
		_, err := tx.Get(legacyClass)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)
		_, err = tx.Get(legacyType)
		assert.ErrorIs(t, err, domain.ErrEntityNotFound)

		product, err := tx.ResolveClass("Product")
		require.NoError(t, err)
		assert.NotEqual(t, domain.RefOf(legacyClass), product)
	})
}

func TestCreateData_UnknownClass(t *testing.T) {
	e := newEnv(t)

	e.read(t, func(tx *workspace.Tx) {
		err := deploy.CreateData(tx)
		var unknown *domain.UnknownClassError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "Product", unknown.Name)
		assert.False(t, tx.Changed())
	})
}

func TestRun_NoUserModule(t *testing.T) {
	e := newEnv(t)
	e.read(t, func(tx *workspace.Tx) {
		m, err := tx.Get(workspace.MainModuleID)
		require.NoError(t, err)
		require.NoError(t, m.SetBool("system", true))
	})

	ws, err := e.svc.Open(context.Background(), "shop", ada)
	require.NoError(t, err)
	sess := &mockSession{user: true, ws: ws}

	_, err = deploy.Run(context.Background(), sess, "shop")
	assert.ErrorIs(t, err, deploy.ErrNoUserModule)
	assert.Equal(t, 1, sess.closes)
}

func TestRun_Skips(t *testing.T) {
	tests := []struct {
		name   string
		sess   *mockSession
		logins int
	}{
		{name: "No User", sess: &mockSession{}, logins: 0},
		{name: "No Workspace", sess: &mockSession{user: true}, logins: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := deploy.Run(context.Background(), tt.sess, "shop")
			require.NoError(t, err)
			assert.False(t, res.Deployed())
			assert.Len(t, tt.sess.logins, tt.logins)
			assert.Equal(t, 1, tt.sess.closes)
		})
	}
}

func TestRun_ClosesOnFailure(t *testing.T) {
	boom := errors.New("network down")

	t.Run("Login Error", func(t *testing.T) {
		sess := &mockSession{user: true, loginErr: boom, closeErr: errors.New("ignored")}
		_, err := deploy.Run(context.Background(), sess, "shop")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, sess.closes)
	})

	t.Run("Close Error", func(t *testing.T) {
		sess := &mockSession{closeErr: boom}
		_, err := deploy.Run(context.Background(), sess, "shop")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, sess.closes)
	})
}
