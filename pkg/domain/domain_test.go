package domain_test

import (
	"errors"
	"testing"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldKey(t *testing.T) {
	tests := map[string]string{
		"Name":             "name",
		"Order Lines":      "orderLines",
		"Delivery Address": "deliveryAddress",
		"order-line id":    "orderLineId",
		"  Price  ":        "price",
		"":                 "",
		"!!":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, domain.FieldKey(in), "FieldKey(%q)", in)
	}
}

func TestEntity_CloneIsDeep(t *testing.T) {
	e := domain.NewEntity("o1", "class-order")
	e.PutString("name", "#1")
	e.PutInt("total", 3)
	e.PutBool("paid", true)
	e.PutRef("customer", "c1")
	e.Append("orderLines", "l1")

	c := e.Clone()
	require.Equal(t, e, c)

	c.PutString("name", "#2")
	c.Append("orderLines", "l2")
	c.PutRef("customer", "c2")

	assert.Equal(t, "#1", e.Strings["name"])
	assert.Equal(t, []domain.ID{"l1"}, e.Lists["orderLines"])
	assert.Equal(t, domain.ID("c1"), e.Refs["customer"])
}

func TestEntity_LinkHelpers(t *testing.T) {
	e := domain.NewEntity("o1", "class-order")
	e.Append("orderLines", "l1")
	e.Append("orderLines", "l1")
	e.Append("orderLines", "l2")
	e.PutRef("favourite", "l2")

	assert.Equal(t, []domain.ID{"l1", "l2"}, e.Lists["orderLines"], "Append keeps members unique")
	assert.True(t, e.References("l2"))
	assert.False(t, e.References("l3"))

	e.Drop("orderLines", "l1")
	assert.Equal(t, []domain.ID{"l2"}, e.Lists["orderLines"])

	assert.True(t, e.Unlink("l2"))
	assert.False(t, e.References("l2"))
	assert.False(t, e.Unlink("l2"), "nothing left to unlink")

	e.PutRef("favourite", "l1")
	e.PutRef("favourite", "")
	assert.NotContains(t, e.Refs, "favourite")
}

func TestSnapshot_Referrers(t *testing.T) {
	snap := domain.NewSnapshot("shop")
	order := domain.NewEntity("o1", "class-order")
	line := domain.NewEntity("l1", "class-line")
	other := domain.NewEntity("l2", "class-line")
	order.Append("orderLines", "l1")
	line.PutRef("order", "o1")
	other.PutRef("order", "o1")
	for _, e := range []*domain.Entity{order, line, other} {
		snap.Entities[e.ID] = e
	}

	assert.Equal(t, []domain.ID{"l1", "l2"}, snap.Referrers("o1"))
	assert.Equal(t, []domain.ID{"o1"}, snap.Referrers("l1"))

	c := snap.Clone()
	c.Entities["o1"].Drop("orderLines", "l1")
	assert.Equal(t, []domain.ID{"o1"}, snap.Referrers("l1"), "clone must not share entities")
}

func TestSystemClasses(t *testing.T) {
	for _, def := range domain.SystemClasses() {
		got, ok := domain.SystemClass(def.ID)
		require.True(t, ok, def.Name)
		assert.Equal(t, def.Name, got.Name)

		for key, f := range def.Fields {
			if f.Inverse == "" {
				continue
			}
			target, ok := domain.SystemClass(f.Target)
			require.True(t, ok, "%s.%s targets an unknown class", def.Name, key)
			back := lookupField(target, f.Inverse)
			require.NotNil(t, back, "%s.%s has no inverse %s.%s", def.Name, key, target.Name, f.Inverse)
			assert.Equal(t, key, back.Inverse, "%s.%s inverse is not symmetric", def.Name, key)
		}
	}
}

// lookupField finds key on def or one of its system ancestors.
func lookupField(def *domain.ClassDef, key string) *domain.FieldDef {
	for {
		if f, ok := def.Fields[key]; ok {
			return &f
		}
		parent, ok := domain.SystemClass(def.Ancestor)
		if !ok {
			return nil
		}
		def = parent
	}
}

func TestErrors(t *testing.T) {
	var unknown *domain.UnknownClassError
	err := error(&domain.UnknownClassError{Name: "Fruit"})
	require.True(t, errors.As(err, &unknown))
	assert.Contains(t, err.Error(), "Fruit")

	inv := &domain.InvariantError{Violations: []domain.Violation{
		{Entity: "o1", Field: "orderLines", Reason: "dangling reference"},
	}}
	assert.Contains(t, inv.Error(), "dangling reference")
}
