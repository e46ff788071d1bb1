package graph_test

import (
	"strings"
	"testing"

	"github.com/frusal/deploy-my-schema/internal/presentation/graph"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
	"github.com/stretchr/testify/assert"
)

func shopClasses() []workspace.ClassInfo {
	name := workspace.FieldInfo{Key: "name", Kind: domain.KindString}
	return []workspace.ClassInfo{
		{Name: "Named Entity", Abstract: true, Fields: []workspace.FieldInfo{name}},
		{Name: "Order", Ancestor: "Named Entity", Fields: []workspace.FieldInfo{
			{Key: "deliveryAddress", Kind: domain.KindString},
			name,
			{Key: "orderLines", Kind: domain.KindList, Target: "Order Line", Inverse: "order"},
		}},
		{Name: "Order Line", Ancestor: "Named Entity", Fields: []workspace.FieldInfo{
			name,
			{Key: "order", Kind: domain.KindRef, Target: "Order", Inverse: "orderLines"},
			{Key: "product", Kind: domain.KindRef, Target: "Product"},
			{Key: "quantity", Kind: domain.KindInt},
		}},
		{Name: "Product", Ancestor: "Named Entity", Fields: []workspace.FieldInfo{
			name,
			{Key: "price", Kind: domain.KindInt},
		}},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(shopClasses())

	tests := []struct {
		name     string
		contains []string
	}{
		{
			name: "Class Labels",
			contains: []string{
				"classDiagram\n",
				"class Named_Entity[\"Named Entity\"] {",
				"class Order_Line[\"Order Line\"] {",
			},
		},
		{
			name:     "Abstract Annotation",
			contains: []string{"<<abstract>>"},
		},
		{
			name: "Scalar Members",
			contains: []string{
				"+string deliveryAddress",
				"+int quantity",
				"+int price",
			},
		},
		{
			name: "Ancestry",
			contains: []string{
				"Named_Entity <|-- Order\n",
				"Named_Entity <|-- Order_Line\n",
				"Named_Entity <|-- Product\n",
			},
		},
		{
			name: "References",
			contains: []string{
				"Order <--> \"*\" Order_Line : orderLines / order",
				"Order_Line --> Product : product",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestGenerateMermaid_InversePairDrawnOnce(t *testing.T) {
	out := graph.GenerateMermaid(shopClasses())
	assert.Equal(t, 1, strings.Count(out, "<-->"))
	assert.NotContains(t, out, "Order_Line <--> Order")
}

func TestGenerateMermaid_InheritedMembersOnlyOnAncestor(t *testing.T) {
	out := graph.GenerateMermaid(shopClasses())
	assert.Equal(t, 1, strings.Count(out, "+string name"))
}
