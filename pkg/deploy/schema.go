package deploy

import (
	"errors"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
)

// Marker is the description shared by every class and type this package creates.
const Marker = "Created and maintained by deploy-my-schema"

// LegacyMarker is the description left by the JavaScript deploy-my-schema.js.
// DeleteMarked treats it like Marker so those objects are replaced too.
const LegacyMarker = "Created and maintained by deploy-my-schema.js"

// ErrNoUserModule is returned when the workspace has only system modules.
var ErrNoUserModule = errors.New("workspace has no user module to deploy into")

// Schema identifies the classes created by CreateSchema.
type Schema struct {
	NamedEntity domain.ClassRef
	Product     domain.ClassRef
	Order       domain.ClassRef
	OrderLine   domain.ClassRef
}

// FindUserModule returns the first module of the workspace that is not a system module.
func FindUserModule(tx *workspace.Tx) (*workspace.Entity, error) {
	root, err := tx.SingletonInstance(domain.WorkspaceClass)
	if err != nil {
		return nil, err
	}
	for _, m := range root.List("modules") {
		if !m.Bool("system") {
			return m, nil
		}
	}
	return nil, ErrNoUserModule
}

// DeleteMarked deletes the classes and types of module whose description is Marker
// or LegacyMarker, and returns how many it deleted. Anything else in the module is left alone.
func DeleteMarked(tx *workspace.Tx, module *workspace.Entity) (int, error) {
	var marked []*workspace.Entity
	for _, e := range append(module.List("classes"), module.List("types")...) {
		if d := e.String("description"); d == Marker || d == LegacyMarker {
			marked = append(marked, e)
		}
	}

	deleted := 0
	for _, e := range marked {
		// Deleting a class may already have taken a type with it.
		if !e.Exists() {
			continue
		}
		if err := e.Delete(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// builder keeps the first error so the schema reads as a plain list of steps.
type builder struct {
	tx  *workspace.Tx
	err error
}

func (b *builder) create(class domain.ClassRef) *workspace.Entity {
	if b.err != nil {
		return nil
	}
	e, err := b.tx.Create(class)
	b.err = err
	return e
}

func (b *builder) classOf(spec *workspace.Entity) domain.ClassRef {
	if b.err != nil {
		return domain.ClassRef{}
	}
	ref, err := b.tx.ClassOf(spec)
	b.err = err
	return ref
}

func (b *builder) assign(e *workspace.Entity, fields workspace.Fields) {
	if b.err != nil {
		return
	}
	b.err = e.Assign(fields)
}

// CreateSchema creates the example schema in the first user module:
//
//	abstract Named Entity { Name: String }
//	Product    : Named Entity { Price: Numeric }
//	Order      : Named Entity { Order Lines: Order Line[], Delivery Address: String }
//	Order Line : Named Entity { Order: Order, Product: Product, Quantity: Numeric }
//
// Order.orderLines and OrderLine.order are the two ends of one inverse.
func CreateSchema(tx *workspace.Tx) (*Schema, error) {
	module, err := FindUserModule(tx)
	if err != nil {
		return nil, err
	}
	b := &builder{tx: tx}

	// Allocate every entity first. Order and Order Line refer to each other,
	// so neither can be completed before the other exists.
	var (
		stringType  = b.create(domain.StringTypeClass)
		numericType = b.create(domain.IntegerTypeClass)

		namedEntity = b.create(domain.ClassSpecClass)
		product     = b.create(domain.ClassSpecClass)
		order       = b.create(domain.ClassSpecClass)
		orderLine   = b.create(domain.ClassSpecClass)

		orderToLines = b.create(domain.InverseClass)

		linesType        = b.create(domain.CollectionTypeClass)
		orderRefType     = b.create(domain.ReferenceTypeClass)
		productRefType   = b.create(domain.ReferenceTypeClass)
		linesSide        = b.create(domain.InverseSideClass)
		orderSide        = b.create(domain.InverseSideClass)
		nameProp         = b.create(domain.PropertyClass)
		priceProp        = b.create(domain.PropertyClass)
		orderLinesProp   = b.create(domain.PropertyClass)
		addressProp      = b.create(domain.PropertyClass)
		lineOrderProp    = b.create(domain.PropertyClass)
		lineProductProp  = b.create(domain.PropertyClass)
		lineQuantityProp = b.create(domain.PropertyClass)
	)
	if b.err != nil {
		return nil, b.err
	}

	b.assign(stringType, workspace.Fields{"name": "String", "description": Marker, "module": module})
	b.assign(numericType, workspace.Fields{"name": "Numeric", "description": Marker, "module": module})
	b.assign(linesType, workspace.Fields{"elementClass": orderLine})
	b.assign(orderRefType, workspace.Fields{"elementClass": order})
	b.assign(productRefType, workspace.Fields{"elementClass": product})

	// Named Entity
	b.assign(namedEntity, workspace.Fields{
		"name":        "Named Entity",
		"description": Marker,
		"abstract":    true,
	})
	b.assign(nameProp, workspace.Fields{
		"name":        "Name",
		"description": "The entity name. (e.g., Product Name, Order Number, etc)",
		"type":        stringType,
		"classSpec":   namedEntity,
	})
	b.assign(namedEntity, workspace.Fields{"module": module})

	// Product
	b.assign(product, workspace.Fields{
		"name":        "Product",
		"description": Marker,
		"ancestor":    namedEntity,
		"store":       module.Ref("defaultLookupStore"),
	})
	b.assign(priceProp, workspace.Fields{
		"name":        "Price",
		"description": "The price per unit.",
		"type":        numericType,
		"classSpec":   product,
	})
	b.assign(product, workspace.Fields{"module": module})

	// Order
	b.assign(order, workspace.Fields{
		"name":        "Order",
		"description": Marker,
		"ancestor":    namedEntity,
	})
	b.assign(orderLinesProp, workspace.Fields{
		"name":        "Order Lines",
		"description": "The Collection of order lines, which links the products and quantities to this order.",
		"inverse":     orderToLines,
		"inverseSide": linesSide,
		"type":        linesType,
		"classSpec":   order,
	})
	b.assign(addressProp, workspace.Fields{
		"name":        "Delivery Address",
		"description": "The Delivery address for the order.",
		"type":        stringType,
		"classSpec":   order,
	})
	b.assign(order, workspace.Fields{"module": module})

	// Order Line
	b.assign(orderLine, workspace.Fields{
		"name":        "Order Line",
		"description": Marker,
		"ancestor":    namedEntity,
	})
	b.assign(lineOrderProp, workspace.Fields{
		"name":        "Order",
		"description": "The Order this line belongs to.",
		"inverse":     orderToLines,
		"inverseSide": orderSide,
		"type":        orderRefType,
		"classSpec":   orderLine,
	})
	b.assign(lineProductProp, workspace.Fields{
		"name":        "Product",
		"description": "The Product this line orders with quantity.",
		"type":        productRefType,
		"classSpec":   orderLine,
	})
	b.assign(lineQuantityProp, workspace.Fields{
		"name":        "Quantity",
		"description": "The Quantity of product to be delivered.",
		"type":        numericType,
		"classSpec":   orderLine,
	})
	b.assign(orderLine, workspace.Fields{"module": module})

	schema := &Schema{
		NamedEntity: b.classOf(namedEntity),
		Product:     b.classOf(product),
		Order:       b.classOf(order),
		OrderLine:   b.classOf(orderLine),
	}
	if b.err != nil {
		return nil, b.err
	}
	return schema, nil
}
