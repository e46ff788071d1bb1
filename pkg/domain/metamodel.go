package domain

import "fmt"

// Kind is the storage kind of a field.
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindBool
	KindRef
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindRef:
		return "reference"
	case KindList:
		return "collection"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FieldDef describes one field of a class.
type FieldDef struct {
	Key  string
	Kind Kind

	// Target is the class referenced entities must belong to (KindRef and KindList).
	// Empty accepts any entity.
	Target ID

	// Inverse names the paired field on Target. Both ends are kept consistent.
	Inverse string

	// Owned targets are deleted together with the owner.
	Owned bool

	// Orphans targets are deleted with the owner once nothing else references them.
	Orphans bool
}

// ClassDef is a resolved class: Fields include everything inherited from ancestors.
type ClassDef struct {
	ID        ID
	Name      string
	Abstract  bool
	Singleton bool
	System    bool
	Ancestor  ID
	Fields    map[string]FieldDef
}

// Field looks up a field by key.
func (c *ClassDef) Field(key string) (FieldDef, bool) {
	f, ok := c.Fields[key]
	return f, ok
}

// ClassRef is a typed handle on a class. The zero value refers to no class.
type ClassRef struct {
	id ID
}

// RefOf wraps a class ID. Prefer the exported system refs or a resolved lookup.
func RefOf(id ID) ClassRef { return ClassRef{id: id} }

func (c ClassRef) ID() ID         { return c.id }
func (c ClassRef) IsZero() bool   { return c.id == "" }
func (c ClassRef) String() string { return string(c.id) }

// System class IDs.
const (
	WorkspaceClassID      ID = "sys/Workspace"
	ModuleClassID         ID = "sys/Module"
	StoreClassID          ID = "sys/Store"
	TypeClassID           ID = "sys/Type"
	StringTypeClassID     ID = "sys/StringType"
	IntegerTypeClassID    ID = "sys/IntegerType"
	ReferenceTypeClassID  ID = "sys/ReferenceType"
	CollectionTypeClassID ID = "sys/CollectionType"
	ClassSpecClassID      ID = "sys/ClassSpec"
	PropertyClassID       ID = "sys/Property"
	InverseClassID        ID = "sys/Inverse"
	InverseSideClassID    ID = "sys/InverseSide"
)

// Typed refs on the system classes.
var (
	WorkspaceClass      = RefOf(WorkspaceClassID)
	ModuleClass         = RefOf(ModuleClassID)
	StoreClass          = RefOf(StoreClassID)
	TypeClass           = RefOf(TypeClassID)
	StringTypeClass     = RefOf(StringTypeClassID)
	IntegerTypeClass    = RefOf(IntegerTypeClassID)
	ReferenceTypeClass  = RefOf(ReferenceTypeClassID)
	CollectionTypeClass = RefOf(CollectionTypeClassID)
	ClassSpecClass      = RefOf(ClassSpecClassID)
	PropertyClass       = RefOf(PropertyClassID)
	InverseClass        = RefOf(InverseClassID)
	InverseSideClass    = RefOf(InverseSideClassID)
)

func str(key string) FieldDef     { return FieldDef{Key: key, Kind: KindString} }
func boolean(key string) FieldDef { return FieldDef{Key: key, Kind: KindBool} }

func ref(key string, target ID) FieldDef {
	return FieldDef{Key: key, Kind: KindRef, Target: target}
}

func list(key string, target ID) FieldDef {
	return FieldDef{Key: key, Kind: KindList, Target: target}
}

func (f FieldDef) inverse(key string) FieldDef { f.Inverse = key; return f }
func (f FieldDef) owned() FieldDef             { f.Owned = true; return f }
func (f FieldDef) orphans() FieldDef           { f.Orphans = true; return f }

var systemClasses = buildSystemClasses([]*ClassDef{
	{ID: WorkspaceClassID, Name: "Workspace", Singleton: true, Fields: fields(
		str("name"),
		list("modules", ModuleClassID).inverse("workspace").owned(),
	)},
	{ID: ModuleClassID, Name: "Module", Fields: fields(
		str("name"),
		str("description"),
		boolean("system"),
		ref("workspace", WorkspaceClassID).inverse("modules"),
		list("classes", ClassSpecClassID).inverse("module").owned(),
		list("types", TypeClassID).inverse("module").owned(),
		list("stores", StoreClassID).inverse("module").owned(),
		ref("defaultLookupStore", StoreClassID),
	)},
	{ID: StoreClassID, Name: "Store", Fields: fields(
		str("name"),
		str("description"),
		ref("module", ModuleClassID).inverse("stores"),
	)},
	{ID: TypeClassID, Name: "Type", Abstract: true, Fields: fields(
		str("name"),
		str("description"),
		ref("module", ModuleClassID).inverse("types"),
	)},
	{ID: StringTypeClassID, Name: "StringType", Ancestor: TypeClassID},
	{ID: IntegerTypeClassID, Name: "IntegerType", Ancestor: TypeClassID},
	{ID: ReferenceTypeClassID, Name: "ReferenceType", Ancestor: TypeClassID, Fields: fields(
		ref("elementClass", ClassSpecClassID),
	)},
	{ID: CollectionTypeClassID, Name: "CollectionType", Ancestor: TypeClassID, Fields: fields(
		ref("elementClass", ClassSpecClassID),
	)},
	{ID: ClassSpecClassID, Name: "ClassSpec", Fields: fields(
		str("name"),
		str("description"),
		boolean("abstract"),
		ref("ancestor", ClassSpecClassID),
		ref("module", ModuleClassID).inverse("classes"),
		ref("store", StoreClassID),
		list("properties", PropertyClassID).inverse("classSpec").owned(),
	)},
	{ID: PropertyClassID, Name: "Property", Fields: fields(
		str("name"),
		str("description"),
		ref("type", TypeClassID).orphans(),
		ref("classSpec", ClassSpecClassID).inverse("properties"),
		ref("inverse", InverseClassID).inverse("properties").orphans(),
		ref("inverseSide", InverseSideClassID).owned(),
	)},
	{ID: InverseClassID, Name: "Inverse", Fields: fields(
		list("properties", PropertyClassID).inverse("inverse"),
	)},
	{ID: InverseSideClassID, Name: "InverseSide"},
})

func fields(defs ...FieldDef) map[string]FieldDef {
	m := make(map[string]FieldDef, len(defs))
	for _, d := range defs {
		m[d.Key] = d
	}
	return m
}

// buildSystemClasses flattens inheritance. Ancestors must precede descendants.
func buildSystemClasses(defs []*ClassDef) map[ID]*ClassDef {
	out := make(map[ID]*ClassDef, len(defs))
	for _, d := range defs {
		d.System = true
		flat := make(map[string]FieldDef)
		if d.Ancestor != "" {
			for k, f := range out[d.Ancestor].Fields {
				flat[k] = f
			}
		}
		for k, f := range d.Fields {
			flat[k] = f
		}
		d.Fields = flat
		out[d.ID] = d
	}
	return out
}

// SystemClass returns the built-in class with the given ID.
func SystemClass(id ID) (*ClassDef, bool) {
	c, ok := systemClasses[id]
	return c, ok
}

// SystemClasses returns every built-in class.
func SystemClasses() []*ClassDef {
	out := make([]*ClassDef, 0, len(systemClasses))
	for _, c := range systemClasses {
		out = append(out, c)
	}
	return out
}
