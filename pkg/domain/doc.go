/*
Package domain contains the data model of a workspace.

It defines the stored form of entities and snapshots, the built-in metamodel (modules,
classes, properties, types, and inverse relationships), and the errors shared by every
layer. The package is free of I/O; persistence lives behind the interfaces in ports.

# Key Types

  - Entity: any workspace object, with string/int/bool fields and reference/collection links.
  - Snapshot: the whole workspace at one version, the unit a store loads and commits.
  - ClassDef / FieldDef: the resolved shape of a class, including inverse and cascade rules.
  - ClassRef: a typed class handle, obtained from the system refs or a name resolution.
*/
package domain
