/*
Package deploy installs the Product / Order / Order Line example schema into a workspace
and seeds it with a few products.

Everything it creates carries Marker as its description. A deployment first deletes the
user module's classes and types that carry the marker, then recreates them, so running it
again replaces the schema instead of duplicating it. Data rows are not deduplicated; rows of
a replaced class are deleted along with it.
*/
package deploy
