/*
Package workspace implements the transactional entity model of a workspace.

A Service opens Workspaces on top of a ports.WorkspaceStore. A Workspace hands out
temporary Stages; each Stage runs Transactions against a private copy of the snapshot and
commits them atomically with an optimistic version check, serialized per workspace.

Inside a transaction, entities are manipulated through Entity handles. Fields are checked
against the class definition, which for user classes is derived live from the ClassSpec and
Property entities of the same transaction, so a class can be defined and used in one go.
Fields declared as inverses are maintained on both ends, and deleting an entity removes
every reference to it before cascading to what it owns.

# Usage

	ws, err := svc.Open(ctx, "shop", cred)
	if err != nil {
		return err
	}
	return ws.WithTempStage(ctx, func(ctx context.Context, stage *workspace.Stage) error {
		return stage.Transact(ctx, func(tx *workspace.Tx) error {
			product, err := tx.CreateNamed("Product")
			if err != nil {
				return err
			}
			return product.SetString("name", "Pineapple")
		})
	})
*/
package workspace
