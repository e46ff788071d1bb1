package cli

import (
	"context"
	"fmt"

	"github.com/frusal/deploy-my-schema/internal/presentation/graph"
	"github.com/frusal/deploy-my-schema/internal/presentation/tui"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
)

// ShowSchema prints the user classes of a workspace, as rendered markdown or as a Mermaid
// class diagram. An empty name falls back to the workspace named in frusal.json.
func ShowSchema(ctx context.Context, opts Options, name string, mermaid bool) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	if name == "" {
		name = env.Config.Workspace
	}
	cred, _, err := env.credential(ctx, "")
	if err != nil {
		return err
	}
	ws, err := env.Service.Open(ctx, name, cred)
	if err != nil {
		return err
	}

	var classes []workspace.ClassInfo
	err = ws.WithTempStage(ctx, func(ctx context.Context, stage *workspace.Stage) error {
		classes, err = workspace.Query(ctx, stage, func(tx *workspace.Tx) ([]workspace.ClassInfo, error) {
			return tx.Describe(), nil
		})
		return err
	})
	if err != nil {
		return err
	}

	out := opts.stdout()
	if mermaid {
		fmt.Fprint(out, graph.GenerateMermaid(classes))
		return nil
	}
	rendered, err := tui.NewRenderer(out)(tui.SchemaMarkdown(name, classes))
	if err != nil {
		return fmt.Errorf("failed to render schema: %w", err)
	}
	fmt.Fprint(out, rendered)
	return nil
}
