package cli

import (
	"context"
	"testing"

	"github.com/frusal/deploy-my-schema/internal/testutils"
	"github.com/frusal/deploy-my-schema/pkg/adapters/file"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_VerifiesAgainstWorkspace(t *testing.T) {
	p := testutils.SetupProject(t, "shop")
	opts, out := testOptions(p)
	ctx := context.Background()

	require.NoError(t, InitWorkspace(ctx, opts, "", "ada"))
	stored, err := file.NewCredentials(p.Credentials).Load(ctx)
	require.NoError(t, err)

	require.NoError(t, Logout(ctx, opts))
	_, err = file.NewCredentials(p.Credentials).Load(ctx)
	require.ErrorIs(t, err, domain.ErrNoCredential)

	err = Login(ctx, opts, "ada", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = file.NewCredentials(p.Credentials).Load(ctx)
	require.ErrorIs(t, err, domain.ErrNoCredential, "a rejected credential is not saved")

	out.Reset()
	require.NoError(t, Login(ctx, opts, "ada", stored.Token))
	assert.Contains(t, out.String(), `Access to workspace "shop" verified`)
	assert.Contains(t, out.String(), "✓ Logged in as ada")
}

func TestLogin_UnknownWorkspaceStillSaves(t *testing.T) {
	p := testutils.SetupProject(t, "shop")
	opts, out := testOptions(p)
	ctx := context.Background()

	require.NoError(t, Login(ctx, opts, "ada", "s3cret"))
	assert.Contains(t, out.String(), "does not exist yet")

	cred, err := file.NewCredentials(p.Credentials).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cred.Token)
}

func TestLogin_RequiresUserAndToken(t *testing.T) {
	p := testutils.SetupProject(t, "shop")
	opts, _ := testOptions(p)
	assert.Error(t, Login(context.Background(), opts, "ada", ""))
}

func TestWorkspaces_ListAndDrop(t *testing.T) {
	p := testutils.SetupProject(t, "shop")
	opts, out := testOptions(p)
	ctx := context.Background()

	require.NoError(t, InitWorkspace(ctx, opts, "", "ada"))
	require.NoError(t, InitWorkspace(ctx, opts, "archive", ""))
	require.ErrorIs(t, InitWorkspace(ctx, opts, "shop", ""), domain.ErrWorkspaceExists)

	out.Reset()
	require.NoError(t, ListWorkspaces(ctx, opts))
	assert.Equal(t, "  archive\n* shop\n", out.String())

	require.NoError(t, DropWorkspace(ctx, opts, "archive"))
	require.ErrorIs(t, DropWorkspace(ctx, opts, "archive"), domain.ErrWorkspaceNotFound)

	out.Reset()
	require.NoError(t, ListWorkspaces(ctx, opts))
	assert.Equal(t, "* shop\n", out.String())
}

func TestInitWorkspace_NeedsCredentialOrUser(t *testing.T) {
	p := testutils.SetupProject(t, "shop")
	opts, _ := testOptions(p)
	err := InitWorkspace(context.Background(), opts, "", "")
	require.ErrorIs(t, err, domain.ErrNoCredential)
}
