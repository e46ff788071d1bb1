package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Project is a throwaway project directory with a frusal.json that points at a file
// backend and a credential file inside the same directory.
type Project struct {
	Dir         string
	ConfigPath  string
	StoreDir    string
	Credentials string
}

// SetupProject creates a temporary project configured for workspace.
// It fails the test immediately on error.
func SetupProject(t *testing.T, workspace string) *Project {
	t.Helper()

	tmpDir := t.TempDir()
	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	p := &Project{
		Dir:         absPath,
		ConfigPath:  filepath.Join(absPath, "frusal.json"),
		StoreDir:    filepath.Join(absPath, "workspaces"),
		Credentials: filepath.Join(absPath, "credentials.yaml"),
	}
	p.WriteConfig(t, map[string]any{
		"workspace":   workspace,
		"credentials": p.Credentials,
		"backend": map[string]any{
			"type":    "file",
			"options": map[string]any{"dir": p.StoreDir},
		},
	})
	return p
}

// WriteConfig replaces the project's frusal.json with cfg encoded as JSON.
func (p *Project) WriteConfig(t *testing.T, cfg any) {
	t.Helper()
	data, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p.ConfigPath, data, 0o644))
}

// WriteRaw replaces the project's frusal.json with data as is.
func (p *Project) WriteRaw(t *testing.T, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(p.ConfigPath, []byte(data), 0o644))
}
