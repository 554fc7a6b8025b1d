package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	root, err := WorkspaceRoot()
	require.NoError(t, err)

	path, err := ResolvePath("plain/file.db")
	require.NoError(t, err)
	require.Equal(t, "plain/file.db", path)

	path, err = ResolvePath(filepath.Join(statePrefix, "archive.db"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "archive.db"), path)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestReadStateConfigMissing(t *testing.T) {
	_, err := ReadStateConfig[LivePortalConfig]("does_not_exist.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}
