// Package devenv locates the state kept by the local development
// environment under dev/.state.
package devenv

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"sunatscraper/lib/configutil"
)

const statePrefix = "<dev_state>"

var modName = regexp.MustCompile(`(?m)^module\s+(\S+)$`)

func isWorkspaceRoot(dir string) bool {
	mod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	matches := modName.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == "sunatscraper"
}

// WorkspaceRoot walks up from the cwd to the directory holding this module's
// go.mod.
func WorkspaceRoot() (string, error) {
	dir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	for {
		if isWorkspaceRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

func StatePath(path string) (string, error) {
	root, err := WorkspaceRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "dev", ".state", path), nil
}

// ReadStateConfig reads a json5 config (and its .local override) from the
// state directory. Missing files surface as os.ErrNotExist.
func ReadStateConfig[T any](path string) (T, error) {
	configPath, err := StatePath(path)
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](configPath)
}

// ResolvePath expands a leading <dev_state> into the state directory,
// creating it when needed. Other paths are returned unchanged.
func ResolvePath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, statePrefix)
	if !ok {
		return path, nil
	}
	state, err := StatePath("")
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(state, 0o755)
	if err != nil {
		return "", err
	}
	return filepath.Join(state, rest), nil
}
