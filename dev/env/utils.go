package devenv

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sejongauth/lib/configutil"
	"strings"
	"sync"
)

// ModuleName is the go.mod module that marks the workspace root.
const ModuleName = "sejongauth"

// StatePrefix stands for the dev state directory at the start of a path.
const StatePrefix = "<dev_state>"

func declaresModule(gomod []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(gomod))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 2 && fields[0] == "module" {
			return fields[1] == ModuleName
		}
	}
	return false
}

// WorkspaceRoot walks up from the working directory to the directory whose
// go.mod declares ModuleName.
var WorkspaceRoot = sync.OnceValues(func() (string, error) {
	dir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	for {
		gomod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil && declaresModule(gomod) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
})

func stateDir() (string, error) {
	root, err := WorkspaceRoot()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, "dev", ".state")
	return dir, os.MkdirAll(dir, 0777)
}

func GetStateFilePath(name string) (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// GetStateConfig reads a json5 config out of dev/.state, a missing file
// gives os.ErrNotExist.
func GetStateConfig[T any](name string) (T, error) {
	path, err := GetStateFilePath(name)
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](path)
}

// ResolvePath expands a leading <dev_state>, other paths are returned as is.
func ResolvePath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, StatePrefix)
	if !ok {
		return path, nil
	}
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, rest), nil
}
