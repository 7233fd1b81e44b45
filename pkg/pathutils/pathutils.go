package pathutils

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// HomeDir returns the home directory of the current user.
func HomeDir() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return usr.HomeDir
}

// ExpandHome takes a path and converts a leading '~' to the current users home
// directory. Paths of other users, like ~bob/x, are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home := HomeDir()
	if home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// DefaultConfigPath returns the configuration file that is read when --config is
// not set, or "" if the file does not exist.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	path := filepath.Join(dir, "snailcrypt", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
