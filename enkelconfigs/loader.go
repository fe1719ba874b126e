package enkelconfigs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/reusee/enkel/configs"
	"github.com/reusee/enkel/logs"
)

//go:embed schema.cue
var schema string

// configPaths lists existing files named by filenames, most local first.
func configPaths(filenames ...string) (paths []string) {
	var dirs []string
	if dir, err := os.Getwd(); err == nil {
		dirs = append(dirs, dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, "/etc")
	for _, dir := range dirs {
		for _, filename := range filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	return
}

func (Module) ConfigsLoader(
	logger logs.Logger,
) configs.Loader {
	paths := configPaths("enkel.cue", ".enkel.cue")
	if len(paths) > 0 {
		logger.Info("config files", "paths", paths)
	}
	return configs.NewLoader(paths, schema)
}
