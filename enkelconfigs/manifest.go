package enkelconfigs

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/reusee/enkel/configs"
	"github.com/reusee/enkel/logs"
)

const ManifestFilename = "enkel.toml"

// Manifest describes a script project.
type Manifest struct {
	Name       string          `toml:"name"`
	Main       string          `toml:"main"`
	ImportDirs []string        `toml:"import_dirs"`
	Options    ManifestOptions `toml:"options"`

	// Dir is where the manifest was found; relative paths resolve against it
	Dir string `toml:"-"`
}

type ManifestOptions struct {
	EagerLogic       *bool   `toml:"eager_logic"`
	FrameRoots       *bool   `toml:"frame_roots"`
	IsMatchesParents *bool   `toml:"is_matches_parents"`
	MaxCallDepth     *int    `toml:"max_call_depth"`
	Backend          *string `toml:"backend"`
}

func LoadManifest(path string) (*Manifest, error) {
	manifest := new(Manifest)
	meta, err := toml.DecodeFile(path, manifest)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("manifest %s: unknown key %s", path, undecoded[0])
	}
	if manifest.Options.Backend != nil {
		if err := validBackend(Backend(*manifest.Options.Backend)); err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
	}
	manifest.Dir = filepath.Dir(path)
	return manifest, nil
}

// MainPath is the entry script, relative to the working directory.
func (m *Manifest) MainPath() string {
	if m.Main == "" || filepath.IsAbs(m.Main) {
		return m.Main
	}
	return filepath.Join(m.Dir, m.Main)
}

func (m *Manifest) ImportPaths() []string {
	ret := make([]string, 0, len(m.ImportDirs))
	for _, dir := range m.ImportDirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(m.Dir, dir)
		}
		ret = append(ret, dir)
	}
	return ret
}

// Manifest is nil when no enkel.toml exists in the working directory.
func (Module) Manifest(
	logger logs.Logger,
) *Manifest {
	manifest, err := LoadManifest(ManifestFilename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		panic(err)
	}
	logger.Info("manifest", "name", manifest.Name, "main", manifest.Main)
	return manifest
}

type ImportDirs []string

func (Module) ImportDirs(
	manifest *Manifest,
	loader configs.Loader,
) ImportDirs {
	var dirs ImportDirs
	if manifest != nil {
		dirs = append(dirs, manifest.ImportPaths()...)
	}
	lists, err := configs.All[[]string](loader, "import_dirs")
	if err != nil {
		panic(err)
	}
	for _, list := range lists {
		dirs = append(dirs, list...)
	}
	return dirs
}
