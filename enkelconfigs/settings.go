package enkelconfigs

import (
	"fmt"

	"github.com/reusee/enkel/cmds"
	"github.com/reusee/enkel/configs"
	"github.com/reusee/enkel/modes"
	"github.com/reusee/enkel/vars"
)

// Settings resolve in this order: command line, enkel.toml options,
// enkel.cue, built-in default. A configuration script applied with
// ScriptFork overrides all of them.

type EagerLogic bool

var _ configs.Configurable = EagerLogic(false)

func (EagerLogic) EnkelConfigurable() {}

var eagerLogicFlag = cmds.Switch("-eager-logic")

func (Module) EagerLogic(
	manifest *Manifest,
	loader configs.Loader,
) EagerLogic {
	return EagerLogic(resolveBool(
		*eagerLogicFlag,
		manifestOption(manifest, func(o ManifestOptions) *bool { return o.EagerLogic }),
		configs.First[*bool](loader, "eager_logic"),
		false,
	))
}

// FrameRoots defaults to on in development mode.
type FrameRoots bool

var _ configs.Configurable = FrameRoots(false)

func (FrameRoots) EnkelConfigurable() {}

var frameRootsFlag = cmds.Switch("-frame-roots")

func (Module) FrameRoots(
	manifest *Manifest,
	loader configs.Loader,
	mode modes.Mode,
) FrameRoots {
	return FrameRoots(resolveBool(
		*frameRootsFlag,
		manifestOption(manifest, func(o ManifestOptions) *bool { return o.FrameRoots }),
		configs.First[*bool](loader, "frame_roots"),
		mode == modes.ModeDevelopment,
	))
}

type IsMatchesParents bool

var _ configs.Configurable = IsMatchesParents(false)

func (IsMatchesParents) EnkelConfigurable() {}

var isMatchesParentsFlag = cmds.Switch("-is-parents")

func (Module) IsMatchesParents(
	manifest *Manifest,
	loader configs.Loader,
) IsMatchesParents {
	return IsMatchesParents(resolveBool(
		*isMatchesParentsFlag,
		manifestOption(manifest, func(o ManifestOptions) *bool { return o.IsMatchesParents }),
		configs.First[*bool](loader, "is_matches_parents"),
		false,
	))
}

type MaxCallDepth int

var _ configs.Configurable = MaxCallDepth(0)

func (MaxCallDepth) EnkelConfigurable() {}

const DefaultMaxCallDepth = 10000

var maxCallDepthFlag = cmds.Var[int]("-max-call-depth")

func (Module) MaxCallDepth(
	manifest *Manifest,
	loader configs.Loader,
) MaxCallDepth {
	var fromManifest int
	if manifest != nil {
		fromManifest = vars.DerefOrZero(manifest.Options.MaxCallDepth)
	}
	return MaxCallDepth(vars.FirstNonZero(
		*maxCallDepthFlag,
		fromManifest,
		configs.First[int](loader, "max_call_depth"),
		DefaultMaxCallDepth,
	))
}

// Backend selects the tree walker ("tree") or the bytecode VM ("vm").
type Backend string

const (
	BackendTree Backend = "tree"
	BackendVM   Backend = "vm"
)

var _ configs.Configurable = Backend("")

func (Backend) EnkelConfigurable() {}

func validBackend(b Backend) error {
	switch b {
	case BackendTree, BackendVM:
		return nil
	}
	return fmt.Errorf("unknown backend %q", b)
}

var backendFlag = cmds.Var[Backend]("-backend")

func (Module) Backend(
	manifest *Manifest,
	loader configs.Loader,
) Backend {
	var fromManifest Backend
	if manifest != nil {
		fromManifest = Backend(vars.DerefOrZero(manifest.Options.Backend))
	}
	backend := vars.FirstNonZero(
		*backendFlag,
		fromManifest,
		configs.First[Backend](loader, "backend"),
		BackendTree,
	)
	if err := validBackend(backend); err != nil {
		panic(err)
	}
	return backend
}

func manifestOption(manifest *Manifest, get func(ManifestOptions) *bool) *bool {
	if manifest == nil {
		return nil
	}
	return get(manifest.Options)
}

func resolveBool(flag bool, fromManifest *bool, fromConfig *bool, def bool) bool {
	if flag {
		return true
	}
	if fromManifest != nil {
		return *fromManifest
	}
	if fromConfig != nil {
		return *fromConfig
	}
	return def
}
