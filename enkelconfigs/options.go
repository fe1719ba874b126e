package enkelconfigs

import (
	"github.com/reusee/enkel/enkelrt"
	"github.com/reusee/enkel/logs"
)

// Options are the interpreter options built from the resolved settings.
// Stdout and the error hook are left for the caller.
func (Module) Options(
	logger logs.Logger,
	eagerLogic EagerLogic,
	frameRoots FrameRoots,
	isMatchesParents IsMatchesParents,
	maxCallDepth MaxCallDepth,
) *enkelrt.Options {
	return &enkelrt.Options{
		Logger:           logger,
		EagerLogic:       bool(eagerLogic),
		FrameRoots:       bool(frameRoots),
		IsMatchesParents: bool(isMatchesParents),
		MaxCallDepth:     int(maxCallDepth),
	}
}
