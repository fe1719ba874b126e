package enkelconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/enkel/configs"
	"github.com/reusee/enkel/enkelrt"
)

// ScriptFork evaluates configuration scripts, most global first, and forks
// scope with the settings they define. A later script sees nothing of an
// earlier one; it only overrides the values it sets.
func ScriptFork(scope dscope.Scope) (dscope.Scope, error) {
	paths := configScriptPaths()
	return scriptFork(scope, paths)
}

func configScriptPaths() []string {
	paths := configPaths("enkelrc.ek", ".enkelrc.ek")
	// most local is last
	for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
		paths[i], paths[j] = paths[j], paths[i]
	}
	return paths
}

func scriptFork(scope dscope.Scope, paths []string) (dscope.Scope, error) {
	for _, path := range paths {
		in := enkelrt.New(&enkelrt.Options{
			MaxCallDepth: DefaultMaxCallDepth,
		})
		if _, err := in.EvalFile(path); err != nil {
			return scope, err
		}
		var err error
		scope, err = configs.EnkelFork(scope, in)
		if err != nil {
			return scope, err
		}
	}
	return scope, nil
}
