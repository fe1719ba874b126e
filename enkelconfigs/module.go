package enkelconfigs

import (
	"github.com/reusee/dscope"
	"github.com/reusee/enkel/logs"
)

type Module struct {
	dscope.Module
	Logs logs.Module
}
