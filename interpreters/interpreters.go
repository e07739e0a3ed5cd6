// Package interpreters gathers the standard action and middleware
// interpreters.
package interpreters

import (
	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/interpreters/goja"
	"github.com/Comcast/autostate/interpreters/noop"
)

// Standard returns a fresh map with "goja" (alias "ecmascript") and
// "noop".
func Standard() core.InterpretersMap {
	is := core.NewInterpretersMap()

	g := goja.NewInterpreter()
	is["goja"] = g
	is["ecmascript"] = g

	is["noop"] = noop.NewInterpreter()

	return is
}
