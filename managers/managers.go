// Package managers provides the managers that library components
// use.
//
// Each constructor takes a Config whose state is laid over the
// manager's defaults and whose actions replace the built-in actions
// with the same names.
package managers

import (
	"github.com/Comcast/autostate/core"
)

// Factory makes a Manager from a Config.  A Factory fills in its own
// defaults.
type Factory func(cfg core.Config) (*core.Manager, error)

// With returns a Factory that makes managers from the given defaults.
func With(name string, state core.State, actions core.Actions) Factory {
	return func(cfg core.Config) (*core.Manager, error) {
		if cfg.Name == "" {
			cfg.Name = name
		}
		cfg.InitialState = state.Merge(cfg.InitialState)
		cfg.Actions = core.MergeActions(actions, cfg.Actions)
		return core.NewManager(cfg)
	}
}

// WithSideEffects returns a Factory that appends the given side
// effects to those in the Config before calling f.
func WithSideEffects(f Factory, fx ...core.SideEffect) Factory {
	return func(cfg core.Config) (*core.Manager, error) {
		cfg.SideEffects = append(append([]core.SideEffect(nil), cfg.SideEffects...), fx...)
		return f(cfg)
	}
}

// FromDefinition returns a Factory that uses the given Config
// (usually from Definition.Compile) as defaults.  Middleware from the
// Config runs before middleware given to the Factory.
func FromDefinition(def core.Config) Factory {
	return func(cfg core.Config) (*core.Manager, error) {
		if cfg.Name == "" {
			cfg.Name = def.Name
		}
		cfg.InitialState = def.InitialState.Merge(cfg.InitialState)
		cfg.Actions = core.MergeActions(def.Actions, cfg.Actions)
		cfg.Middleware = append(append([]core.Middleware(nil), def.Middleware...), cfg.Middleware...)
		cfg.SideEffects = append(append([]core.SideEffect(nil), def.SideEffects...), cfg.SideEffects...)
		cfg.Debug = cfg.Debug || def.Debug
		if cfg.Logger == nil {
			cfg.Logger = def.Logger
		}
		return core.NewManager(cfg)
	}
}

// NewDialog makes a manager with an "open" field (default false) and
// actions "open" and "close".
func NewDialog(cfg core.Config) (*core.Manager, error) {
	return With("dialog",
		core.State{
			"open": false,
		},
		core.Actions{
			"open":  core.Set(core.State{"open": true}),
			"close": core.Set(core.State{"open": false}),
		})(cfg)
}

// NewCheckbox makes a manager with a "checked" field (default false)
// and actions "check", "uncheck", and "toggle".
func NewCheckbox(cfg core.Config) (*core.Manager, error) {
	return With("checkbox",
		core.State{
			"checked": false,
		},
		core.Actions{
			"check":   core.Set(core.State{"checked": true}),
			"uncheck": core.Set(core.State{"checked": false}),
			"toggle": core.FuncAction(func(args ...interface{}) core.Reducer {
				return func(st core.State) core.State {
					checked, _ := st["checked"].(bool)
					return core.State{"checked": !checked}
				}
			}),
		})(cfg)
}

// Standard returns the built-in factories by name.
func Standard() map[string]Factory {
	return map[string]Factory{
		"dialog":   NewDialog,
		"checkbox": NewCheckbox,
	}
}

// StandardFields returns the auto-controlled fields of each built-in
// factory by name.
func StandardFields() map[string][]string {
	return map[string][]string{
		"dialog":   {"open"},
		"checkbox": {"checked"},
	}
}
