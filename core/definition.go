/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"context"
	"fmt"
	"os"

	"github.com/jsccast/yaml"
)

// Definition is a declarative description of a Manager along with the
// metadata that auto-controlled field reconciliation consults.
//
// A Definition is usually written in YAML:
//
//	name: dialog
//	doc: A dialog can be opened and closed.
//	initialState:
//	  open: false
//	autoControlled: [open]
//	propTypes: [open, defaultOpen]
//	actions:
//	  open:
//	    interpreter: goja
//	    source: return {open: true};
//	  close:
//	    interpreter: goja
//	    source: return {open: false};
type Definition struct {
	Name string `json:"name" yaml:"name"`

	// Doc describes the manager in English and Markdown.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	Debug bool `json:"debug,omitempty" yaml:",omitempty"`

	InitialState State `json:"initialState,omitempty" yaml:"initialState,omitempty"`

	Actions map[string]*ActionSource `json:"actions,omitempty" yaml:",omitempty"`

	Middleware []*MiddlewareSource `json:"middleware,omitempty" yaml:",omitempty"`

	// AutoControlled lists the fields that a caller may control.
	AutoControlled []string `json:"autoControlled,omitempty" yaml:"autoControlled,omitempty"`

	// PropTypes lists the props that have validators.
	PropTypes []string `json:"propTypes,omitempty" yaml:"propTypes,omitempty"`

	// DefaultProps are the static default props.
	DefaultProps State `json:"defaultProps,omitempty" yaml:"defaultProps,omitempty"`
}

// ParseDefinition parses YAML (or JSON).
func ParseDefinition(src []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(src, &d); err != nil {
		return nil, err
	}
	if d.Name == "" {
		return nil, &BadDefinition{Reason: "no name"}
	}
	return &d, nil
}

// ReadDefinition reads and parses the given file.
func ReadDefinition(filename string) (*Definition, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseDefinition(src)
}

// Compile compiles all action and middleware sources with the given
// interpreters (DefaultInterpreters if nil) and returns the
// corresponding Config.
//
// The Config has no side effects.  The caller adds those.
func (d *Definition) Compile(ctx context.Context, interpreters InterpretersMap) (Config, error) {
	cfg := Config{
		Name:         d.Name,
		InitialState: d.InitialState.Copy(),
		Actions:      make(Actions, len(d.Actions)),
		Debug:        d.Debug,
	}

	for name, src := range d.Actions {
		if src == nil {
			return cfg, &BadDefinition{
				Name:   d.Name,
				Reason: `action "` + name + `" has no source`,
			}
		}
		a, err := src.Compile(ctx, interpreters)
		if err != nil {
			return cfg, fmt.Errorf("compiling action %q in %q: %w", name, d.Name, err)
		}
		cfg.Actions[name] = a
	}

	for i, src := range d.Middleware {
		if src == nil {
			return cfg, &BadDefinition{
				Name:   d.Name,
				Reason: fmt.Sprintf("middleware %d has no source", i),
			}
		}
		mw, err := src.Compile(ctx, interpreters)
		if err != nil {
			return cfg, fmt.Errorf("compiling middleware %d in %q: %w", i, d.Name, err)
		}
		cfg.Middleware = append(cfg.Middleware, mw)
	}

	return cfg, nil
}
