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

// Package autocontrol reconciles auto-controlled fields.
//
// An auto-controlled field N can be given by a caller as the prop N
// (the field is then controlled), as the prop defaultN (an initial
// value for an uncontrolled field), or not at all (a framework
// default).  A prop is undefined if it's absent or nil.
package autocontrol

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/diag"
)

// Component is the static metadata that diagnostics consult.
type Component struct {
	Name string

	// PropTypes is the set of props that have validators.  If
	// nil, the validator checks are skipped.
	PropTypes map[string]bool

	// DefaultProps are the component's static default props.
	DefaultProps core.State
}

// NewComponent makes a Component.  A nil propTypes means the
// component doesn't declare validators.
func NewComponent(name string, propTypes []string, defaultProps core.State) *Component {
	c := &Component{
		Name:         name,
		DefaultProps: defaultProps,
	}
	if propTypes != nil {
		c.PropTypes = make(map[string]bool, len(propTypes))
		for _, p := range propTypes {
			c.PropTypes[p] = true
		}
	}
	return c
}

// ComponentOf gets the metadata from a Definition.
func ComponentOf(d *core.Definition) *Component {
	return NewComponent(d.Name, d.PropTypes, d.DefaultProps)
}

// DefaultPropName gives the name of the default prop for the given
// field: "open" gives "defaultOpen".
func DefaultPropName(field string) string {
	r, n := utf8.DecodeRuneInString(field)
	if n == 0 {
		return "default"
	}
	return "default" + string(unicode.ToUpper(r)) + field[n:]
}

// Defined reports whether the given prop is present and not nil.
func Defined(props core.State, name string) bool {
	v, have := props[name]
	return have && v != nil
}

// ComputeDefaultValue returns the value a field should start with.
// The first of these wins:
//
//   - props[field]
//   - props[default<Field>]
//   - false, if the field is "checked"
//   - [] if the field is "value" and props.multiple is truthy
//   - "" if the field is "value"
//   - nil
func ComputeDefaultValue(field string, props core.State) interface{} {
	if Defined(props, field) {
		return props[field]
	}

	if dp := DefaultPropName(field); Defined(props, dp) {
		return props[dp]
	}

	switch field {
	case "checked":
		return false
	case "value":
		if truthy(props["multiple"]) {
			return []interface{}{}
		}
		return ""
	}

	return nil
}

// truthy follows JavaScript: false, "", 0, NaN, and nil are falsy.
func truthy(x interface{}) bool {
	if x == nil {
		return false
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.Len() != 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return !v.IsZero()
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

// DefinedControlled returns only the given fields that are defined in
// props.
func DefinedControlled(fields []string, props core.State) core.State {
	acc := make(core.State, len(fields))
	for _, p := range fields {
		if Defined(props, p) {
			acc[p] = props[p]
		}
	}
	return acc
}

// ControlledValues returns the value of each field in props (nil if
// undefined) in the order of the given fields.
func ControlledValues(fields []string, props core.State) []interface{} {
	acc := make([]interface{}, len(fields))
	for i, p := range fields {
		acc[i] = props[p]
	}
	return acc
}

// ControlledOverride makes middleware that lays the fields currently
// controlled by props over every proposed next state.  As long as
// the Manager uses this middleware, an action can't change a
// controlled field.
func ControlledOverride(fields []string, props core.State) core.Middleware {
	return core.Override(DefinedControlled(fields, props))
}

// ComputeInitialState returns the initial value of each of the given
// fields.  Fields that resolve to nil are omitted so that a manager's
// own defaults aren't masked.
//
// When diag.Enabled, misconfigurations are reported to r (which can be
// nil).  Diagnostics never change the result.
func ComputeInitialState(ctx context.Context, r diag.Reporter, c *Component, fields []string, props core.State) core.State {
	if diag.Enabled && r != nil {
		Check(ctx, r, c, fields)
	}

	acc := make(core.State, len(fields))
	for _, p := range fields {
		if v := ComputeDefaultValue(p, props); v != nil {
			acc[p] = v
		}

		if diag.Enabled && r != nil {
			dp := DefaultPropName(p)
			if Defined(props, p) && Defined(props, dp) {
				r.Report(ctx, diag.Diagnostic{
					Code:      diag.ControlledAndDefault,
					Level:     diag.LevelWarning,
					Component: c.name(),
					Fields:    []string{p},
					Message: fmt.Sprintf(`%s prop "%s" is auto controlled. Specify either %s or %s, but not both.`,
						c.name(), p, dp, p),
				})
			}
		}
	}

	return acc
}

// Check reports static misconfigurations of the given auto-controlled
// fields for the component.
func Check(ctx context.Context, r diag.Reporter, c *Component, fields []string) {
	if c == nil {
		c = &Component{}
	}

	if c.PropTypes != nil {
		for _, p := range fields {
			dp := DefaultPropName(p)
			if !c.PropTypes[dp] {
				r.Report(ctx, diag.Diagnostic{
					Code:      diag.MissingDefaultPropType,
					Level:     diag.LevelWarning,
					Component: c.name(),
					Fields:    []string{p},
					Message: fmt.Sprintf(`%s is missing "%s" propTypes validation for auto controlled prop "%s".`,
						c.name(), dp, p),
				})
			}
			if !c.PropTypes[p] {
				r.Report(ctx, diag.Diagnostic{
					Code:      diag.MissingPropType,
					Level:     diag.LevelWarning,
					Component: c.name(),
					Fields:    []string{p},
					Message: fmt.Sprintf(`%s is missing propTypes validation for auto controlled prop "%s".`,
						c.name(), p),
				})
			}
		}
	}

	declared := make(map[string]bool, len(fields))
	for _, p := range fields {
		declared[p] = true
	}

	var illegalDefaults []string
	for _, p := range c.DefaultProps.Fields() {
		if declared[p] {
			illegalDefaults = append(illegalDefaults, p)
		}
	}
	if 0 < len(illegalDefaults) {
		r.Report(ctx, diag.Diagnostic{
			Code:      diag.AutoControlledDefaultProp,
			Level:     diag.LevelWarning,
			Component: c.name(),
			Fields:    illegalDefaults,
			Message: fmt.Sprintf(`Do not set defaultProps for auto controlled props. See %s props: "%s".`,
				c.name(), strings.Join(illegalDefaults, ",")),
		})
	}

	var illegalNames []string
	for _, p := range fields {
		if strings.HasPrefix(p, "default") {
			illegalNames = append(illegalNames, p)
		}
	}
	if 0 < len(illegalNames) {
		r.Report(ctx, diag.Diagnostic{
			Code:      diag.DefaultPrefixedAutoControlled,
			Level:     diag.LevelWarning,
			Component: c.name(),
			Fields:    illegalNames,
			Message: fmt.Sprintf(`Do not add default props to auto controlled props. See %s auto controlled props: "%s".`,
				c.name(), strings.Join(illegalNames, ",")),
		})
	}
}

func (c *Component) name() string {
	if c == nil || c.Name == "" {
		return "Component"
	}
	return c.Name
}
