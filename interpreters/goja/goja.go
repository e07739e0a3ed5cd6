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

// Package goja provides an ECMAScript interpreter for actions and
// middleware.
package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/autostate/core"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

func init() {
	core.DefaultInterpreters["goja"] = NewInterpreter()
}

// Interpreter implements core.Interpreter using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// Source is either a string of code or a map with "code" and
// optional "requires" (a library name or a list of them).  The code
// is the body of a function, so it should end with a return:
//
//	return {open: !_.state.open};
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Testing exposes sleep(ms).
	Testing bool

	// LibraryProvider resolves library names given in "requires".
	// Defaults to DefaultLibraryProvider.
	LibraryProvider func(ctx context.Context, name string) (string, error)

	// Logger gets _.log() output.  Defaults to slog.Default().
	Logger *slog.Logger
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// DefaultLibraryProvider reads "file://" libraries relative to the
// working directory.
var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider resolves names of the form "file://NAME" to
// the contents of NAME in the given directory.
func MakeFileLibraryProvider(dir string) func(context.Context, string) (string, error) {
	return func(ctx context.Context, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		if parts[0] != "file" {
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
		filename := filepath.Clean("/" + parts[1])
		bs, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return "", err
		}
		return string(bs), nil
	}
}

// MakeMapLibraryProvider resolves names using the given map.
func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, string) (string, error) {
	return func(ctx context.Context, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

func (i *Interpreter) provide(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, name)
	}
	return DefaultLibraryProvider(ctx, name)
}

func (i *Interpreter) logger() *slog.Logger {
	if i.Logger != nil {
		return i.Logger
	}
	return slog.Default()
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// AsSource extracts the code and any required library names.
func AsSource(src interface{}) (code string, libs []string, err error) {
	var m map[string]interface{}
	switch vv := src.(type) {
	case string:
		return vv, nil, nil
	case map[string]interface{}:
		m = vv
	case map[interface{}]interface{}:
		m = make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return "", nil, fmt.Errorf("bad source key (%T)", k)
			}
			m[s] = v
		}
	default:
		return "", nil, fmt.Errorf("bad Goja source (%T)", src)
	}

	var is bool
	if code, is = m["code"].(string); !is {
		return "", nil, errors.New("bad Goja code")
	}

	switch vv := m["requires"].(type) {
	case nil:
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		for _, x := range vv {
			s, is := x.(string)
			if !is {
				return "", nil, fmt.Errorf("bad library (%T)", x)
			}
			libs = append(libs, s)
		}
	default:
		return "", nil, fmt.Errorf("bad requires (%T)", vv)
	}

	return code, libs, nil
}

// Compile wraps the code in a function, prepends any required
// libraries, and calls goja.Compile.
//
// This method can block if the LibraryProvider blocks.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	var acc strings.Builder
	for _, lib := range libs {
		libSrc, err := i.provide(ctx, lib)
		if err != nil {
			return nil, err
		}
		acc.WriteString(libSrc)
		acc.WriteString("\n")
	}
	acc.WriteString(wrapSrc(code))

	p, err := goja.Compile("", acc.String(), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, code)
	}

	return p, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func export(x interface{}) interface{} {
	if v, is := x.(goja.Value); is {
		return v.Export()
	}
	return x
}

// Exec implements core.Interpreter.
//
// The following properties are available from the runtime at _.
//
//	state: the current state (or the proposed next state for middleware)
//	prev: the previously committed state (middleware only)
//	args: the action's arguments (actions only)
//
// Some utilities:
//
//	gensym(): generate a random string.
//	cronNext(expr): the next time (RFC3339) for the cron expression.
//	match(pat, obj, bs): run the pattern matcher.
//	log(x): log x as JSON.
//
// The returned object is the action's patch or the middleware's next
// state.  Returning null gives an empty State.
func (i *Interpreter) Exec(ctx context.Context, env *core.Env, src interface{}, compiled interface{}) (core.State, error) {
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return nil, err
		}
	}
	p, is := compiled.(*goja.Program)
	if !is {
		return nil, fmt.Errorf("Goja bad compilation: %T", compiled)
	}

	if env == nil {
		env = &core.Env{}
	}

	o := goja.New()

	_env := map[string]interface{}{
		"state": map[string]interface{}(env.State.Copy()),
	}
	if env.Prev != nil {
		_env["prev"] = map[string]interface{}(env.Prev.Copy())
	}
	if env.Args != nil {
		_env["args"] = append([]interface{}{}, env.Args...)
	} else {
		_env["args"] = []interface{}{}
	}

	_env["gensym"] = func() interface{} {
		return core.Gensym(32)
	}

	_env["cronNext"] = func(x interface{}) interface{} {
		cronExpr, is := export(x).(string)
		if !is {
			protest(o, "not a string")
		}
		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	_env["log"] = func(x interface{}) interface{} {
		x = export(x)
		js, err := json.Marshal(&x)
		if err != nil {
			i.logger().WarnContext(ctx, "goja.log", slog.String("error", err.Error()))
		} else {
			i.logger().InfoContext(ctx, "goja.log", slog.String("value", string(js)))
		}
		return x
	}

	_env["match"] = func(pat, fact, bs goja.Value) interface{} {
		var bindings core.Bindings
		if bs != nil && !goja.IsUndefined(bs) && !goja.IsNull(bs) {
			x, err := core.Canonicalize(bs.Export())
			if err != nil {
				protest(o, err.Error())
			}
			m, is := x.(map[string]interface{})
			if !is {
				protest(o, "bad bindings")
			}
			bindings = core.Bindings(m)
		}

		p, err := core.Canonicalize(pat.Export())
		if err != nil {
			protest(o, err.Error())
		}
		f, err := core.Canonicalize(fact.Export())
		if err != nil {
			protest(o, err.Error())
		}

		matched := core.Match(p, f, bindings)
		if matched == nil {
			return nil
		}
		return map[string]interface{}(matched)
	}

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	o.Set("_", _env)

	// Make sure the following goroutine terminates as soon as
	// possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If cancel() runs after RunProgram returns, the
		// interrupt is harmless.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		var ie *goja.InterruptedError
		if errors.As(err, &ie) {
			return nil, Interrupted
		}
		return nil, err
	}

	x, err := core.Canonicalize(v.Export())
	if err != nil {
		return nil, err
	}

	switch vv := x.(type) {
	case nil:
		return core.NewState(), nil
	case map[string]interface{}:
		return core.State(vv), nil
	default:
		return nil, fmt.Errorf("%#v (%T) isn't a State", x, x)
	}
}
