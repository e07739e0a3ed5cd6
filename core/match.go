package core

import (
	"context"
	"reflect"
	"strings"
)

// Bindings is a map from variables (strings starting with a '?') to
// their values.
type Bindings map[string]interface{}

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Copy makes a shallow copy of the Bindings.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

// IsVariable reports if the string represents a pattern variable.
//
// All pattern variables start with a '?'.
func IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

// IsAnonymousVariable detects a variable of the form '?', which
// matches anything and is never bound.
func IsAnonymousVariable(s string) bool {
	return s == "?"
}

// Match attempts to match the fact against the pattern given the
// initial bindings, which are not modified.
//
// A variable matches anything once.  After that, it only matches a
// value equal to its binding.  A map pattern matches a map fact if
// every pattern property is present in the fact and matches the
// fact's value; extra fact properties are ignored.  An array pattern
// matches an array fact of the same length element-wise.  Anything
// else matches an equal value.  Numbers are compared as float64.
//
// Returns nil bindings if there's no match.
func Match(pattern, fact interface{}, bs Bindings) Bindings {
	if bs == nil {
		bs = NewBindings()
	}
	return match(pattern, fact, bs.Copy())
}

func match(pattern, fact interface{}, bs Bindings) Bindings {
	switch vv := pattern.(type) {
	case string:
		if !IsVariable(vv) {
			if s, is := fact.(string); is && s == vv {
				return bs
			}
			return nil
		}
		if IsAnonymousVariable(vv) {
			return bs
		}
		if bound, have := bs[vv]; have {
			if equalValues(bound, fact) {
				return bs
			}
			return nil
		}
		bs[vv] = fact
		return bs
	case map[string]interface{}:
		return matchMap(vv, fact, bs)
	case State:
		return matchMap(vv, fact, bs)
	case []interface{}:
		fs, is := fact.([]interface{})
		if !is || len(fs) != len(vv) {
			return nil
		}
		for i, p := range vv {
			if bs = match(p, fs[i], bs); bs == nil {
				return nil
			}
		}
		return bs
	default:
		if equalValues(pattern, fact) {
			return bs
		}
		return nil
	}
}

func matchMap(pattern map[string]interface{}, fact interface{}, bs Bindings) Bindings {
	var m map[string]interface{}
	switch vv := fact.(type) {
	case map[string]interface{}:
		m = vv
	case State:
		m = vv
	default:
		return nil
	}
	for p, v := range pattern {
		fv, have := m[p]
		if !have {
			return nil
		}
		if bs = match(v, fv, bs); bs == nil {
			return nil
		}
	}
	return bs
}

func equalValues(x, y interface{}) bool {
	if fx, is := asFloat(x); is {
		if fy, is := asFloat(y); is {
			return fx == fy
		}
		return false
	}
	return reflect.DeepEqual(x, y)
}

func asFloat(x interface{}) (float64, bool) {
	switch vv := x.(type) {
	case float64:
		return vv, true
	case float32:
		return float64(vv), true
	case int:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case int32:
		return float64(vv), true
	case uint:
		return float64(vv), true
	case uint64:
		return float64(vv), true
	case uint32:
		return float64(vv), true
	}
	return 0, false
}

// When makes a SideEffect that invokes the given SideEffect only when
// the committed state matches the pattern.
//
//	core.When(core.State{"open": true}, announceOpened)
func When(pattern State, fx SideEffect) SideEffect {
	return func(ctx context.Context, committed State) {
		if Match(pattern, committed, nil) != nil {
			fx(ctx, committed)
		}
	}
}
