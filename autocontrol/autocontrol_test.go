package autocontrol

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/diag"
)

func TestDefaultPropName(t *testing.T) {
	tests := map[string]string{
		"open":    "defaultOpen",
		"value":   "defaultValue",
		"checked": "defaultChecked",
		"x":       "defaultX",
		"":        "default",
	}
	for field, want := range tests {
		if got := DefaultPropName(field); got != want {
			t.Fatalf("DefaultPropName(%q) = %q, want %q", field, got, want)
		}
	}
}

func TestComputeDefaultValue(t *testing.T) {
	tests := []struct {
		name  string
		field string
		props core.State
		want  interface{}
	}{
		{"controlled", "open", core.State{"open": true, "defaultOpen": false}, true},
		{"controlled false", "open", core.State{"open": false}, false},
		{"default", "open", core.State{"defaultOpen": true}, true},
		{"nil is undefined", "open", core.State{"open": nil, "defaultOpen": true}, true},
		{"checked", "checked", core.State{}, false},
		{"checked default", "checked", core.State{"defaultChecked": true}, true},
		{"value", "value", core.State{}, ""},
		{"value multiple", "value", core.State{"multiple": true}, []interface{}{}},
		{"value not multiple", "value", core.State{"multiple": false}, ""},
		{"value given", "value", core.State{"value": "x", "multiple": true}, "x"},
		{"multiple int32 zero", "value", core.State{"multiple": int32(0)}, ""},
		{"multiple uint zero", "value", core.State{"multiple": uint(0)}, ""},
		{"multiple float32 zero", "value", core.State{"multiple": float32(0)}, ""},
		{"multiple int8 zero", "value", core.State{"multiple": int8(0)}, ""},
		{"multiple NaN", "value", core.State{"multiple": math.NaN()}, ""},
		{"multiple empty string", "value", core.State{"multiple": ""}, ""},
		{"multiple uint16", "value", core.State{"multiple": uint16(2)}, []interface{}{}},
		{"multiple float32", "value", core.State{"multiple": float32(0.5)}, []interface{}{}},
		{"multiple string", "value", core.State{"multiple": "yes"}, []interface{}{}},
		{"multiple map", "value", core.State{"multiple": map[string]interface{}{}}, []interface{}{}},
		{"nothing", "open", core.State{}, nil},
		{"nil props", "open", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDefaultValue(tt.field, tt.props)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDefinedControlled(t *testing.T) {
	props := core.State{
		"open":  true,
		"value": nil,
		"other": 1,
	}
	got := DefinedControlled([]string{"open", "value", "checked"}, props)
	if !got.Equal(core.State{"open": true}) {
		t.Fatalf("got %s", got)
	}

	vals := ControlledValues([]string{"open", "value", "checked"}, props)
	if !reflect.DeepEqual(vals, []interface{}{true, nil, nil}) {
		t.Fatalf("values %#v", vals)
	}
}

func TestControlledOverride(t *testing.T) {
	mw := ControlledOverride([]string{"open", "value"}, core.State{"open": true})
	next, err := mw.Apply(context.Background(), core.State{"open": true}, core.State{"open": false, "value": "a"})
	if err != nil {
		t.Fatal(err)
	}
	if !next.Equal(core.State{"open": true, "value": "a"}) {
		t.Fatalf("got %s", next)
	}
}

func TestComputeInitialState(t *testing.T) {
	var c diag.Collector
	comp := NewComponent("Dropdown", []string{"open", "defaultOpen", "value", "defaultValue"}, nil)

	st := ComputeInitialState(context.Background(), &c, comp,
		[]string{"open", "value", "highlighted"},
		core.State{"defaultOpen": true, "multiple": true})

	want := core.State{
		"open":  true,
		"value": []interface{}{},
	}
	if !st.Equal(want) {
		t.Fatalf("got %s, want %s", st, want)
	}

	// "highlighted" has no validators.
	codes := c.Codes()
	if len(codes) != 2 || codes[0] != diag.MissingDefaultPropType || codes[1] != diag.MissingPropType {
		t.Fatalf("codes %v", codes)
	}
}

func TestAutoControlledDefaultProp(t *testing.T) {
	var c diag.Collector
	comp := NewComponent("Input", nil, core.State{"value": "x", "size": "medium"})

	ComputeInitialState(context.Background(), &c, comp, []string{"value"}, core.State{})

	if len(c.Diagnostics) != 1 {
		t.Fatalf("diagnostics %#v", c.Diagnostics)
	}
	d := c.Diagnostics[0]
	if d.Code != diag.AutoControlledDefaultProp || d.Level != diag.LevelWarning {
		t.Fatalf("diagnostic %#v", d)
	}
	if !reflect.DeepEqual(d.Fields, []string{"value"}) {
		t.Fatalf("fields %v", d.Fields)
	}
}

func TestDefaultPrefixed(t *testing.T) {
	var c diag.Collector
	ComputeInitialState(context.Background(), &c, nil, []string{"defaultOpen", "open", "defaultValue"}, nil)

	if len(c.Diagnostics) != 1 {
		t.Fatalf("diagnostics %#v", c.Diagnostics)
	}
	d := c.Diagnostics[0]
	if d.Code != diag.DefaultPrefixedAutoControlled {
		t.Fatalf("code %s", d.Code)
	}
	if !reflect.DeepEqual(d.Fields, []string{"defaultOpen", "defaultValue"}) {
		t.Fatalf("fields %v", d.Fields)
	}
}

func TestControlledAndDefault(t *testing.T) {
	var c diag.Collector
	st := ComputeInitialState(context.Background(), &c, NewComponent("Dialog", nil, nil),
		[]string{"open"}, core.State{"open": false, "defaultOpen": true})

	if st["open"] != false {
		t.Fatalf("controlled value should win: %s", st)
	}
	codes := c.Codes()
	if len(codes) != 1 || codes[0] != diag.ControlledAndDefault {
		t.Fatalf("codes %v", codes)
	}
}

func TestNilReporter(t *testing.T) {
	st := ComputeInitialState(context.Background(), nil, nil, []string{"defaultOpen", "checked"}, nil)
	if !st.Equal(core.State{"checked": false}) {
		t.Fatalf("got %s", st)
	}
}

func TestComponentOf(t *testing.T) {
	d := &core.Definition{
		Name:         "Dialog",
		PropTypes:    []string{"open"},
		DefaultProps: core.State{"size": "small"},
	}
	c := ComponentOf(d)
	if c.Name != "Dialog" || !c.PropTypes["open"] || c.PropTypes["defaultOpen"] {
		t.Fatalf("component %#v", c)
	}
	if c.DefaultProps["size"] != "small" {
		t.Fatalf("default props %s", c.DefaultProps)
	}
}
