package sio

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Comcast/autostate/autocontrol"
	"github.com/Comcast/autostate/bridge"
	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/diag"
	"github.com/Comcast/autostate/managers"

	"github.com/google/uuid"
)

var owner = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func newStdio(input string) (*Stdio, *bytes.Buffer, *diag.Collector) {
	var (
		out bytes.Buffer
		c   diag.Collector
		a   = bridge.NewArena()
	)
	a.Reporter = &c

	s := NewStdio(a, autocontrol.NewComponent("Dialog", []string{"open", "defaultOpen"}, nil),
		managers.NewDialog, []string{"open"})
	s.In = strings.NewReader(input)
	s.Out = &out
	s.Owner = owner
	return s, &out, &c
}

func stateLines(out string) []string {
	var acc []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "state") {
			acc = append(acc, strings.TrimSpace(strings.TrimPrefix(line, "state")))
		}
	}
	return acc
}

func TestStdio(t *testing.T) {
	input := `
# Controlled open.
{"props":{"open":true}}
{"action":"close"}

# Uncontrolled now.
{"props":{}}
{"action":"close"}
{"hydrate":{"title":"hi"}}
`
	s, out, _ := newStdio(input)
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	o := owner.String()
	want := []string{
		o + ` {"open":true}`,
		o + ` {"open":true}`,
		o + ` {"open":true}`,
		o + ` {"open":false}`,
		o + ` {"open":false,"title":"hi"}`,
	}
	got := stateLines(out.String())
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("got\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestStdioHydrateControlled(t *testing.T) {
	s, out, _ := newStdio(`{"props":{"open":true}}
{"hydrate":{"open":false,"title":"hi"}}
`)
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := stateLines(out.String())
	if len(got) != 2 {
		t.Fatalf("got %q", got)
	}
	if want := owner.String() + ` {"open":true,"title":"hi"}`; got[1] != want {
		t.Fatalf("got %s want %s", got[1], want)
	}
}

func TestStdioSideEffects(t *testing.T) {
	s, _, _ := newStdio(`{"action":"open"}` + "\n")

	var seen []core.State
	s.SideEffects = func(o uuid.UUID) []core.SideEffect {
		if o != owner {
			t.Fatalf("owner %s", o)
		}
		return []core.SideEffect{func(ctx context.Context, st core.State) {
			seen = append(seen, st)
		}}
	}

	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0]["open"] != true {
		t.Fatalf("seen %v", seen)
	}
}

func TestStdioErrors(t *testing.T) {
	input := `not json
{"action":"explode"}
{}
{"owner":"nope","action":"open"}
{"owner":"` + uuid.New().String() + `","hydrate":{"open":true}}
quit
{"props":{"open":true}}
`
	s, out, _ := newStdio(input)
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	errs := strings.Count(out.String(), "error")
	if errs != 5 {
		t.Fatalf("%d errors in\n%s", errs, out)
	}
	if strings.Contains(out.String(), `{"open":true}`) {
		t.Fatalf("input after quit was processed:\n%s", out)
	}
}

func TestStdioRelease(t *testing.T) {
	s, out, _ := newStdio(`{"props":{"defaultOpen":true}}
{"release":true}
`)
	if err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `{"open":true}`) {
		t.Fatalf("default ignored:\n%s", out)
	}
	if s.Arena.Len() != 0 {
		t.Fatal("not released")
	}
}

func TestShellExpand(t *testing.T) {
	got, err := ShellExpand(`{"title":"<<echo hi>>"}`)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"title":"hi"}` {
		t.Fatalf("got %s", got)
	}
}
