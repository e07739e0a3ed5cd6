package goja

import (
	"context"
	"testing"
	"time"

	"github.com/Comcast/autostate/core"
	. "github.com/Comcast/autostate/util/testutil"
)

func exec(t *testing.T, i *Interpreter, code interface{}, env *core.Env) (core.State, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}
	return i.Exec(ctx, env, code, compiled)
}

func TestActionsSimple(t *testing.T) {
	st, err := exec(t, NewInterpreter(), `return {likes:"chips"};`, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, is := st["likes"].(string)
	if !is || s != "chips" {
		t.Fatalf("got %s", JS(st))
	}
}

func TestActionsStateAndArgs(t *testing.T) {
	code := `return {count: _.state.count + _.args[0], title: _.args[1]};`
	st, err := exec(t, NewInterpreter(), code, &core.Env{
		State: State(`{"count":1}`),
		Args:  []interface{}{2, "hi"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !st.Equal(core.State{"count": 3.0, "title": "hi"}) {
		t.Fatalf("got %s", JS(st))
	}
}

func TestActionsNull(t *testing.T) {
	st, err := exec(t, NewInterpreter(), `return null;`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st == nil || len(st) != 0 {
		t.Fatalf("got %#v", st)
	}
}

func TestActionsNotAState(t *testing.T) {
	if _, err := exec(t, NewInterpreter(), `return 42;`, nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestMiddleware(t *testing.T) {
	code := `var acc = _.state; if (_.prev.locked) { acc.title = _.prev.title; } return acc;`
	st, err := exec(t, NewInterpreter(), code, &core.Env{
		State: core.State{"title": "new", "locked": true},
		Prev:  core.State{"title": "old", "locked": true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if st["title"] != "old" {
		t.Fatalf("got %s", JS(st))
	}
}

func TestEnvNotModified(t *testing.T) {
	state := core.State{"n": 1}
	if _, err := exec(t, NewInterpreter(), `_.state.n = 2; return {};`, &core.Env{State: state}); err != nil {
		t.Fatal(err)
	}
	if state["n"] != 1 {
		t.Fatalf("state modified: %s", JS(state))
	}
}

func TestActionsTimeout(t *testing.T) {
	code := `for (;;) { sleep(10); } return null;`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	i := NewInterpreter()
	i.Testing = true
	compiled, err := i.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = i.Exec(ctx, nil, code, compiled); err != Interrupted {
		t.Fatalf("surprised by %v", err)
	}
}

func TestActionsError(t *testing.T) {
	if _, err := exec(t, NewInterpreter(), `likes + tacos; return null;`, nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestCompileError(t *testing.T) {
	if _, err := NewInterpreter().Compile(context.Background(), `return {`); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestActionsCronNext(t *testing.T) {
	st, err := exec(t, NewInterpreter(), `return {next: _.cronNext("* 0 * * *")};`, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, is := st["next"].(string)
	if !is {
		t.Fatalf("got %s", JS(st))
	}
	if _, err = time.Parse(time.RFC3339Nano, s); err != nil {
		t.Fatal(err)
	}

	if _, err = exec(t, NewInterpreter(), `return {next: _.cronNext("bad")};`, nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestActionsMatch(t *testing.T) {
	code := `var bs = _.match({who:"?who"}, {who:"homer", likes:"beer"}); return {who: bs["?who"]};`
	st, err := exec(t, NewInterpreter(), code, nil)
	if err != nil {
		t.Fatal(err)
	}
	if st["who"] != "homer" {
		t.Fatalf("got %s", JS(st))
	}
}

func TestActionsGensym(t *testing.T) {
	st, err := exec(t, NewInterpreter(), `return {id: _.gensym()};`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := st["id"].(string); len(s) != 32 {
		t.Fatalf("got %s", JS(st))
	}
}

func TestRequires(t *testing.T) {
	i := NewInterpreter()
	i.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"lib/double": `function double(n) { return 2*n; }`,
	})

	src := map[string]interface{}{
		"requires": []interface{}{"lib/double"},
		"code":     `return {n: double(_.args[0])};`,
	}
	st, err := exec(t, i, src, &core.Env{Args: []interface{}{21}})
	if err != nil {
		t.Fatal(err)
	}
	if st["n"] != 42.0 {
		t.Fatalf("got %s", JS(st))
	}

	src["requires"] = "lib/missing"
	if _, err = i.Compile(context.Background(), src); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestActionSource(t *testing.T) {
	ctx := context.Background()

	// The init function registered this interpreter.
	a, err := (&core.ActionSource{
		Interpreter: "goja",
		Source:      `return {open: !_.state.open};`,
	}).Compile(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	m, err := core.NewManager(core.Config{
		InitialState: core.State{"open": false},
		Actions:      core.Actions{"toggle": a},
	})
	if err != nil {
		t.Fatal(err)
	}

	for n := 0; n < 3; n++ {
		st, err := m.Dispatch(ctx, "toggle")
		if err != nil {
			t.Fatal(err)
		}
		if want := n%2 == 0; st["open"] != want {
			t.Fatalf("%d: got %s", n, JS(st))
		}
	}
}
