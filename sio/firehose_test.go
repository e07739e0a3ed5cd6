package sio

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/managers"

	"github.com/gorilla/websocket"
)

func TestFirehose(t *testing.T) {
	ctx := context.Background()

	f := NewFirehose()
	srv := httptest.NewServer(f)
	defer srv.Close()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	deadline := time.Now().Add(2 * time.Second)
	for f.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("connection not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	m, err := managers.WithSideEffects(managers.NewDialog, f.SideEffect("o1", "dialog"))(core.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = m.Dispatch(ctx, "open"); err != nil {
		t.Fatal(err)
	}

	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, js, err := c.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}

	var n Notice
	if err = json.Unmarshal(js, &n); err != nil {
		t.Fatal(err)
	}
	if n.Owner != "o1" || n.Manager != "dialog" || n.State["open"] != true {
		t.Fatalf("got %s", js)
	}
	if _, err = time.Parse(time.RFC3339Nano, n.At); err != nil {
		t.Fatal(err)
	}

	c.Close()
	deadline = time.Now().Add(2 * time.Second)
	for f.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection not removed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// No connections is fine.
	f.Publish(NewNotice("o1", "dialog", m.State()))
}
