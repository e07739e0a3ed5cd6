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

package sio

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/Comcast/autostate/core"

	"github.com/gorilla/websocket"
)

// Firehose is an http.Handler that upgrades requests to websockets
// and then sends every published Notice to every connection as JSON.
//
// Sends never block.  A connection that falls behind by more than
// Buffer notices drops the excess.  Input from clients is ignored.
type Firehose struct {
	// Buffer is the per-connection queue length.  Defaults to 32.
	Buffer int

	Logger *slog.Logger

	upgrader websocket.Upgrader
	conns    sync.Map
	n        int64
}

// NewFirehose makes a Firehose with default settings.
func NewFirehose() *Firehose {
	return &Firehose{
		Buffer: 32,
	}
}

func (f *Firehose) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Len returns the number of connections.
func (f *Firehose) Len() int {
	return int(atomic.LoadInt64(&f.n))
}

// Publish queues the Notice for every connection.
func (f *Firehose) Publish(n *Notice) {
	f.conns.Range(func(k, v interface{}) bool {
		select {
		case v.(chan *Notice) <- n:
		default:
			f.logger().Warn("firehose blocked", slog.String("conn", k.(string)))
		}
		return true
	})
}

// SideEffect returns a core.SideEffect that publishes each committed
// state of the given owner's Manager.
func (f *Firehose) SideEffect(owner, manager string) core.SideEffect {
	return func(ctx context.Context, committed core.State) {
		f.Publish(NewNotice(owner, manager, committed))
	}
}

func (f *Firehose) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger().Warn("firehose upgrade", slog.String("error", err.Error()))
		return
	}
	defer c.Close()

	size := f.Buffer
	if size <= 0 {
		size = 32
	}
	queue := make(chan *Notice, size)
	done := make(chan struct{})

	id := c.RemoteAddr().String() + "/" + core.Gensym(8)
	f.conns.Store(id, queue)
	atomic.AddInt64(&f.n, 1)
	defer func() {
		f.conns.Delete(id)
		atomic.AddInt64(&f.n, -1)
		close(done)
	}()

	ctx := r.Context()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case n := <-queue:
				js, err := json.Marshal(n)
				if err != nil {
					f.logger().Warn("firehose marshal", slog.String("error", err.Error()))
					continue
				}
				if err = c.WriteMessage(websocket.TextMessage, js); err != nil {
					f.logger().Warn("firehose write", slog.String("error", err.Error()))
					return
				}
			}
		}
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
