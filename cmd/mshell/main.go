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

// Package main is a line-oriented driver for a manager.
//
// Each input line is a JSON op:
//
//	{"props":{"open":true}}
//	{"action":"close"}
//	{"hydrate":{"title":"Hello"}}
//	{"release":true}
//
// The manager is either a built-in ("-m dialog") or one given by a
// Definition ("-s dialog.yaml").  State can be loaded from and saved
// to a bbolt file, and changes can be pushed to websocket clients
// and an MQTT broker.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/Comcast/autostate/autocontrol"
	"github.com/Comcast/autostate/bridge"
	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/interpreters"
	"github.com/Comcast/autostate/managers"
	"github.com/Comcast/autostate/sio"
	"github.com/Comcast/autostate/storage/bolt"

	"github.com/google/uuid"
)

func main() {
	var (
		defFilename = flag.String("s", "", "Definition filename (YAML)")
		builtin     = flag.String("m", "dialog", "Built-in manager (if no -s)")
		fields      = flag.String("f", "", "Auto-controlled fields (comma-separated); defaults to the Definition's or the built-in manager's")
		debug       = flag.Bool("d", false, "Log transitions")
		echo        = flag.Bool("echo", false, "Echo input")
		timestamps  = flag.Bool("t", false, "Timestamp output")
		shellExpand = flag.Bool("sh", false, "Expand <<CMD>> in input")
		dbFilename  = flag.String("db", "", "bbolt filename for state")
		scope       = flag.String("scope", "mshell", "Storage scope")
		owner       = flag.String("owner", "", "Default owner (UUID)")
		wsAddr      = flag.String("ws", "", "Websocket firehose address (e.g. :8080)")
		broker      = flag.String("mqtt", "", "MQTT broker (e.g. tcp://localhost:1883)")
		topicPrefix = flag.String("mqtt-prefix", "state/", "MQTT topic prefix")
	)

	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		comp    *autocontrol.Component
		factory managers.Factory
		ctl     []string
	)

	if *defFilename != "" {
		def, err := core.ReadDefinition(*defFilename)
		if err != nil {
			log.Fatal(err)
		}
		cfg, err := def.Compile(ctx, interpreters.Standard())
		if err != nil {
			log.Fatal(err)
		}
		comp = autocontrol.ComponentOf(def)
		factory = managers.FromDefinition(cfg)
		ctl = def.AutoControlled
	} else {
		f, have := managers.Standard()[*builtin]
		if !have {
			log.Fatalf("unknown manager '%s'", *builtin)
		}
		factory = f
		comp = autocontrol.NewComponent(*builtin, nil, nil)
		ctl = managers.StandardFields()[*builtin]
	}

	if *fields != "" {
		ctl = strings.Split(*fields, ",")
	}

	arena := bridge.NewArena()
	arena.Logger = logger
	arena.Debug = *debug

	s := sio.NewStdio(arena, comp, factory, ctl)
	s.EchoInput = *echo
	s.Timestamps = *timestamps
	s.ShellExpand = *shellExpand

	if *owner != "" {
		id, err := uuid.Parse(*owner)
		if err != nil {
			log.Fatal(err)
		}
		s.Owner = id
	}

	var effects []func(owner, manager string) core.SideEffect

	if *wsAddr != "" {
		hose := sio.NewFirehose()
		hose.Logger = logger
		mux := http.NewServeMux()
		mux.Handle("/ws", hose)
		go func() {
			if err := http.ListenAndServe(*wsAddr, mux); err != nil {
				log.Fatal(err)
			}
		}()
		effects = append(effects, hose.SideEffect)
	}

	if *broker != "" {
		client := sio.NewMQTTClient(*broker, "mshell-"+core.Gensym(8))
		if t := client.Connect(); t.Wait() && t.Error() != nil {
			log.Fatal(t.Error())
		}
		defer client.Disconnect(100)
		p := &sio.MQTTPublisher{
			Client: client,
			Prefix: *topicPrefix,
			QoS:    1,
			Logger: logger,
		}
		effects = append(effects, p.SideEffect)
	}

	if 0 < len(effects) {
		s.SideEffects = func(o uuid.UUID) []core.SideEffect {
			acc := make([]core.SideEffect, 0, len(effects))
			for _, f := range effects {
				acc = append(acc, f(o.String(), comp.Name))
			}
			return acc
		}
	}

	var db *bolt.Storage
	if *dbFilename != "" {
		var err error
		if db, err = bolt.NewStorage(*dbFilename); err != nil {
			log.Fatal(err)
		}
		db.Logger = logger
		db.Debug = *debug
		if err = db.Open(ctx); err != nil {
			log.Fatal(err)
		}
		defer db.Close(ctx)
		if err = arena.Load(ctx, db, *scope); err != nil {
			log.Fatal(err)
		}
	}

	if err := s.Run(ctx); err != nil {
		log.Println(err)
	}

	if db != nil {
		if err := arena.Save(ctx, db, *scope); err != nil {
			log.Println(err)
		}
	}
}
