package sio

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Comcast/autostate/core"
	"github.com/Comcast/autostate/managers"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type token struct {
	err error
}

func (t *token) Wait() bool {
	return true
}

func (t *token) WaitTimeout(time.Duration) bool {
	return true
}

func (t *token) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

func (t *token) Error() error {
	return t.err
}

type publication struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type publisher struct {
	err  error
	pubs []publication
}

func (p *publisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.pubs = append(p.pubs, publication{
		topic:    topic,
		qos:      qos,
		retained: retained,
		payload:  payload.([]byte),
	})
	return &token{err: p.err}
}

func TestMQTTPublisher(t *testing.T) {
	ctx := context.Background()

	client := &publisher{}
	p := &MQTTPublisher{
		Client:   client,
		Prefix:   "state/",
		QoS:      1,
		Retained: true,
		Timeout:  time.Second,
	}

	m, err := managers.WithSideEffects(managers.NewCheckbox, p.SideEffect("o1", "checkbox"))(core.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = m.Dispatch(ctx, "toggle"); err != nil {
		t.Fatal(err)
	}

	if len(client.pubs) != 1 {
		t.Fatalf("published %d", len(client.pubs))
	}
	pub := client.pubs[0]
	if pub.topic != "state/o1" || pub.qos != 1 || !pub.retained {
		t.Fatalf("got %#v", pub)
	}
	var n Notice
	if err = json.Unmarshal(pub.payload, &n); err != nil {
		t.Fatal(err)
	}
	if !n.State.Equal(core.State{"checked": true}) {
		t.Fatalf("got %s", pub.payload)
	}
}

func TestMQTTPublisherError(t *testing.T) {
	boom := errors.New("boom")
	p := &MQTTPublisher{
		Client:  &publisher{err: boom},
		Timeout: time.Second,
	}
	if err := p.Publish(NewNotice("o1", "", core.State{})); err != boom {
		t.Fatalf("got %v", err)
	}

	// Without a timeout, nobody waits.
	p.Timeout = 0
	if err := p.Publish(NewNotice("o1", "", core.State{})); err != nil {
		t.Fatal(err)
	}
}
