package sio

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Comcast/autostate/core"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the part of an mqtt.Client that MQTTPublisher uses.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher publishes Notices to an MQTT broker.  The topic for
// an owner is Prefix + owner.
type MQTTPublisher struct {
	Client Publisher

	Prefix   string
	QoS      byte
	Retained bool

	// Timeout bounds the wait for each publication.  Zero means
	// no waiting.
	Timeout time.Duration

	Logger *slog.Logger
}

// NewMQTTClient makes (but doesn't connect) a client for the given
// broker URL.
func NewMQTTClient(broker, clientID string) mqtt.Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.AutoReconnect = true
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		slog.Warn("MQTT connection lost", slog.String("error", err.Error()))
	}
	return mqtt.NewClient(opts)
}

func (p *MQTTPublisher) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Publish sends the Notice.
func (p *MQTTPublisher) Publish(n *Notice) error {
	js, err := json.Marshal(n)
	if err != nil {
		return err
	}
	t := p.Client.Publish(p.Prefix+n.Owner, p.QoS, p.Retained, js)
	if p.Timeout <= 0 {
		return nil
	}
	if !t.WaitTimeout(p.Timeout) {
		return errors.New("MQTT publish timeout")
	}
	return t.Error()
}

// SideEffect returns a core.SideEffect that publishes each committed
// state of the given owner's Manager.  Errors are logged.
func (p *MQTTPublisher) SideEffect(owner, manager string) core.SideEffect {
	return func(ctx context.Context, committed core.State) {
		if err := p.Publish(NewNotice(owner, manager, committed)); err != nil {
			p.logger().WarnContext(ctx, "MQTT publish",
				slog.String("owner", owner),
				slog.String("error", err.Error()))
		}
	}
}
