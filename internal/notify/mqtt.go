package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultQoS          = 1
	defaultTimeout      = 10 * time.Second
	disconnectQuiesceMs = 250
)

// publisher is the subset of mqtt.Client used for delivery.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTNotifier publishes alert events as JSON to
// <topic>/<vin>/<alert_type>.
type MQTTNotifier struct {
	client  publisher
	closer  func()
	topic   string
	qos     byte
	timeout time.Duration
}

// NewMQTTNotifier connects to broker and returns a notifier publishing under topic.
func NewMQTTNotifier(broker, clientID, topic string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(defaultTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", broker, err)
	}
	return &MQTTNotifier{
		client:  client,
		closer:  func() { client.Disconnect(disconnectQuiesceMs) },
		topic:   topic,
		qos:     defaultQoS,
		timeout: defaultTimeout,
	}, nil
}

// Topic returns the topic an event is published on.
func (n *MQTTNotifier) Topic(ev AlertEvent) string {
	return fmt.Sprintf("%s/%s/%s", n.topic, ev.VIN, ev.AlertType)
}

// Notify publishes ev and waits for the broker to acknowledge it.
func (n *MQTTNotifier) Notify(ctx context.Context, ev AlertEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}
	token := n.client.Publish(n.Topic(ev), n.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(n.timeout):
		return fmt.Errorf("mqtt publish %s: timed out", n.Topic(ev))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", n.Topic(ev), err)
	}
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	if n.closer != nil {
		n.closer()
	}
}
