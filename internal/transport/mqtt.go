// SPDX-License-Identifier: MIT
package transport

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	applog "bandscope/internal/log"
)

const mqttConnectTimeout = 5 * time.Second

// mqttPayload is the compact band-power message published per tick; the
// full windows stay local, only the derived metrics go to the broker.
type mqttPayload struct {
	Seq       uint32             `json:"seq"`
	Timestamp time.Time          `json:"timestamp"`
	Powers    map[string]float64 `json:"powers"`
	Dominant  string             `json:"dominant"`
}

// MQTTTransport publishes per-tick band powers to an MQTT topic at QoS 0.
type MQTTTransport struct {
	client mqtt.Client
	topic  string
}

// NewMQTTTransport connects to the broker and returns the publisher.
// A broker that cannot be reached at startup is an error; once connected,
// publish failures are logged and dropped.
func NewMQTTTransport(brokerAddr, topic string) (*MQTTTransport, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerAddr).
		SetClientID("bandscope").
		SetConnectTimeout(mqttConnectTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) || token.Error() != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", brokerAddr, token.Error())
	}

	applog.Infof("mqtt: connected to %s, topic %s", brokerAddr, topic)
	return &MQTTTransport{client: client, topic: topic}, nil
}

// Send publishes the frame's band powers. QoS 0, fire and forget: the
// token is drained off the tick path and failures only log.
func (mt *MQTTTransport) Send(frame *Frame) error {
	payload := mqttPayload{
		Seq:       frame.Seq,
		Timestamp: frame.Timestamp,
		Powers:    make(map[string]float64, len(frame.Bands)),
		Dominant:  frame.Dominant,
	}
	for _, b := range frame.Bands {
		payload.Powers[b.Name] = b.Power
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("mqtt: marshal frame: %w", err)
	}

	token := mt.client.Publish(mt.topic, 0, false, data)
	go func() {
		if token.Wait() && token.Error() != nil {
			applog.Warnf("mqtt: publish failed: %v", token.Error())
		}
	}()
	return nil
}

// Close disconnects from the broker.
func (mt *MQTTTransport) Close() error {
	mt.client.Disconnect(250)
	return nil
}

var _ Transport = (*MQTTTransport)(nil)
