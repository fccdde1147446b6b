package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const timeout = 5 * time.Second

// Broker identifies where notices are published.
type Broker struct {
	URL      string
	ClientID string // empty generates "splash-<random>"
	Topic    string
	QoS      byte
	Retain   bool
	Username string
	Password string
}

// Notice is the JSON payload announcing a finished run.
type Notice struct {
	RunID     string   `json:"run_id"`
	Icon      string   `json:"icon"`
	Style     string   `json:"style"`
	OutputDir string   `json:"output_dir"`
	Files     []string `json:"files"`
}

// Payload returns the JSON encoding of n.
func (n Notice) Payload() (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("mqtt: encode notice: %w", err)
	}
	return string(data), nil
}

// PublishNotice encodes n and publishes it to b.
func PublishNotice(b Broker, n Notice) error {
	payload, err := n.Payload()
	if err != nil {
		return err
	}
	clientID := b.ClientID
	if clientID == "" {
		clientID = "splash-" + uuid.NewString()[:8]
	}
	return Publish(b.URL, clientID, b.Topic, payload, b.QoS, b.Retain, b.Username, b.Password)
}

// Publish connects to an MQTT broker, publishes a message to the given
// topic, and disconnects. Each invocation creates a fresh connection.
func Publish(broker, clientID, topic, message string, qos byte, retain bool, username, password string) error {
	opts := pahomqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(timeout)

	if username != "" {
		opts.SetUsername(username)
	}
	if password != "" {
		opts.SetPassword(password)
	}

	client := pahomqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	defer client.Disconnect(250)

	pub := client.Publish(topic, qos, retain, message)
	if !pub.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	return nil
}
