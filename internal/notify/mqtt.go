package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ironvale/configcore/internal/infrastructure/logging"
)

// MQTT sink errors.
var (
	ErrMQTTConnectFailed = errors.New("mqtt connect failed")
	ErrMQTTNotConnected  = errors.New("mqtt client not connected")
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second

	// mqttEventTopic is where configuration change events are published.
	mqttEventTopic = "configcore/events/configuration_changed"
)

// MQTTConfig describes the broker connection for the MQTT event sink.
type MQTTConfig struct {
	Host     string
	Port     int
	TLS      bool
	ClientID string
	Username string
	Password string
	QoS      byte
}

// MQTTPublisher publishes configuration change events to an MQTT broker.
// It implements Sink.
type MQTTPublisher struct {
	client mqtt.Client
	cfg    MQTTConfig
	logger *logging.Logger
}

// ConnectMQTT connects to the broker and returns a publisher ready for use
// as an event sink. Returns ErrMQTTConnectFailed when the broker is
// unreachable.
func ConnectMQTT(cfg MQTTConfig, logger *logging.Logger) (*MQTTPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "notify.mqtt")

	opts := buildClientOptions(cfg, logger)
	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("%w: connect timed out after %s", ErrMQTTConnectFailed, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMQTTConnectFailed, err)
	}

	logger.Info("connected to mqtt broker", "host", cfg.Host, "port", cfg.Port)
	return &MQTTPublisher{client: client, cfg: cfg, logger: logger}, nil
}

func buildClientOptions(cfg MQTTConfig, logger *logging.Logger) *mqtt.ClientOptions {
	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
	}
	broker := fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(_ mqtt.Client) {
			logger.Info("mqtt connection established", "broker", broker)
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	return opts
}

// BroadcastAsync publishes one event without blocking the caller on broker
// round trips. Publish failures are logged, never surfaced; event delivery
// is best effort.
func (p *MQTTPublisher) BroadcastAsync(evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("failed to marshal mqtt event", "error", err)
		return
	}

	token := p.client.Publish(mqttEventTopic, p.cfg.QoS, false, payload)
	go func() {
		if !token.WaitTimeout(mqttPublishTimeout) {
			p.logger.Warn("mqtt publish timed out", "topic", mqttEventTopic)
			return
		}
		if err := token.Error(); err != nil {
			p.logger.Warn("mqtt publish failed", "topic", mqttEventTopic, "error", err)
		}
	}()
}

// Close disconnects from the broker, allowing in-flight messages a short
// grace period.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
	p.logger.Info("mqtt publisher closed")
}
