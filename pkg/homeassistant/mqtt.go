package homeassistant

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sywesk/tsme-exporter/pkg/meterfetcher"
	"go.uber.org/zap"
)

const publishTimeout = 10 * time.Second

type MQTTParams struct {
	Host     string
	Username string
	Password string
}

// MQTT publishes meter indexes to Home Assistant through its MQTT discovery protocol.
type MQTT struct {
	params MQTTParams
	client mqtt.Client
}

func New(params MQTTParams) *MQTT {
	return &MQTT{
		params: params,
	}
}

func (m *MQTT) Connect() error {
	clientOptions := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s", m.params.Host)).
		SetClientID("tsme-exporter-" + uuid.NewString())

	if m.params.Password != "" {
		clientOptions = clientOptions.SetPassword(m.params.Password)
	}
	if m.params.Username != "" {
		clientOptions = clientOptions.SetUsername(m.params.Username)
	}

	client := mqtt.NewClient(clientOptions)

	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		client.Disconnect(0)
		return fmt.Errorf("failed to connect to mqtt broker: timed out")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return fmt.Errorf("failed to connect to mqtt broker: %w", err)
	}

	m.client = client
	zap.L().Info("connected to mqtt broker", zap.String("host", m.params.Host))
	return nil
}

func (m *MQTT) Close() {
	if m.client != nil {
		m.client.Disconnect(250)
	}
}

// Publish declares a sensor per meter and sets its state to the meter's latest index. Every
// message is retained so that Home Assistant picks them up when it restarts.
func (m *MQTT) Publish(meters []meterfetcher.MeterData) error {
	if m.client == nil {
		return fmt.Errorf("mqtt client is not connected")
	}

	for _, msg := range buildMessages(meters) {
		token := m.client.Publish(msg.topic, 1, true, msg.payload)
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("failed to publish on %s: timed out", msg.topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("failed to publish on %s: %w", msg.topic, err)
		}
	}

	return nil
}

type message struct {
	topic   string
	payload []byte
}

func buildMessages(meters []meterfetcher.MeterData) []message {
	var messages []message

	for _, meter := range meters {
		record, ok := meter.LastIndex()
		if !ok {
			zap.L().Warn("no index to publish for meter", zap.String("meter_id", meter.MeterID))
			continue
		}

		topics := buildSensorTopics(meter.MeterID)

		config, err := json.Marshal(getWaterSensorConfig(meter.MeterID, topics.State))
		if err != nil {
			zap.L().Error("failed to marshal json sensor config", zap.String("meter_id", meter.MeterID), zap.Error(err))
			continue
		}

		value := strconv.FormatFloat(*record.Index, 'f', -1, 64)

		messages = append(messages,
			message{topic: topics.Config, payload: config},
			message{topic: topics.State, payload: []byte(value)},
		)
		zap.L().Info("prepared device", zap.String("meter_id", meter.MeterID), zap.String("value", value))
	}

	return messages
}
