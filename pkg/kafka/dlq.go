package kafka

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// DLQPayload captures enough context to replay or inspect a failed
// message. The original value is carried base64-encoded so the quarantine
// stream is lossless regardless of what the value contained.
type DLQPayload struct {
	Topic       string            `json:"topic"`
	Partition   int32             `json:"partition"`
	Offset      int64             `json:"offset"`
	Timestamp   time.Time         `json:"timestamp"`
	KeyBase64   string            `json:"key_base64,omitempty"`
	ValueBase64 string            `json:"value_base64"`
	Headers     map[string]string `json:"headers,omitempty"`
	Error       string            `json:"error"`
	Consumer    string            `json:"consumer"`
}

// EncodeDLQMessage serializes a Kafka message into a DLQ-safe payload.
func EncodeDLQMessage(msg Message, err error, consumer string) ([]byte, error) {
	payload := DLQPayload{
		Topic:       msg.Topic,
		Partition:   msg.Partition,
		Offset:      msg.Offset,
		Timestamp:   msg.Timestamp,
		ValueBase64: base64.StdEncoding.EncodeToString(msg.Value),
		Headers:     msg.Headers,
		Consumer:    consumer,
	}

	if len(msg.Key) > 0 {
		payload.KeyBase64 = base64.StdEncoding.EncodeToString(msg.Key)
	}

	if err != nil {
		payload.Error = err.Error()
	}

	b, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, fmt.Errorf("marshal dlq payload: %w", marshalErr)
	}

	return b, nil
}

// DecodeDLQMessage parses a quarantined payload back into the original
// message plus the recorded failure. Used by out-of-band replay tooling.
func DecodeDLQMessage(data []byte) (Message, string, error) {
	var payload DLQPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Message{}, "", fmt.Errorf("unmarshal dlq payload: %w", err)
	}

	value, err := base64.StdEncoding.DecodeString(payload.ValueBase64)
	if err != nil {
		return Message{}, "", fmt.Errorf("decode dlq value: %w", err)
	}

	msg := Message{
		Topic:     payload.Topic,
		Partition: payload.Partition,
		Offset:    payload.Offset,
		Timestamp: payload.Timestamp,
		Value:     value,
		Headers:   payload.Headers,
	}

	if payload.KeyBase64 != "" {
		key, err := base64.StdEncoding.DecodeString(payload.KeyBase64)
		if err != nil {
			return Message{}, "", fmt.Errorf("decode dlq key: %w", err)
		}
		msg.Key = key
	}

	return msg, payload.Error, nil
}
