package kafka

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeDLQMessageRoundTrip(t *testing.T) {
	timestamp := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	msg := Message{
		Topic:     "discovered-posts",
		Partition: 2,
		Offset:    42,
		Timestamp: timestamp,
		Key:       []byte("post-123"),
		Value:     []byte(`{"post_id":"post-123","campaign_id":5}`),
		Headers: map[string]string{
			"campaign_id": "5",
		},
	}

	payloadBytes, err := EncodeDLQMessage(msg, errors.New("synthesis failed"), "reply-generator")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, failure, err := DecodeDLQMessage(payloadBytes)
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	if string(decoded.Key) != "post-123" {
		t.Fatalf("expected key post-123, got %q", string(decoded.Key))
	}
	if string(decoded.Value) != string(msg.Value) {
		t.Fatalf("expected original value preserved, got %q", string(decoded.Value))
	}
	if decoded.Topic != msg.Topic || decoded.Partition != msg.Partition || decoded.Offset != msg.Offset {
		t.Fatal("topic/partition/offset mismatch after round trip")
	}
	if !decoded.Timestamp.Equal(timestamp) {
		t.Fatalf("expected timestamp %v, got %v", timestamp, decoded.Timestamp)
	}
	if decoded.Headers["campaign_id"] != "5" {
		t.Fatalf("expected campaign_id header preserved, got %q", decoded.Headers["campaign_id"])
	}
	if failure != "synthesis failed" {
		t.Fatalf("expected recorded failure, got %q", failure)
	}
}

func TestEncodeDLQMessageWithoutKey(t *testing.T) {
	msg := Message{
		Topic: "discovered-posts",
		Value: []byte("not-json"),
	}

	payloadBytes, err := EncodeDLQMessage(msg, nil, "reply-generator")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, failure, err := DecodeDLQMessage(payloadBytes)
	if err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if decoded.Key != nil {
		t.Fatalf("expected nil key, got %q", string(decoded.Key))
	}
	if failure != "" {
		t.Fatalf("expected empty failure, got %q", failure)
	}
}

func TestDecodeDLQMessageRejectsGarbage(t *testing.T) {
	if _, _, err := DecodeDLQMessage([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
