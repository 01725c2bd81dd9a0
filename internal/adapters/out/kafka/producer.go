// Package kafka relays committed outbox messages to the notifications topic.
// The relay is at-least-once: a message is marked published only after the
// broker acknowledges it, so consumers must tolerate duplicates.
package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/adapters/out/postgres/outboxrepo"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// notificationEnvelope is the wire format published to the topic.
type notificationEnvelope struct {
	ID            uuid.UUID       `json:"id"`
	RecipientID   *uuid.UUID      `json:"recipient_id,omitempty"`
	RecipientRole string          `json:"recipient_role,omitempty"`
	Kind          string          `json:"kind"`
	Title         string          `json:"title"`
	Body          string          `json:"body"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Producer publishes notification messages to Kafka using a synchronous
// producer, so the caller knows the broker accepted each message before the
// outbox row is stamped.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects a synchronous producer to the given brokers.
// Idempotence keeps broker-side retries from duplicating messages.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &Producer{producer: producer, topic: topic}, nil
}

// Publish sends one outbox message to the notifications topic. The message
// key groups a recipient's notifications onto one partition, preserving
// their order.
func (p *Producer) Publish(message outboxrepo.OutboxMessageDTO) error {
	envelope := notificationEnvelope{
		ID:            message.ID,
		RecipientID:   message.RecipientID,
		RecipientRole: message.RecipientRole,
		Kind:          message.Kind,
		Title:         message.Title,
		Body:          message.Body,
		Payload:       message.Payload,
		CreatedAt:     message.CreatedAt,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := message.RecipientRole
	if message.RecipientID != nil {
		key = message.RecipientID.String()
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(value),
		Timestamp: message.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// Close shuts down the underlying producer.
func (p *Producer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
