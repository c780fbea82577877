package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type EmailMessage struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

type EmailProducer struct {
	writer messageWriter
}

func NewEmailProducer(brokers []string, topic string) *EmailProducer {
	return &EmailProducer{writer: newWriter(brokers, topic)}
}

func (p *EmailProducer) SendEmail(ctx context.Context, key string, msg EmailMessage) error {
	return writeJSON(ctx, p.writer, key, msg, nil)
}

func (p *EmailProducer) Close() error {
	return p.writer.Close()
}

func writeJSON(ctx context.Context, w messageWriter, key string, v any, headers []kafka.Header) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	})
}
