package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Beliver-cell/Fantasy-luxe-store/internal/producer"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaEmailConsumer читает EmailMessage из топика писем и отправляет их через Sender.
type KafkaEmailConsumer struct {
	reader messageReader
	sender Sender
	log    *zap.Logger
}

func NewKafkaEmailConsumer(brokers []string, groupID, topic string, sender Sender, log *zap.Logger) *KafkaEmailConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &KafkaEmailConsumer{reader: r, sender: sender, log: log}
}

func (c *KafkaEmailConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		c.handle(m)
	}
}

func (c *KafkaEmailConsumer) handle(m kafka.Message) {
	var em producer.EmailMessage
	if err := json.Unmarshal(m.Value, &em); err != nil {
		c.log.Error("unmarshal email message", zap.ByteString("value", m.Value), zap.Error(err))
		return
	}
	if em.To == "" || em.Template == "" {
		c.log.Warn("invalid email message", zap.Any("msg", em))
		return
	}
	if err := c.sender.Send(Notification{To: em.To, Subject: em.Subject, Template: em.Template, Data: em.Data}); err != nil {
		c.log.Error("send email failed", zap.String("to", em.To), zap.String("template", em.Template), zap.Error(err))
		return
	}
	c.log.Info("email sent", zap.String("to", em.To), zap.String("template", em.Template), zap.ByteString("order_id", m.Key))
}

func (c *KafkaEmailConsumer) Close() error { return c.reader.Close() }
