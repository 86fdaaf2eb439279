package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
)

// PushProducer implements the real-time push sink and the lifecycle event
// stream on top of one sarama sync producer. Push events go to the push topic
// keyed by the logical per-user topic ("notifications/<userId>"), lifecycle
// events to the events topic keyed by order id.
type PushProducer struct {
	producer    sarama.SyncProducer
	pushTopic   string
	eventsTopic string
}

func NewPushProducer(producer sarama.SyncProducer, pushTopic, eventsTopic string) *PushProducer {
	return &PushProducer{producer: producer, pushTopic: pushTopic, eventsTopic: eventsTopic}
}

func (p *PushProducer) Publish(_ context.Context, topic string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.pushTopic,
		Key:   sarama.StringEncoder(topic),
		Value: sarama.ByteEncoder(raw),
	})
	return err
}

func (p *PushProducer) StatusChanged(_ context.Context, msg usecase.OrderStatusChangedMsg) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.eventsTopic,
		Key:   sarama.StringEncoder(msg.OrderID),
		Value: sarama.ByteEncoder(raw),
	})
	return err
}

var (
	_ usecase.PushSink    = (*PushProducer)(nil)
	_ usecase.EventStream = (*PushProducer)(nil)
)
