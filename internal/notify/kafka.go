package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher forwards collection changes to a topic for downstream
// analytics. Delivery is best effort: a broker outage must never stall or
// fail a cart mutation, so writes happen on their own goroutine and
// failures are only logged.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(change Change) {
	data, err := json.Marshal(change)
	if err != nil {
		log.Printf("[Notify] Failed to encode change: %v", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(change.Collection),
			Value: data,
			Time:  change.At,
		})
		if err != nil {
			log.Printf("[Notify] Failed to publish %s change: %v", change.Collection, err)
		}
	}()
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
