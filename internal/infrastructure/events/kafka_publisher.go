package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"mis_invoicing/internal/usecase/interfaces"

	"github.com/IBM/sarama"
)

// KafkaPublisher sends invoice status events to a Kafka topic, keyed by
// invoice ID so the events of one invoice stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ interfaces.IInvoiceEventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	var producer sarama.SyncProducer
	var err error
	for i := 1; i <= 10; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			log.Printf("[events][kafka] producer initialized brokers=%v topic=%s", brokers, topic)
			return &KafkaPublisher{producer: producer, topic: topic}, nil
		}
		log.Printf("[events][kafka] waiting for kafka (%d/10) err=%v", i, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to start kafka producer after retries: %w", err)
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishInvoiceStatusChanged(_ context.Context, event interfaces.InvoiceStatusChanged) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.InvoiceID),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return err
	}
	log.Printf("[events][kafka] published invoice_id=%s to=%s partition=%d offset=%d", event.InvoiceID, event.To, partition, offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
