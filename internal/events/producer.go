// Package events publishes rendered retrieval output to Kafka.
package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher sends one keyed message.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Producer publishes to a single topic.
type Producer struct {
	topic   string
	client  *kgo.Client
	timeout time.Duration
}

// NewProducer connects to brokers. The topic must exist or be auto-created
// by the cluster.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if topic == "" {
		return nil, errors.New("no kafka topic configured")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	log.Printf("INFO: kafka producer initialized for topic %s", topic)
	return &Producer{topic: topic, client: client, timeout: 10 * time.Second}, nil
}

func (p *Producer) Close() {
	p.client.Close()
}

// Publish blocks until the record is acknowledged or ctx ends.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rec := &kgo.Record{Topic: p.topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	log.Printf("DEBUG: published to %s: key=%s", p.topic, key)
	return nil
}
