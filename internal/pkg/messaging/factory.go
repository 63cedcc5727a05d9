package messaging

import (
	"context"
	"fmt"
	"strings"
)

const (
	DriverNone         = "none"
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

// FactoryOptions groups the per-driver settings.
type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

// NewFromDriver builds the publisher named by driver. An empty driver or
// "none" returns a publisher that discards messages.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Publisher, error) {
	switch strings.TrimSpace(driver) {
	case "", DriverNone:
		return Discard{}, nil
	case DriverNSQ:
		return NewNSQ(opts.NSQ)
	case DriverKafka:
		return NewKafka(opts.Kafka)
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverGooglePubSub:
		return NewPubSub(ctx, opts.PubSub)
	default:
		return nil, fmt.Errorf("messaging: unknown driver %q", driver)
	}
}

// Discard drops every message.
type Discard struct{}

func (Discard) Publish(_ context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	return PublishResult{Topic: destination}, nil
}

func (Discard) Close() error { return nil }
