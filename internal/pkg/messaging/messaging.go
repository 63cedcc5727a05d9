// Package messaging publishes events to a broker chosen at startup: NATS,
// Kafka, NSQ or Google Pub/Sub. Consumers live outside this service.
package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrDestinationRequired is returned when the topic or subject is empty.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("messaging: publisher closed")
)

// Publisher sends messages to a topic, subject or equivalent.
type Publisher interface {
	io.Closer
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is a broker-neutral message.
type OutgoingMessage struct {
	Body []byte
	// Key selects the partition on Kafka. Other brokers ignore it.
	Key     []byte
	Headers []Header
}

// Header is one message header. Brokers without header support (NSQ) drop them.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries whatever the broker reports back.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

func headerMap(hs []Header) map[string]string {
	if len(hs) == 0 {
		return nil
	}
	m := make(map[string]string, len(hs))
	for _, h := range hs {
		if h.Key != "" {
			m[h.Key] = string(h.Value)
		}
	}
	return m
}
