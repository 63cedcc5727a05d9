package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

// ErrNSQAddrRequired is returned when the nsqd address is missing.
var ErrNSQAddrRequired = errors.New("messaging: nsq producer address is required")

type NSQConfig struct {
	ProducerAddr string
	// Config overrides nsq.NewConfig().
	Config *nsq.Config
}

// NSQ publishes message bodies to nsqd. NSQ has no headers, so
// OutgoingMessage.Headers and Key are ignored.
type NSQ struct {
	producer *nsq.Producer
}

func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.ProducerAddr == "" {
		return nil, ErrNSQAddrRequired
	}

	ncfg := cfg.Config
	if ncfg == nil {
		ncfg = nsq.NewConfig()
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, ncfg)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{producer: p}, nil
}

func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	if err := n.producer.Publish(destination, msg.Body); err != nil {
		if errors.Is(err, nsq.ErrStopped) {
			return PublishResult{}, ErrClosed
		}
		return PublishResult{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

func (n *NSQ) Close() error {
	n.producer.Stop()
	return nil
}
