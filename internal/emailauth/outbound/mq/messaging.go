package mq

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/codes"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/instrument"
	"github.com/shandysiswandi/emailcode/internal/pkg/messaging"
)

const keyOfCorrelationID string = "cID"

// DefaultDestination is the topic login events go to when none is configured.
const DefaultDestination = "emailauth.login_events"

type Messaging struct {
	client      messaging.Publisher
	destination string
	ins         instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, destination string, ins instrument.Instrumentation) *Messaging {
	if destination == "" {
		destination = DefaultDestination
	}
	return &Messaging{client: client, destination: destination, ins: ins}
}

// PublishLoginEvent publishes ev as JSON keyed by session id, so events of
// one login stay ordered on partitioned brokers.
func (m *Messaging) PublishLoginEvent(ctx context.Context, ev entity.LoginEvent) error {
	ctx, span := m.ins.Tracer("emailauth.outbound.mq").Start(ctx, "PublishLoginEvent")
	defer span.End()

	body, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, m.destination, messaging.OutgoingMessage{
		Body: body,
		Key:  []byte(ev.SessionID),
		Headers: []messaging.Header{
			{Key: keyOfCorrelationID, Value: []byte(cID)},
			{Key: "type", Value: []byte(ev.Type)},
		},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
