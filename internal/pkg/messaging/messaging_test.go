package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDriver(t *testing.T) {
	ctx := context.Background()

	p, err := NewFromDriver(ctx, "", FactoryOptions{})
	require.NoError(t, err)
	res, err := p.Publish(ctx, "emailauth.events", OutgoingMessage{Body: []byte("{}")})
	require.NoError(t, err)
	assert.Equal(t, "emailauth.events", res.Topic)
	assert.NoError(t, p.Close())

	_, err = NewFromDriver(ctx, "rabbitmq", FactoryOptions{})
	assert.ErrorContains(t, err, "unknown driver")

	_, err = NewFromDriver(ctx, DriverKafka, FactoryOptions{})
	assert.ErrorIs(t, err, ErrKafkaBrokersRequired)

	_, err = NewFromDriver(ctx, DriverNATS, FactoryOptions{})
	assert.ErrorIs(t, err, ErrNATSURLRequired)

	_, err = NewFromDriver(ctx, DriverNSQ, FactoryOptions{})
	assert.ErrorIs(t, err, ErrNSQAddrRequired)

	_, err = NewFromDriver(ctx, DriverGooglePubSub, FactoryOptions{})
	assert.ErrorIs(t, err, ErrPubSubProjectIDRequired)
}

func TestKafka_PublishValidation(t *testing.T) {
	k, err := NewKafka(KafkaConfig{Brokers: []string{"127.0.0.1:1"}})
	require.NoError(t, err)

	_, err = k.Publish(context.Background(), "", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrDestinationRequired)

	require.NoError(t, k.Close())
	_, err = k.Publish(context.Background(), "events", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestHeaderMap(t *testing.T) {
	assert.Nil(t, headerMap(nil))
	assert.Equal(t,
		map[string]string{"cID": "c1"},
		headerMap([]Header{{Key: "cID", Value: []byte("c1")}, {Key: "", Value: []byte("x")}}),
	)
}
