package instrument

import (
	"context"

	"github.com/google/uuid"
)

type correlationKey struct{}

// invalidCorrelationID is returned when a context carries no correlation id.
const invalidCorrelationID = "[invalid_chain_id]"

// SetCorrelationID stores id on ctx. An empty id is replaced by a fresh UUID.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the id stored by SetCorrelationID.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return invalidCorrelationID
}
