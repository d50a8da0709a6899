package instrument

import "context"

const invalidCorrelationID = "[invalid_chain_id]"

type correlationKey struct{}

// SetCorrelationID stores the correlation id used to chain logs, spans and messages.
func SetCorrelationID(ctx context.Context, cID string) context.Context {
	return context.WithValue(ctx, correlationKey{}, cID)
}

// GetCorrelationID returns the correlation id from ctx or a placeholder when absent.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return invalidCorrelationID
	}
	cID, ok := ctx.Value(correlationKey{}).(string)
	if !ok || cID == "" {
		return invalidCorrelationID
	}
	return cID
}
