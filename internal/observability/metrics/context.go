package metrics

import "context"

type operationKey struct{}

// DefaultOperation labels provider calls made without an operation in context.
const DefaultOperation = "complete"

// WithOperation tags ctx with the pipeline operation (extract, structure, label)
// so provider adapters can label their request metrics.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey{}, operation)
}

// Operation returns the operation stored by WithOperation, or DefaultOperation.
func Operation(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return DefaultOperation
}
