package live

import "context"

type errorHandlerKey struct{}

// WithErrorHandler returns a context whose live queries report a failure
// that ends them to fn. The store is shared, so the handler travels with the
// caller's context rather than with the subscription.
func WithErrorHandler(ctx context.Context, fn func(error)) context.Context {
	return context.WithValue(ctx, errorHandlerKey{}, fn)
}

// ReportError hands err to the handler installed on ctx. It reports false
// when there is none or ctx is already done.
func ReportError(ctx context.Context, err error) bool {
	fn, ok := ctx.Value(errorHandlerKey{}).(func(error))
	if !ok || fn == nil || ctx.Err() != nil {
		return false
	}
	fn(err)
	return true
}
