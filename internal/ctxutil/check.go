// Package ctxutil holds small context helpers shared by the store, history
// and CLI layers.
package ctxutil

import "context"

// Canceled returns ctx.Err(): nil while ctx is live, Canceled or
// DeadlineExceeded once it is done. Call it before starting a file or
// network operation that cannot observe ctx itself.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
