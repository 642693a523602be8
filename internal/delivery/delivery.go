// Package delivery defines the transport surfaces the process serves.
package delivery

import "context"

// Delivery is a long-running server started by the fx lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
