package interfaces

import "context"

// Notifier announces finished publishes
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
