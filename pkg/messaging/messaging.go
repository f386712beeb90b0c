// Package messaging delivers outbound chat replies.
package messaging

import "context"

// Messenger sends one text message to a channel address.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}
