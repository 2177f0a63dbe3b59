// Package notify delivers one-time codes to licence holders. The core treats
// delivery failure as a hard failure of the request-code phase; retry policy
// belongs to the gateway or an outer caller, never here.
package notify

import "context"

//go:generate mockgen -source=notify.go -destination=mocks/dispatcher.go -package=mocks Dispatcher

// Dispatcher sends a text message to a phone number.
type Dispatcher interface {
	Send(ctx context.Context, phone, message string) error
}
