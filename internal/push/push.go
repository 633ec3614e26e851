// Package push delivers device notifications through FCM or APNs.
package push

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Notification is the provider-neutral payload
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Sender delivers a notification to one device token
type Sender interface {
	Send(ctx context.Context, deviceToken string, n Notification) error
}

// LogSender only logs notifications. Used when no provider is configured.
type LogSender struct{}

// Send logs the notification
func (LogSender) Send(ctx context.Context, deviceToken string, n Notification) error {
	log.Info().
		Str("device_token", deviceToken).
		Str("title", n.Title).
		Str("body", n.Body).
		Interface("data", n.Data).
		Msg("Push notification (log only)")
	return nil
}
