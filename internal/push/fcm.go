package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// FCMSender sends notifications through Firebase Cloud Messaging
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender creates a sender from an initialized Firebase app
func NewFCMSender(ctx context.Context, app *firebase.App) (*FCMSender, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}
	return &FCMSender{client: client}, nil
}

// Send delivers the notification to the device token
func (f *FCMSender) Send(ctx context.Context, deviceToken string, n Notification) error {
	if _, err := f.client.Send(ctx, buildFCMMessage(deviceToken, n)); err != nil {
		return fmt.Errorf("failed to send fcm message: %w", err)
	}
	return nil
}

func buildFCMMessage(deviceToken string, n Notification) *messaging.Message {
	return &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
