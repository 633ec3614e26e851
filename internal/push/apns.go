package push

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/token"
)

// APNsConfig holds the token-based APNs credentials
type APNsConfig struct {
	KeyFile    string
	KeyID      string
	TeamID     string
	Topic      string
	Production bool
}

// APNsSender sends notifications straight to Apple
type APNsSender struct {
	client *apns2.Client
	topic  string
}

// NewAPNsSender creates a token-authenticated APNs sender
func NewAPNsSender(cfg APNsConfig) (*APNsSender, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load apns auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsSender{client: client, topic: cfg.Topic}, nil
}

// Send delivers the notification to the device token
func (a *APNsSender) Send(ctx context.Context, deviceToken string, n Notification) error {
	res, err := a.client.PushWithContext(ctx, buildAPNsNotification(deviceToken, a.topic, n))
	if err != nil {
		return fmt.Errorf("failed to push apns notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}

func buildAPNsNotification(deviceToken, topic string, n Notification) *apns2.Notification {
	payload := map[string]interface{}{
		"aps": map[string]interface{}{
			"alert": map[string]interface{}{
				"title": n.Title,
				"body":  n.Body,
			},
			"sound": "default",
		},
	}
	for k, v := range n.Data {
		if k == "aps" {
			continue
		}
		payload[k] = v
	}

	return &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       topic,
		Payload:     payload,
		Priority:    apns2.PriorityHigh,
	}
}
