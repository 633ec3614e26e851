package services

import (
	"context"
	"sync"
	"time"

	"playdate-backend/internal/push"
	"playdate-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const notifyTimeout = 10 * time.Second

// Notifier delivers best-effort notifications after a state change has been
// persisted. Delivery runs in the background and failures are only logged.
type Notifier struct {
	users  repository.UserRepository
	sender push.Sender
	hub    *WSHub
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier. hub may be nil.
func NewNotifier(users repository.UserRepository, sender push.Sender, hub *WSHub) *Notifier {
	return &Notifier{users: users, sender: sender, hub: hub}
}

// NotifyUser sends n to the user's device and open socket, if any
func (n *Notifier) NotifyUser(userID string, note push.Notification) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		n.deliver(ctx, userID, note)
	}()
}

func (n *Notifier) deliver(ctx context.Context, userID string, note push.Notification) {
	if n.hub != nil && n.hub.IsOnline(userID) {
		msg := WSMessage{
			Type:      "notification",
			Timestamp: time.Now().UnixMilli(),
			Message:   note.Title,
			Data:      note,
		}
		if err := n.hub.SendToUser(userID, msg); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to deliver in-app notification")
		}
	}

	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Skipping push notification, user lookup failed")
		return
	}
	if user.PushToken == nil || *user.PushToken == "" {
		log.Debug().Str("user_id", userID).Msg("Skipping push notification, no push token")
		return
	}

	if err := n.sender.Send(ctx, *user.PushToken, note); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("title", note.Title).
			Msg("Failed to send push notification")
		return
	}

	log.Debug().Str("user_id", userID).Str("title", note.Title).Msg("Push notification sent")
}

// Wait blocks until every pending delivery has finished
func (n *Notifier) Wait() {
	n.wg.Wait()
}
