package push

import (
	"context"
	"testing"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAPNsNotification(t *testing.T) {
	n := Notification{
		Title: "New Message from Rex",
		Body:  "hi",
		Data:  map[string]string{"chatRoomId": "a_b", "aps": "ignored"},
	}

	got := buildAPNsNotification("device-1", "com.example.playdate", n)
	assert.Equal(t, "device-1", got.DeviceToken)
	assert.Equal(t, "com.example.playdate", got.Topic)
	assert.Equal(t, apns2.PriorityHigh, got.Priority)

	payload, ok := got.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "a_b", payload["chatRoomId"])

	aps, ok := payload["aps"].(map[string]interface{})
	require.True(t, ok, "custom data must not clobber aps")
	alert := aps["alert"].(map[string]interface{})
	assert.Equal(t, "New Message from Rex", alert["title"])
	assert.Equal(t, "hi", alert["body"])
}

func TestBuildFCMMessage(t *testing.T) {
	msg := buildFCMMessage("device-2", Notification{Title: "t", Body: "b", Data: map[string]string{"meetupId": "m1"}})

	assert.Equal(t, "device-2", msg.Token)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, "t", msg.Notification.Title)
	assert.Equal(t, "b", msg.Notification.Body)
	assert.Equal(t, "m1", msg.Data["meetupId"])
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), "tok", Notification{Title: "x"}))
}
