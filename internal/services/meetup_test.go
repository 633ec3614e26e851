package services

import (
	"context"
	"testing"
	"time"

	"playdate-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meetupInput(proposed time.Time) CreateMeetupInput {
	return CreateMeetupInput{
		SenderID:      "user-a",
		ReceiverID:    "user-b",
		SenderDogID:   "dog-x",
		ReceiverDogID: "dog-y",
		Draft: models.MeetupDraft{
			ProposedTime:       proposed,
			LocationName:       "Central Park",
			LocationCoordinate: models.Coordinate{Latitude: 40.78, Longitude: -73.96},
			Message:            "see you there",
		},
	}
}

func createMeetup(t *testing.T, env *testEnv, roomID string) *models.MeetupRequest {
	t.Helper()
	m, err := env.meetups.Create(context.Background(), roomID, meetupInput(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	return m
}

func TestMeetupCreate(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	room := env.match(t)

	m := createMeetup(t, env, room.ID)
	assert.Equal(t, models.MeetupStatusPending, m.Status)
	assert.Contains(t, m.ID, "meetup_"+room.ID+"_")
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)

	msgs, err := env.chats.GetMessages(ctx, room.ID, "user-a")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	last := msgs[1]
	assert.Equal(t, m.ID, last.ID)
	assert.Equal(t, models.MessageTypeMeetupRequest, last.Type())
	assert.Equal(t, m.ID, last.MeetupID())

	stored, err := env.chats.GetRoom(ctx, room.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, models.MessageTypeMeetupRequest, stored.LastMessage.MessageType)

	env.notifier.Wait()
	assert.Contains(t, env.sender.titlesFor("token-user-b"), "📨 New Meet-Up Request")

	// re-posting the request message is a no-op
	require.NoError(t, env.chats.PostMeetupRequest(ctx, m))
	msgs, err = env.chats.GetMessages(ctx, room.ID, "user-a")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestMeetupCreatePuppyModeBlocked(t *testing.T) {
	for _, modes := range [][2]models.DogMode{
		{models.DogModePuppy, models.DogModeSocial},
		{models.DogModeSocial, models.DogModePuppy},
	} {
		env := newTestEnv(t)
		env.pair(t, modes[0], modes[1])
		room := env.match(t)

		_, err := env.meetups.Create(context.Background(), room.ID, meetupInput(time.Now().Add(24*time.Hour)))
		assert.ErrorIs(t, err, ErrPuppyModeBlocked)

		list, err := env.meetups.ListByUser(context.Background(), "user-a", "", "")
		require.NoError(t, err)
		assert.Empty(t, list)
	}
}

func TestMeetupCreateGuards(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	room := env.match(t)
	when := time.Now().Add(time.Hour)

	in := meetupInput(time.Time{})
	_, err := env.meetups.Create(ctx, room.ID, in)
	requireKind(t, err, KindValidation)

	in = meetupInput(when)
	in.Draft.LocationName = ""
	_, err = env.meetups.Create(ctx, room.ID, in)
	requireKind(t, err, KindValidation)

	_, err = env.meetups.Create(ctx, "missing", meetupInput(when))
	assert.ErrorIs(t, err, ErrChatRoomNotFound)

	in = meetupInput(when)
	in.SenderID = "intruder"
	_, err = env.meetups.Create(ctx, room.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)

	in = meetupInput(when)
	in.ReceiverDogID = "dog-other"
	_, err = env.meetups.Create(ctx, room.ID, in)
	requireKind(t, err, KindValidation)

	in = meetupInput(when)
	in.SenderDogID, in.ReceiverDogID = "dog-y", "dog-x"
	_, err = env.meetups.Create(ctx, room.ID, in)
	assert.ErrorIs(t, err, ErrNotDogOwner)

	list, err := env.meetups.ListByUser(ctx, "user-a", "", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMeetupAccept(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	room := env.match(t)
	m := createMeetup(t, env, room.ID)

	_, err := env.meetups.UpdateStatus(ctx, room.ID, m.ID, models.MeetupStatusAccepted, "user-a")
	assert.ErrorIs(t, err, ErrForbidden, "only the receiver answers")

	_, err = env.meetups.UpdateStatus(ctx, room.ID, m.ID, models.MeetupStatusCompleted, "user-b")
	requireKind(t, err, KindValidation)

	updated, err := env.meetups.UpdateStatus(ctx, room.ID, m.ID, models.MeetupStatusAccepted, "user-b")
	require.NoError(t, err)
	assert.Equal(t, models.MeetupStatusAccepted, updated.Status)
	assert.True(t, updated.UpdatedAt.After(m.CreatedAt))

	msg, err := env.store.Chats.LatestMessageForMeetup(ctx, room.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "✅ Meet-Up Accepted", msg.Text())

	stored, err := env.chats.GetRoom(ctx, room.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "✅ Meet-Up Accepted", stored.LastMessage.Text)
	assert.Equal(t, models.MessageTypeSystem, stored.LastMessage.MessageType)

	env.notifier.Wait()
	assert.Contains(t, env.sender.titlesFor("token-user-a"), "✅ Meet-Up Accepted")

	_, err = env.meetups.UpdateStatus(ctx, room.ID, m.ID, models.MeetupStatusRejected, "user-b")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestMeetupRejectDoesNotNotifySender(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	room := env.match(t)
	m := createMeetup(t, env, room.ID)

	_, err := env.meetups.UpdateStatus(ctx, room.ID, m.ID, models.MeetupStatusRejected, "user-b")
	require.NoError(t, err)

	msg, err := env.store.Chats.LatestMessageForMeetup(ctx, room.ID, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "❌ Meet-Up Rejected", msg.Text())

	env.notifier.Wait()
	assert.NotContains(t, env.sender.titlesFor("token-user-a"), "❌ Meet-Up Rejected")
	assert.NotContains(t, env.sender.titlesFor("token-user-a"), "✅ Meet-Up Accepted")
}

func TestMeetupCancelAndComplete(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	room := env.match(t)

	pending := createMeetup(t, env, room.ID)
	_, err := env.meetups.Cancel(ctx, room.ID, pending.ID, "user-a")
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending meet-ups cannot be cancelled")

	_, err = env.meetups.Cancel(ctx, room.ID, pending.ID, "intruder")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.meetups.Cancel(ctx, room.ID, "missing", "user-a")
	assert.ErrorIs(t, err, ErrMeetupNotFound)

	_, err = env.meetups.Cancel(ctx, "other-room", pending.ID, "user-a")
	assert.ErrorIs(t, err, ErrMeetupNotFound)

	_, err = env.meetups.UpdateStatus(ctx, room.ID, pending.ID, models.MeetupStatusAccepted, "user-b")
	require.NoError(t, err)
	cancelled, err := env.meetups.Cancel(ctx, room.ID, pending.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, models.MeetupStatusCancelled, cancelled.Status)

	stored, err := env.chats.GetRoom(ctx, room.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "❌ Meet-Up Cancelled", stored.LastMessage.Text)

	second := createMeetup(t, env, room.ID)
	_, err = env.meetups.UpdateStatus(ctx, room.ID, second.ID, models.MeetupStatusAccepted, "user-b")
	require.NoError(t, err)
	completed, err := env.meetups.Complete(ctx, room.ID, second.ID, "user-b")
	require.NoError(t, err)
	assert.Equal(t, models.MeetupStatusCompleted, completed.Status)

	stored, err = env.chats.GetRoom(ctx, room.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "✅ Meet-Up Completed", stored.LastMessage.Text)

	msgs, err := env.chats.GetMessages(ctx, room.ID, "user-a")
	require.NoError(t, err)
	last := msgs[len(msgs)-1]
	assert.Equal(t, models.MessageTypeSystem, last.Type())
	assert.Equal(t, second.ID, last.MeetupID())
	assert.Contains(t, last.Text(), "leave a review")

	env.notifier.Wait()
	assert.Contains(t, env.sender.titlesFor("token-user-b"), "❌ Meet-Up Cancelled")
	assert.Contains(t, env.sender.titlesFor("token-user-a"), "✅ Meet-Up Completed")
}

func TestMeetupTerminalStatesAreFinal(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	room := env.match(t)

	rejected := createMeetup(t, env, room.ID)
	_, err := env.meetups.UpdateStatus(ctx, room.ID, rejected.ID, models.MeetupStatusRejected, "user-b")
	require.NoError(t, err)

	done := createMeetup(t, env, room.ID)
	_, err = env.meetups.UpdateStatus(ctx, room.ID, done.ID, models.MeetupStatusAccepted, "user-b")
	require.NoError(t, err)
	_, err = env.meetups.Complete(ctx, room.ID, done.ID, "user-a")
	require.NoError(t, err)

	for _, id := range []string{rejected.ID, done.ID} {
		_, err = env.meetups.UpdateStatus(ctx, room.ID, id, models.MeetupStatusAccepted, "user-b")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = env.meetups.UpdateStatus(ctx, room.ID, id, models.MeetupStatusRejected, "user-b")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = env.meetups.Cancel(ctx, room.ID, id, "user-a")
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = env.meetups.Complete(ctx, room.ID, id, "user-a")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}

	m, err := env.store.Meetups.GetByID(ctx, rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetupStatusRejected, m.Status)
	m, err = env.store.Meetups.GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MeetupStatusCompleted, m.Status)
}

func TestMeetupListByUser(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	room := env.match(t)

	late, err := env.meetups.Create(ctx, room.ID, meetupInput(time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	early, err := env.meetups.Create(ctx, room.ID, meetupInput(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = env.meetups.UpdateStatus(ctx, room.ID, early.ID, models.MeetupStatusAccepted, "user-b")
	require.NoError(t, err)

	all, err := env.meetups.ListByUser(ctx, "user-a", "", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, early.ID, all[0].ID)
	assert.Equal(t, late.ID, all[1].ID)
	assert.Equal(t, models.MeetupDirectionOutgoing, all[0].Direction)
	assert.Equal(t, "Bob", all[0].OtherUserName)
	assert.Equal(t, "Luna", all[0].OtherDogName)
	assert.Equal(t, "https://img.example/luna.jpg", all[0].OtherDogImageURL)

	incoming, err := env.meetups.ListByUser(ctx, "user-b", models.MeetupDirectionIncoming, "")
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	assert.Equal(t, "Alice", incoming[0].OtherUserName)
	assert.Equal(t, "Rex", incoming[0].OtherDogName)
	assert.Empty(t, incoming[0].OtherDogImageURL)

	outgoing, err := env.meetups.ListByUser(ctx, "user-b", models.MeetupDirectionOutgoing, "")
	require.NoError(t, err)
	assert.Empty(t, outgoing)

	accepted, err := env.meetups.ListByUser(ctx, "user-a", "", models.MeetupStatusAccepted)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, early.ID, accepted[0].ID)

	_, err = env.meetups.ListByUser(ctx, "user-a", "sideways", "")
	requireKind(t, err, KindValidation)
	_, err = env.meetups.ListByUser(ctx, "user-a", "", "maybe")
	requireKind(t, err, KindValidation)
}

func TestMeetupSummaryFallbacks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.store.Meetups.Create(ctx, &models.MeetupRequest{
		ID:            "meetup_orphan",
		ChatRoomID:    "room",
		SenderID:      "user-a",
		SenderDogID:   "dog-x",
		ReceiverID:    "ghost",
		ReceiverDogID: "ghost-dog",
		Status:        models.MeetupStatusPending,
	}))

	list, err := env.meetups.ListByUser(ctx, "user-a", "", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Unknown", list[0].OtherUserName)
	assert.Equal(t, "Dog", list[0].OtherDogName)
	assert.Empty(t, list[0].OtherDogImageURL)
}
