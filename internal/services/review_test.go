package services

import (
	"context"
	"testing"

	"playdate-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completedMeetup returns a meet-up between user-a and user-b that both can review
func completedMeetup(t *testing.T, env *testEnv) *models.MeetupRequest {
	t.Helper()
	ctx := context.Background()
	room := env.match(t)
	m := createMeetup(t, env, room.ID)
	_, err := env.meetups.UpdateStatus(ctx, room.ID, m.ID, models.MeetupStatusAccepted, "user-b")
	require.NoError(t, err)
	m, err = env.meetups.Complete(ctx, room.ID, m.ID, "user-a")
	require.NoError(t, err)
	return m
}

func TestReviewSubmit(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	m := completedMeetup(t, env)

	review, err := env.reviews.Submit(ctx, SubmitReviewInput{
		MeetupID: m.ID, ReviewerID: "user-a", RevieweeID: "user-b", Rating: 4, Comment: "lovely",
	})
	require.NoError(t, err)
	assert.Equal(t, "review_"+m.ID+"_user-a", review.ID)

	stats, err := env.reviews.Stats(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, 4.0, stats.AverageRating)
	assert.Equal(t, 1, stats.ReviewCount)

	_, err = env.reviews.Submit(ctx, SubmitReviewInput{
		MeetupID: m.ID, ReviewerID: "user-a", RevieweeID: "user-b", Rating: 1,
	})
	assert.ErrorIs(t, err, ErrDuplicateReview)

	stats, err = env.reviews.Stats(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, 4.0, stats.AverageRating, "the duplicate must not contribute")
	assert.Equal(t, 1, stats.ReviewCount)

	// the other participant may still review
	_, err = env.reviews.Submit(ctx, SubmitReviewInput{
		MeetupID: m.ID, ReviewerID: "user-b", RevieweeID: "user-a", Rating: 5,
	})
	require.NoError(t, err)
}

func TestReviewSubmitGuards(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	room := env.match(t)
	pending := createMeetup(t, env, room.ID)

	tests := []struct {
		name string
		in   SubmitReviewInput
		want error
		kind Kind
	}{
		{
			name: "self review",
			in:   SubmitReviewInput{MeetupID: pending.ID, ReviewerID: "user-a", RevieweeID: "user-a", Rating: 5},
			want: ErrSelfReview,
		},
		{
			name: "rating out of range",
			in:   SubmitReviewInput{MeetupID: pending.ID, ReviewerID: "user-a", RevieweeID: "user-b", Rating: 6},
			kind: KindValidation,
		},
		{
			name: "unknown meetup",
			in:   SubmitReviewInput{MeetupID: "missing", ReviewerID: "user-a", RevieweeID: "user-b", Rating: 5},
			want: ErrMeetupNotFound,
		},
		{
			name: "not completed",
			in:   SubmitReviewInput{MeetupID: pending.ID, ReviewerID: "user-a", RevieweeID: "user-b", Rating: 5},
			want: ErrMeetupNotCompleted,
		},
		{
			name: "outsider",
			in:   SubmitReviewInput{MeetupID: pending.ID, ReviewerID: "user-c", RevieweeID: "user-b", Rating: 5},
			want: ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.reviews.Submit(ctx, tt.in)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			requireKind(t, err, tt.kind)
		})
	}
}

func TestReviewStatsAverageAcrossMeetups(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	first := completedMeetup(t, env)

	room, err := env.chats.GetRoom(ctx, first.ChatRoomID, "user-a")
	require.NoError(t, err)
	second := createMeetup(t, env, room.ID)
	_, err = env.meetups.UpdateStatus(ctx, room.ID, second.ID, models.MeetupStatusAccepted, "user-b")
	require.NoError(t, err)
	_, err = env.meetups.Complete(ctx, room.ID, second.ID, "user-b")
	require.NoError(t, err)
	third := createMeetup(t, env, room.ID)
	_, err = env.meetups.UpdateStatus(ctx, room.ID, third.ID, models.MeetupStatusAccepted, "user-b")
	require.NoError(t, err)
	_, err = env.meetups.Complete(ctx, room.ID, third.ID, "user-b")
	require.NoError(t, err)

	for i, rating := range []int{5, 4, 4} {
		id := []string{first.ID, second.ID, third.ID}[i]
		_, err := env.reviews.Submit(ctx, SubmitReviewInput{
			MeetupID: id, ReviewerID: "user-a", RevieweeID: "user-b", Rating: rating,
		})
		require.NoError(t, err)
	}

	stats, err := env.reviews.Stats(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, 4.33, stats.AverageRating)
	assert.Equal(t, 3, stats.ReviewCount)

	_, err = env.reviews.Stats(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, models.ReviewStats{}, AverageRating(nil))
	assert.Equal(t, models.ReviewStats{AverageRating: 3.67, ReviewCount: 3},
		AverageRating([]models.Review{{Rating: 5}, {Rating: 5}, {Rating: 1}}))
	assert.Equal(t, models.ReviewStats{AverageRating: 2.5, ReviewCount: 2},
		AverageRating([]models.Review{{Rating: 2}, {Rating: 3}}))
}

func TestReviewListCards(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, models.DogModeSocial, models.DogModeSocial)
	ctx := context.Background()
	m := completedMeetup(t, env)

	_, err := env.reviews.Submit(ctx, SubmitReviewInput{
		MeetupID: m.ID, ReviewerID: "user-b", RevieweeID: "user-a", Rating: 5,
	})
	require.NoError(t, err)

	reviews, err := env.reviews.ListForUser(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	cards, err := env.reviews.ListCardsForUser(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Luna", cards[0].ReviewerDogName)
	assert.Equal(t, "https://img.example/luna.jpg", cards[0].ReviewerDogImage)
	assert.Equal(t, "Rex", cards[0].RevieweeDogName)
	assert.Empty(t, cards[0].RevieweeDogImage)

	empty, err := env.reviews.ListCardsForUser(ctx, "user-b")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
