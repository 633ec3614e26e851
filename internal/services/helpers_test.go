package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"playdate-backend/internal/lock"
	"playdate-backend/internal/models"
	"playdate-backend/internal/push"
	"playdate-backend/internal/repository"
	"playdate-backend/internal/repository/memory"
	"playdate-backend/internal/scoring"

	"github.com/stretchr/testify/require"
)

type sentPush struct {
	Token string
	push.Notification
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentPush
	err  error
}

func (r *recordingSender) Send(ctx context.Context, deviceToken string, n push.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sentPush{Token: deviceToken, Notification: n})
	return nil
}

func (r *recordingSender) titlesFor(token string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var titles []string
	for _, s := range r.sent {
		if s.Token == token {
			titles = append(titles, s.Title)
		}
	}
	return titles
}

// stepClock advances one second on every reading
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type testEnv struct {
	store    *repository.Store
	sender   *recordingSender
	notifier *Notifier
	locker   *lock.LocalLocker
	chats    *ChatService
	matches  *MatchRequestService
	meetups  *MeetupService
	reviews  *ReviewService
	dogs     *DogService
	ranking  *RankingService
	clock    *stepClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	sender := &recordingSender{}
	notifier := NewNotifier(store.Users, sender, nil)
	locker := lock.NewLocalLocker()
	clock := &stepClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	chats := NewChatService(store.Chats, store.Dogs, store.MatchRequests, notifier)
	chats.now = clock.Now
	matches := NewMatchRequestService(store.MatchRequests, store.Dogs, chats, notifier, locker, time.Minute)
	matches.now = clock.Now
	meetups := NewMeetupService(store.Meetups, store.Dogs, store.Users, chats, notifier)
	meetups.now = clock.Now
	reviews := NewReviewService(store.Reviews, store.Meetups, store.Users, store.Dogs, locker, time.Minute)
	reviews.now = clock.Now
	ranking := NewRankingService(store.Dogs, NewExclusionResolver(store.MatchRequests), scoring.DefaultConfig())
	ranking.now = clock.Now

	t.Cleanup(notifier.Wait)

	return &testEnv{
		store:    store,
		sender:   sender,
		notifier: notifier,
		locker:   locker,
		chats:    chats,
		matches:  matches,
		meetups:  meetups,
		reviews:  reviews,
		dogs:     NewDogService(store.Dogs),
		ranking:  ranking,
		clock:    clock,
	}
}

func (e *testEnv) addUser(t *testing.T, id, name string) *models.User {
	t.Helper()
	token := "token-" + id
	u := &models.User{ID: id, Name: name, PushToken: &token}
	require.NoError(t, e.store.Users.Create(context.Background(), u))
	return u
}

func (e *testEnv) addDog(t *testing.T, d models.Dog) *models.Dog {
	t.Helper()
	if d.Mode == "" {
		d.Mode = models.DogModeSocial
	}
	require.NoError(t, e.store.Dogs.Create(context.Background(), &d))
	return &d
}

// pair seeds two owners with one dog each and returns the dogs
func (e *testEnv) pair(t *testing.T, modeA, modeB models.DogMode) (*models.Dog, *models.Dog) {
	t.Helper()
	e.addUser(t, "user-a", "Alice")
	e.addUser(t, "user-b", "Bob")
	a := e.addDog(t, models.Dog{ID: "dog-x", OwnerID: "user-a", Name: "Rex", Gender: models.GenderMale, Mode: modeA})
	b := e.addDog(t, models.Dog{ID: "dog-y", OwnerID: "user-b", Name: "Luna", Gender: models.GenderFemale, Mode: modeB,
		ImageURLs: []string{"https://img.example/luna.jpg"}})
	return a, b
}

// match creates and accepts a request between the seeded pair
func (e *testEnv) match(t *testing.T) *models.ChatRoom {
	t.Helper()
	ctx := context.Background()
	req, err := e.matches.Create(ctx, CreateMatchRequestInput{
		FromUserID: "user-a", FromDogID: "dog-x", ToUserID: "user-b", ToDogID: "dog-y",
	})
	require.NoError(t, err)
	res, err := e.matches.UpdateStatus(ctx, req.ID, models.MatchStatusAccepted, "user-b")
	require.NoError(t, err)
	room, err := e.store.Chats.GetRoom(ctx, res.ChatRoomID)
	require.NoError(t, err)
	return room
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	var se *Error
	require.True(t, errors.As(err, &se), "expected a classified error, got %v", err)
	require.Equal(t, kind, se.Kind, "unexpected kind for %v", err)
}
