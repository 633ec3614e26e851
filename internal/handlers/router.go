package handlers

import (
	"net/http"

	"playdate-backend/internal/auth"
	"playdate-backend/internal/middleware"
	"playdate-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps carries everything the HTTP layer needs
type Deps struct {
	Resolver      auth.Resolver
	Hub           *services.WSHub
	Users         *services.UserService
	Dogs          *services.DogService
	Ranking       *services.RankingService
	MatchRequests *services.MatchRequestService
	Chats         *services.ChatService
	Meetups       *services.MeetupService
	Reviews       *services.ReviewService
}

// NewRouter builds the application's route table
func NewRouter(d Deps) http.Handler {
	userHandler := NewUserHandler(d.Users)
	dogHandler := NewDogHandler(d.Dogs)
	scoringHandler := NewScoringHandler(d.Ranking, d.Dogs)
	matchHandler := NewMatchRequestHandler(d.MatchRequests, d.Dogs)
	chatHandler := NewChatHandler(d.Chats)
	meetupHandler := NewMeetupHandler(d.Meetups)
	reviewHandler := NewReviewHandler(d.Reviews)
	wsHandler := NewWebSocketHandler(d.Hub, d.Resolver)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// WebSocket authenticates through the query string
	r.Get("/ws", wsHandler.HandleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(d.Resolver))

		r.Get("/users/me", userHandler.GetMe)
		r.Put("/users/me/pushToken", userHandler.UpdatePushToken)

		r.Put("/dogs/{dogId}/vaccinations", dogHandler.UpdateVaccinations)
		r.Post("/dogs/{dogId}/modeSwitch", dogHandler.SwitchMode)

		r.Post("/matchScoring/score", scoringHandler.Score)

		r.Route("/matchRequest", func(r chi.Router) {
			r.Get("/", matchHandler.List)
			r.Post("/send", matchHandler.Send)
			r.Put("/{id}/status", matchHandler.UpdateStatus)
			r.Get("/{dogId}", matchHandler.ListForDog)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/createRoom", chatHandler.CreateRoom)
			r.Post("/sendMessage", chatHandler.SendMessage)
			r.Get("/rooms", chatHandler.GetRooms)
			r.Get("/rooms/{chatRoomId}", chatHandler.GetRoom)
			r.Get("/{chatRoomId}/messages", chatHandler.GetMessages)
		})

		r.Route("/meetups", func(r chi.Router) {
			r.Get("/user/{userId}", meetupHandler.ListByUser)
			r.Post("/{chatRoomId}/create", meetupHandler.Create)
			r.Put("/{chatRoomId}/{meetupId}/status", meetupHandler.UpdateStatus)
			r.Put("/{chatRoomId}/{meetupId}/complete", meetupHandler.Complete)
			r.Delete("/{chatRoomId}/{meetupId}", meetupHandler.Cancel)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/submit", reviewHandler.Submit)
			r.Get("/average/{userId}", reviewHandler.Average)
			r.Get("/user/{userId}", reviewHandler.ListForUser)
			r.Get("/user/{userId}/enhanced", reviewHandler.ListCardsForUser)
		})
	})

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
