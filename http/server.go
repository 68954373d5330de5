package http

import (
	"megaplatform/auth"
	"megaplatform/chat"
	"megaplatform/feed"
	"megaplatform/games"
	"megaplatform/store"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type Server struct {
	router   *mux.Router
	handlers *Handlers
}

func NewServer(authService *auth.Service, feedService *feed.Service, chatService *chat.Service, gamesService *games.Service, store store.Store) *Server {
	router := mux.NewRouter()
	handlers := NewHandlers(authService, feedService, chatService, gamesService, store)

	server := &Server{
		router:   router,
		handlers: handlers,
	}

	server.setupRoutes(authService)
	return server
}

func (s *Server) setupRoutes(authService *auth.Service) {
	// Apply global middleware
	s.router.Use(LoggingMiddleware)
	s.router.Use(SecurityHeadersMiddleware)
	s.router.Use(CORSMiddleware)

	// CSRF note: SameSite=Lax on the session cookie prevents cross-site POST
	// requests from including the cookie, providing CSRF protection for all
	// state-changing endpoints without needing a token-based scheme.

	// Public routes
	s.router.HandleFunc("/api/auth/register", s.handlers.Register).Methods("POST")
	s.router.HandleFunc("/api/auth/login", s.handlers.Login).Methods("POST")
	s.router.HandleFunc("/api/stats", s.handlers.Stats).Methods("GET")

	// Protected routes
	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(AuthMiddleware(authService))

	protected.HandleFunc("/auth/logout", s.handlers.Logout).Methods("POST")
	protected.HandleFunc("/me", s.handlers.Me).Methods("GET")

	protected.HandleFunc("/feed", s.handlers.GetFeed).Methods("GET")
	protected.HandleFunc("/feed", s.handlers.CreatePost).Methods("POST")

	protected.HandleFunc("/chat", s.handlers.GetChat).Methods("GET")
	protected.HandleFunc("/chat", s.handlers.SendChat).Methods("POST")

	protected.HandleFunc("/games/guess", s.handlers.PlayGuess).Methods("POST")
	protected.HandleFunc("/games/trivia", s.handlers.GetTrivia).Methods("GET")
	protected.HandleFunc("/games/trivia", s.handlers.AnswerTrivia).Methods("POST")
	protected.HandleFunc("/games/leaderboard", s.handlers.GetLeaderboard).Methods("GET")

	protected.HandleFunc("/profile", s.handlers.GetProfile).Methods("GET")
	protected.HandleFunc("/profile/bio", s.handlers.UpdateBio).Methods("PUT")
	protected.HandleFunc("/settings/password", s.handlers.ChangePassword).Methods("POST")

	// Catch-all for unmatched API routes — return JSON 404 instead of the page
	s.router.PathPrefix("/api/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	// The whole UI is one page; serve it for everything else
	s.router.PathPrefix("/").HandlerFunc(s.servePage)
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, "./static/index.html")
}

func (s *Server) GetHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
