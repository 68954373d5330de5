package http

import (
	"encoding/json"
	"log"
	"megaplatform/auth"
	"megaplatform/chat"
	"megaplatform/feed"
	"megaplatform/games"
	"megaplatform/store"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

type Handlers struct {
	authService *auth.Service
	feed        *feed.Service
	chat        *chat.Service
	games       *games.Service
	store       store.Store
}

func NewHandlers(authService *auth.Service, feedService *feed.Service, chatService *chat.Service, gamesService *games.Service, store store.Store) *Handlers {
	return &Handlers{
		authService: authService,
		feed:        feedService,
		chat:        chatService,
		games:       gamesService,
		store:       store,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// Auth handlers

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Bio      string `json:"bio"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.Register(req.Username, req.Password, req.Bio); err != nil {
		switch err {
		case auth.ErrMissingFields, auth.ErrUserExists:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Register error: %v", err)
			http.Error(w, "Registration failed", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sessionID, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		} else {
			log.Printf("Login error: %v", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
		}
		return
	}

	if err := h.authService.GetSessionManager().SetSessionCookie(w, sessionID); err != nil {
		log.Printf("Login: failed to set session cookie for %s: %v", req.Username, err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	log.Printf("Login successful for user %s", req.Username)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Login successful",
		"username": req.Username,
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := h.authService.GetSessionManager().SessionFromRequest(r)
	if sessionID != "" {
		h.authService.Logout(sessionID)
		h.authService.GetSessionManager().ClearSessionCookie(w)
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Stats is public: the login page shows community totals.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.CountUsers()
	if err != nil {
		log.Printf("Stats error: %v", err)
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}
	posts, err := h.store.CountPosts()
	if err != nil {
		log.Printf("Stats error: %v", err)
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"users": users,
		"posts": posts,
	})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.Profile(username)
	if err != nil {
		log.Printf("Me error: %v", err)
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"username":  user.Username,
		"bio":       user.Bio,
		"createdAt": user.CreatedAt,
	})
}

// Feed handlers

type postView struct {
	User    string `json:"user"`
	Content string `json:"content"`
	Type    string `json:"type"`
	Time    string `json:"time"`
	TimeAgo string `json:"timeAgo"`
}

func (h *Handlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.feed.Recent()
	if err != nil {
		log.Printf("GetFeed error: %v", err)
		http.Error(w, "Failed to load feed", http.StatusInternalServerError)
		return
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView{
			User:    p.User,
			Content: p.Content,
			Type:    p.Type,
			Time:    p.Time,
			TimeAgo: timeAgo(p.Time),
		})
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Content string `json:"content"`
		Type    string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.feed.CreatePost(username, req.Content, req.Type); err != nil {
		if err == feed.ErrEmptyContent {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("CreatePost error: %v", err)
		http.Error(w, "Failed to create post", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Post published"})
}

// Chat handlers

type messageView struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
	Time    string `json:"time"`
	Mine    bool   `json:"mine"`
}

func (h *Handlers) GetChat(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	messages, err := h.chat.Recent()
	if err != nil {
		log.Printf("GetChat error: %v", err)
		http.Error(w, "Failed to load messages", http.StatusInternalServerError)
		return
	}

	views := make([]messageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, messageView{
			Sender:  m.Sender,
			Content: m.Content,
			Time:    m.Time,
			Mine:    m.Sender == username,
		})
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *Handlers) SendChat(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.chat.Send(username, req.Content); err != nil {
		if err == chat.ErrEmptyContent {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("SendChat error: %v", err)
		http.Error(w, "Failed to send message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Message sent"})
}

// Game handlers

func (h *Handlers) PlayGuess(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Guess int `json:"guess"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.games.PlayGuess(username, req.Guess)
	if err != nil {
		if err == games.ErrGuessOutOfRange {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("PlayGuess error: %v", err)
		http.Error(w, "Failed to play game", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetTrivia(w http.ResponseWriter, r *http.Request) {
	id, question := h.games.RandomQuestion()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"questionId": id,
		"question":   question,
	})
}

func (h *Handlers) AnswerTrivia(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		QuestionID int    `json:"questionId"`
		Answer     string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.games.AnswerTrivia(username, req.QuestionID, req.Answer)
	if err != nil {
		if err == games.ErrUnknownQuestion {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("AnswerTrivia error: %v", err)
		http.Error(w, "Failed to check answer", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.games.Leaderboard()
	if err != nil {
		log.Printf("GetLeaderboard error: %v", err)
		http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
		return
	}

	type entryView struct {
		User  string `json:"user"`
		Total int    `json:"total"`
	}
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{User: e.User, Total: e.Total})
	}

	writeJSON(w, http.StatusOK, views)
}

// Profile & settings handlers

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.Profile(username)
	if err != nil {
		log.Printf("GetProfile error: %v", err)
		http.Error(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	postCount, err := h.store.CountPostsByUser(username)
	if err != nil {
		log.Printf("GetProfile error: %v", err)
		http.Error(w, "Failed to get profile stats", http.StatusInternalServerError)
		return
	}
	totalScore, err := h.store.TotalScoreByUser(username)
	if err != nil {
		log.Printf("GetProfile error: %v", err)
		http.Error(w, "Failed to get profile stats", http.StatusInternalServerError)
		return
	}
	messageCount, err := h.store.CountMessagesBySender(username)
	if err != nil {
		log.Printf("GetProfile error: %v", err)
		http.Error(w, "Failed to get profile stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username":     user.Username,
		"bio":          user.Bio,
		"createdAt":    user.CreatedAt,
		"postCount":    postCount,
		"totalScore":   totalScore,
		"messageCount": messageCount,
	})
}

func (h *Handlers) UpdateBio(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Bio string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.UpdateBio(username, req.Bio); err != nil {
		log.Printf("UpdateBio error: %v", err)
		http.Error(w, "Failed to update bio", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Bio updated"})
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username, ok := GetUsernameFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Current string `json:"current"`
		New     string `json:"new"`
		Confirm string `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.ChangePassword(username, req.Current, req.New, req.Confirm); err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case auth.ErrPasswordMismatch, auth.ErrMissingFields:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("ChangePassword error: %v", err)
			http.Error(w, "Failed to change password", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

// timeAgo renders a stored timestamp as a relative phrase; timestamps that
// predate the full layout (or fail to parse) come back verbatim.
func timeAgo(stored string) string {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", stored, time.Local)
	if err != nil {
		return stored
	}
	return humanize.Time(t)
}
