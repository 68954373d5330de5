package http_test

import (
	"bytes"
	"encoding/json"
	"megaplatform/auth"
	"megaplatform/chat"
	"megaplatform/feed"
	"megaplatform/games"
	httpserver "megaplatform/http"
	"megaplatform/store"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("could not open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessionManager := auth.NewSessionManager("test-secret")
	authService := auth.NewService(db, sessionManager)
	server := httpserver.NewServer(authService, feed.NewService(db), chat.NewService(db), games.NewService(db), db)

	ts := httptest.NewServer(server.GetHTTPServer(":0").Handler)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("could not create cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	return ts, client
}

func postJSON(t *testing.T, client *http.Client, url string, body interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("could not marshal request: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
}

func register(t *testing.T, client *http.Client, baseURL, username, password string) {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/auth/register", map[string]string{
		"username": username,
		"password": password,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
}

func login(t *testing.T, client *http.Client, baseURL, username, password string) {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/api/feed")
	if err != nil {
		t.Fatalf("GET /api/feed failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", resp.StatusCode)
	}
}

func TestRegisterLoginAndFeedFlow(t *testing.T) {
	ts, client := newTestServer(t)

	register(t, client, ts.URL, "alice", "secret123")
	login(t, client, ts.URL, "alice", "secret123")

	resp := postJSON(t, client, ts.URL+"/api/feed", map[string]string{"content": "first post"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d", resp.StatusCode)
	}

	feedResp, err := client.Get(ts.URL + "/api/feed")
	if err != nil {
		t.Fatalf("GET /api/feed failed: %v", err)
	}
	var posts []struct {
		User    string `json:"user"`
		Content string `json:"content"`
		Type    string `json:"type"`
	}
	decodeJSON(t, feedResp, &posts)

	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if posts[0].User != "alice" || posts[0].Content != "first post" || posts[0].Type != "text" {
		t.Errorf("unexpected post: %+v", posts[0])
	}
}

func TestDuplicateRegistrationReportsConflict(t *testing.T) {
	ts, client := newTestServer(t)

	register(t, client, ts.URL, "alice", "secret123")

	resp := postJSON(t, client, ts.URL+"/api/auth/register", map[string]string{
		"username": "alice",
		"password": "other",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate username, got %d", resp.StatusCode)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts, client := newTestServer(t)

	register(t, client, ts.URL, "alice", "secret123")

	resp := postJSON(t, client, ts.URL+"/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
}

func TestChatMarksOwnMessages(t *testing.T) {
	ts, client := newTestServer(t)

	register(t, client, ts.URL, "alice", "secret123")
	login(t, client, ts.URL, "alice", "secret123")

	resp := postJSON(t, client, ts.URL+"/api/chat", map[string]string{"content": "hello room"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send chat: expected 201, got %d", resp.StatusCode)
	}

	chatResp, err := client.Get(ts.URL + "/api/chat")
	if err != nil {
		t.Fatalf("GET /api/chat failed: %v", err)
	}
	var messages []struct {
		Sender  string `json:"sender"`
		Content string `json:"content"`
		Mine    bool   `json:"mine"`
	}
	decodeJSON(t, chatResp, &messages)

	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if !messages[0].Mine || messages[0].Sender != "alice" {
		t.Errorf("own message not marked as mine: %+v", messages[0])
	}
}

func TestGuessEndpoint(t *testing.T) {
	ts, client := newTestServer(t)

	register(t, client, ts.URL, "alice", "secret123")
	login(t, client, ts.URL, "alice", "secret123")

	resp := postJSON(t, client, ts.URL+"/api/games/guess", map[string]int{"guess": 50})
	var result struct {
		Secret int `json:"secret"`
		Guess  int `json:"guess"`
		Score  int `json:"score"`
	}
	decodeJSON(t, resp, &result)

	if result.Guess != 50 {
		t.Errorf("expected guess echoed, got %d", result.Guess)
	}
	if result.Secret < 1 || result.Secret > 100 {
		t.Errorf("secret out of range: %d", result.Secret)
	}

	// Out-of-range guess is a client error
	bad := postJSON(t, client, ts.URL+"/api/games/guess", map[string]int{"guess": 500})
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range guess, got %d", bad.StatusCode)
	}
}

func TestTriviaRoundTrip(t *testing.T) {
	ts, client := newTestServer(t)

	register(t, client, ts.URL, "alice", "secret123")
	login(t, client, ts.URL, "alice", "secret123")

	qResp, err := client.Get(ts.URL + "/api/games/trivia")
	if err != nil {
		t.Fatalf("GET /api/games/trivia failed: %v", err)
	}
	var q struct {
		QuestionID int    `json:"questionId"`
		Question   string `json:"question"`
	}
	decodeJSON(t, qResp, &q)
	if q.Question == "" {
		t.Fatal("empty trivia question")
	}

	aResp := postJSON(t, client, ts.URL+"/api/games/trivia", map[string]interface{}{
		"questionId": q.QuestionID,
		"answer":     "definitely wrong answer",
	})
	var result struct {
		Correct  bool   `json:"correct"`
		Score    int    `json:"score"`
		Expected string `json:"expected"`
	}
	decodeJSON(t, aResp, &result)

	if result.Correct || result.Score != 0 {
		t.Errorf("expected incorrect result, got %+v", result)
	}
	if result.Expected == "" {
		t.Error("expected answer missing from response")
	}
}

func TestStatsIsPublic(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats failed: %v", err)
	}
	var stats struct {
		Users int `json:"users"`
		Posts int `json:"posts"`
	}
	decodeJSON(t, resp, &stats)

	if stats.Users != 0 || stats.Posts != 0 {
		t.Errorf("fresh database should report zero stats, got %+v", stats)
	}
}

func TestProfileStats(t *testing.T) {
	ts, client := newTestServer(t)

	register(t, client, ts.URL, "alice", "secret123")
	login(t, client, ts.URL, "alice", "secret123")

	postJSON(t, client, ts.URL+"/api/feed", map[string]string{"content": "a post"}).Body.Close()
	postJSON(t, client, ts.URL+"/api/chat", map[string]string{"content": "a message"}).Body.Close()

	resp, err := client.Get(ts.URL + "/api/profile")
	if err != nil {
		t.Fatalf("GET /api/profile failed: %v", err)
	}
	var profile struct {
		Username     string `json:"username"`
		PostCount    int    `json:"postCount"`
		TotalScore   int    `json:"totalScore"`
		MessageCount int    `json:"messageCount"`
	}
	decodeJSON(t, resp, &profile)

	if profile.Username != "alice" {
		t.Errorf("expected alice, got %q", profile.Username)
	}
	if profile.PostCount != 1 || profile.MessageCount != 1 || profile.TotalScore != 0 {
		t.Errorf("unexpected stats: %+v", profile)
	}
}

func TestChangePasswordFlow(t *testing.T) {
	ts, client := newTestServer(t)

	register(t, client, ts.URL, "alice", "oldpass")
	login(t, client, ts.URL, "alice", "oldpass")

	mismatch := postJSON(t, client, ts.URL+"/api/settings/password", map[string]string{
		"current": "oldpass", "new": "newpass", "confirm": "different",
	})
	mismatch.Body.Close()
	if mismatch.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for confirmation mismatch, got %d", mismatch.StatusCode)
	}

	ok := postJSON(t, client, ts.URL+"/api/settings/password", map[string]string{
		"current": "oldpass", "new": "newpass", "confirm": "newpass",
	})
	ok.Body.Close()
	if ok.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for password change, got %d", ok.StatusCode)
	}

	login(t, client, ts.URL, "alice", "newpass")
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ts, client := newTestServer(t)

	register(t, client, ts.URL, "alice", "secret123")
	login(t, client, ts.URL, "alice", "secret123")

	resp := postJSON(t, client, ts.URL+"/api/auth/logout", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}

	after, err := client.Get(ts.URL + "/api/me")
	if err != nil {
		t.Fatalf("GET /api/me failed: %v", err)
	}
	after.Body.Close()
	if after.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", after.StatusCode)
	}
}

func TestUnknownAPIRouteReturnsJSON404(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/api/nope")
	if err != nil {
		t.Fatalf("GET /api/nope failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON 404, got content type %q", ct)
	}
}
