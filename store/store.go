package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Store interface {
	CreateUser(username, passwordHash, bio, createdAt string) (int64, error)
	GetUserByUsername(username string) (*User, error)
	UpdateUserBio(username, bio string) error
	UpdateUserPassword(username, passwordHash string) error
	CountUsers() (int, error)

	CreatePost(user, content, postType, postTime string) (int64, error)
	ListRecentPosts(limit int) ([]*Post, error)
	CountPosts() (int, error)
	CountPostsByUser(user string) (int, error)

	CreateGameResult(user, game string, score int, playedAt string) (int64, error)
	Leaderboard(limit int) ([]*LeaderboardEntry, error)
	TotalScoreByUser(user string) (int, error)

	CreateChatMessage(room, sender, content, sentAt string) (int64, error)
	ListRecentMessages(room string, limit int) ([]*ChatMessage, error)
	CountMessagesBySender(sender string) (int, error)

	Close() error
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Bio          string
	CreatedAt    string
}

type Post struct {
	ID      int64
	User    string
	Content string
	Type    string
	Likes   int
	Time    string
}

type GameResult struct {
	ID    int64
	User  string
	Game  string
	Score int
	Time  string
}

type LeaderboardEntry struct {
	User  string
	Total int
}

type ChatMessage struct {
	ID      int64
	Room    string
	Sender  string
	Content string
	Time    string
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateUser(username, passwordHash, bio, createdAt string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO users (username, password, bio, created_at) VALUES (?, ?, ?, ?)",
		username, passwordHash, bio, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) GetUserByUsername(username string) (*User, error) {
	user := &User{}
	err := s.db.QueryRow(
		"SELECT id, username, password, bio, created_at FROM users WHERE username = ?",
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Bio, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) UpdateUserBio(username, bio string) error {
	_, err := s.db.Exec(
		"UPDATE users SET bio = ? WHERE username = ?",
		bio, username,
	)
	if err != nil {
		return fmt.Errorf("failed to update bio: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateUserPassword(username, passwordHash string) error {
	_, err := s.db.Exec(
		"UPDATE users SET password = ? WHERE username = ?",
		passwordHash, username,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CountUsers() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) CreatePost(user, content, postType, postTime string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO posts (user, content, type, time) VALUES (?, ?, ?, ?)",
		user, content, postType, postTime,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create post: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) ListRecentPosts(limit int) ([]*Post, error) {
	rows, err := s.db.Query(
		"SELECT id, user, content, type, likes, time FROM posts ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post := &Post{}
		if err := rows.Scan(&post.ID, &post.User, &post.Content, &post.Type, &post.Likes, &post.Time); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *SQLiteStore) CountPosts() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) CountPostsByUser(user string) (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM posts WHERE user = ?", user).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posts by user: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) CreateGameResult(user, game string, score int, playedAt string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO games (user, game, score, time) VALUES (?, ?, ?, ?)",
		user, game, score, playedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create game result: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) Leaderboard(limit int) ([]*LeaderboardEntry, error) {
	rows, err := s.db.Query(`
		SELECT user, SUM(score) as total
		FROM games
		GROUP BY user
		ORDER BY total DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*LeaderboardEntry
	for rows.Next() {
		entry := &LeaderboardEntry{}
		if err := rows.Scan(&entry.User, &entry.Total); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) TotalScoreByUser(user string) (int, error) {
	var total int
	err := s.db.QueryRow(
		"SELECT COALESCE(SUM(score), 0) FROM games WHERE user = ?",
		user,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum scores: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) CreateChatMessage(room, sender, content, sentAt string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO chat_messages (room, sender, content, time) VALUES (?, ?, ?, ?)",
		room, sender, content, sentAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create chat message: %w", err)
	}
	return result.LastInsertId()
}

// ListRecentMessages returns the latest messages in chronological order:
// the query walks newest-first to apply the LIMIT, then the slice is reversed.
func (s *SQLiteStore) ListRecentMessages(room string, limit int) ([]*ChatMessage, error) {
	rows, err := s.db.Query(
		"SELECT id, room, sender, content, time FROM chat_messages WHERE room = ? ORDER BY id DESC LIMIT ?",
		room, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*ChatMessage
	for rows.Next() {
		msg := &ChatMessage{}
		if err := rows.Scan(&msg.ID, &msg.Room, &msg.Sender, &msg.Content, &msg.Time); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *SQLiteStore) CountMessagesBySender(sender string) (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM chat_messages WHERE sender = ?", sender).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages by sender: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
