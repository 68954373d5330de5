package feed

import (
	"errors"
	"fmt"
	"megaplatform/store"
	"time"
)

var ErrEmptyContent = errors.New("post content is empty")

const (
	recentLimit     = 20
	defaultPostType = "text"
	timeLayout      = "2006-01-02 15:04:05"
)

type Service struct {
	store store.Store
}

func NewService(store store.Store) *Service {
	return &Service{store: store}
}

// CreatePost inserts one immutable post. postType is a free-text category;
// an empty one falls back to "text".
func (s *Service) CreatePost(user, content, postType string) error {
	if content == "" {
		return ErrEmptyContent
	}
	if postType == "" {
		postType = defaultPostType
	}

	postTime := time.Now().Format(timeLayout)
	if _, err := s.store.CreatePost(user, content, postType, postTime); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// Recent returns the latest posts, newest first. There is no pagination
// beyond this cutoff.
func (s *Service) Recent() ([]*store.Post, error) {
	posts, err := s.store.ListRecentPosts(recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	return posts, nil
}
