package chat

import (
	"errors"
	"fmt"
	"megaplatform/store"
	"time"
)

var ErrEmptyContent = errors.New("message content is empty")

// DefaultRoom is the single global room. Room selection is not exposed
// anywhere; every message lands here.
const DefaultRoom = "عمومی"

const (
	recentLimit = 50
	timeLayout  = "15:04:05"
)

type Service struct {
	store store.Store
}

func NewService(store store.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Send(sender, content string) error {
	if content == "" {
		return ErrEmptyContent
	}

	sentAt := time.Now().Format(timeLayout)
	if _, err := s.store.CreateChatMessage(DefaultRoom, sender, content, sentAt); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Recent returns the latest messages oldest-first. There is no push
// delivery; clients see new messages only on the next fetch.
func (s *Service) Recent() ([]*store.ChatMessage, error) {
	messages, err := s.store.ListRecentMessages(DefaultRoom, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}
