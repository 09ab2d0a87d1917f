// Package chat stores conversation history. Chats are created once per
// completed exchange; AppendMessage rewrites the whole record.
package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lucaf1-15/lucai-backend/internal/models"
	"github.com/lucaf1-15/lucai-backend/internal/store"
)

// ErrNotFound indicates an operation on an unknown chat ID.
var ErrNotFound = errors.New("chat: not found")

// Service provides chat history operations over the chats collection.
type Service struct {
	chats *store.Collection[models.Chat]
	nowFn func() time.Time
}

// NewService constructs a Service. A nil clock falls back to time.Now.
func NewService(chats *store.Collection[models.Chat], nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{chats: chats, nowFn: nowFn}
}

// Create records a completed exchange for the user. The user ID is not
// validated against the users collection.
func (s *Service) Create(userID string, messages []models.Message) (models.Chat, error) {
	rec := models.Chat{
		ID:        uuid.NewString(),
		UserID:    userID,
		Messages:  messages,
		CreatedAt: s.nowFn().UTC(),
	}
	if errInsert := s.chats.Insert(rec); errInsert != nil {
		return models.Chat{}, errInsert
	}
	return rec, nil
}

// ByUser returns the user's chats in stored order.
func (s *Service) ByUser(userID string) []models.Chat {
	var out []models.Chat
	for _, rec := range s.chats.All() {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

// Get returns the chat with the given ID.
func (s *Service) Get(id string) (models.Chat, error) {
	rec, errFind := s.chats.FindByID(id)
	if errFind != nil {
		return models.Chat{}, ErrNotFound
	}
	return rec, nil
}

// AppendMessage appends one message to an existing chat, rewriting the
// stored record.
func (s *Service) AppendMessage(id string, msg models.Message) (models.Chat, error) {
	rec, errUpdate := s.chats.Update(id, func(c models.Chat) models.Chat {
		c.Messages = append(c.Messages, msg)
		return c
	})
	if errors.Is(errUpdate, store.ErrNotFound) {
		return models.Chat{}, ErrNotFound
	}
	return rec, errUpdate
}

// Delete removes a chat. Deleting an absent ID succeeds.
func (s *Service) Delete(id string) error {
	return s.chats.Delete(id)
}

// All returns every stored chat.
func (s *Service) All() []models.Chat {
	return s.chats.All()
}
