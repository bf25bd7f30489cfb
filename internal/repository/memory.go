package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/surya16122114/roomies-radar/internal/models"
)

// MemoryChatStore is an in-process ChatStore. The single mutex serializes
// every chat mutation, which is stricter than the per-document atomicity
// Mongo gives and plenty for tests and local development.
type MemoryChatStore struct {
	mu    sync.RWMutex
	chats map[string]*models.Chat // chatID -> chat
	pairs map[string]string       // pair key -> chatID
}

func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{
		chats: make(map[string]*models.Chat),
		pairs: make(map[string]string),
	}
}

func (s *MemoryChatStore) FindByPair(_ context.Context, userA, userB string) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.pairs[models.PairKey(userA, userB)]
	if !ok {
		return nil, ErrChatNotFound
	}
	return copyChat(s.chats[id]), nil
}

func (s *MemoryChatStore) FindByID(_ context.Context, chatID string) (*models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	return copyChat(chat), nil
}

func (s *MemoryChatStore) Insert(_ context.Context, chat *models.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.PairKey(chat.User1ID, chat.User2ID)
	if _, ok := s.pairs[key]; ok {
		return ErrChatExists
	}
	chat.PairKey = key
	s.chats[chat.ChatID] = copyChat(chat)
	s.pairs[key] = chat.ChatID
	return nil
}

func (s *MemoryChatStore) ListForUser(_ context.Context, userID string) ([]models.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Chat{}
	for _, chat := range s.chats {
		if chat.HasParticipant(userID) {
			out = append(out, *copyChat(chat))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out, nil
}

func (s *MemoryChatStore) AppendMessage(_ context.Context, chatID string, msg models.Message) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	chat.Messages = append(chat.Messages, msg)
	chat.LastUpdated = msg.Timestamp
	return append([]models.Message{}, chat.Messages...), nil
}

func (s *MemoryChatStore) SetMessageStatus(_ context.Context, chatID, messageID string, status models.MessageStatus) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	for i := range chat.Messages {
		if chat.Messages[i].MessageID != messageID {
			continue
		}
		if chat.Messages[i].Status == models.StatusRead && status == models.StatusDelivered {
			return nil, ErrStatusRegression
		}
		chat.Messages[i].Status = status
		chat.LastUpdated = time.Now().UTC()
		msg := chat.Messages[i]
		return &msg, nil
	}
	return nil, ErrMessageNotFound
}

func (s *MemoryChatStore) RemoveMessage(_ context.Context, chatID, messageID string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	for i := range chat.Messages {
		if chat.Messages[i].MessageID == messageID {
			msg := chat.Messages[i]
			chat.Messages = append(chat.Messages[:i], chat.Messages[i+1:]...)
			chat.LastUpdated = time.Now().UTC()
			return &msg, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (s *MemoryChatStore) Delete(_ context.Context, chatID string) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return nil, ErrChatNotFound
	}
	delete(s.chats, chatID)
	delete(s.pairs, chat.PairKey)
	return chat, nil
}

func copyChat(c *models.Chat) *models.Chat {
	cp := *c
	cp.Messages = append([]models.Message{}, c.Messages...)
	return &cp
}

// MemoryUserStore is an in-process user directory for tests and the dev
// environment.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (s *MemoryUserStore) Add(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) SearchByName(_ context.Context, name string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := strings.ToLower(name)
	out := []models.User{}
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.FirstName), q) ||
			strings.Contains(strings.ToLower(u.LastName), q) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
