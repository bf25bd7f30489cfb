// Package service implements the chat core: chat identity resolution,
// message lifecycle, the chat directory, and user search. Every successful
// mutation publishes its event on the realtime broker scoped to the chat,
// and mirrors it to the audit stream.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/surya16122114/roomies-radar/internal/apperr"
	"github.com/surya16122114/roomies-radar/internal/events"
	"github.com/surya16122114/roomies-radar/internal/metrics"
	"github.com/surya16122114/roomies-radar/internal/models"
	"github.com/surya16122114/roomies-radar/internal/realtime"
	"github.com/surya16122114/roomies-radar/internal/repository"
)

type ChatService struct {
	chats  repository.ChatStore
	users  repository.UserStore
	broker realtime.Broker
	audit  *events.Publisher
	log    *zap.SugaredLogger
}

func New(chats repository.ChatStore, users repository.UserStore, broker realtime.Broker, audit *events.Publisher, log *zap.SugaredLogger) *ChatService {
	return &ChatService{chats: chats, users: users, broker: broker, audit: audit, log: log}
}

// ResolveOrCreateChat finds the single chat between two users, creating it
// if absent. Identity is symmetric: the pair {A,B} resolves to the same
// chat no matter which side initiates. Creation emits no realtime event;
// the caller surfaces the returned chat to its own client.
func (s *ChatService) ResolveOrCreateChat(ctx context.Context, user1ID, user2ID string) (*models.Chat, error) {
	user1ID = strings.TrimSpace(user1ID)
	user2ID = strings.TrimSpace(user2ID)
	if user1ID == "" || user2ID == "" {
		return nil, apperr.Validation("user1Id and user2Id are required")
	}
	if err := s.requireUser(ctx, user1ID); err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, user2ID); err != nil {
		return nil, err
	}

	chat, err := s.chats.FindByPair(ctx, user1ID, user2ID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, repository.ErrChatNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	chat = &models.Chat{
		ChatID:      uuid.NewString(),
		User1ID:     user1ID,
		User2ID:     user2ID,
		Messages:    []models.Message{},
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := s.chats.Insert(ctx, chat); err != nil {
		if errors.Is(err, repository.ErrChatExists) {
			// lost the creation race; the winner's chat is the chat
			return s.chats.FindByPair(ctx, user1ID, user2ID)
		}
		return nil, err
	}
	s.log.Infow("chat created", "chat", chat.ChatID, "user1", user1ID, "user2", user2ID)
	return chat, nil
}

// SendMessage appends a message with a fresh ID and status delivered, and
// returns the chat's full message sequence, oldest first.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID, content string) ([]models.Message, error) {
	chatID = strings.TrimSpace(chatID)
	senderID = strings.TrimSpace(senderID)
	if content == "" || senderID == "" {
		return nil, apperr.Validation("content and senderId are required")
	}
	if chatID == "" {
		return nil, apperr.Validation("chatId is required")
	}
	if err := s.requireUser(ctx, senderID); err != nil {
		return nil, err
	}

	msg := models.Message{
		MessageID: ulid.Make().String(),
		SenderID:  senderID,
		Content:   content,
		Status:    models.StatusDelivered,
		Timestamp: time.Now().UTC(),
	}
	seq, err := s.chats.AppendMessage(ctx, chatID, msg)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, apperr.NotFound("chat with ID %s not found", chatID)
		}
		return nil, err
	}
	metrics.MessagesSent.Inc()

	s.emit(ctx, chatID, realtime.Event{
		Name:    realtime.EventMessageSent,
		Payload: realtime.MessageSentPayload{ChatID: chatID, Message: msg},
	})
	return seq, nil
}

// UpdateMessageStatus applies a forward-only status transition and returns
// the updated message. Re-marking a read message as read succeeds and emits
// the event again; moving back to delivered is rejected.
func (s *ChatService) UpdateMessageStatus(ctx context.Context, chatID, messageID string, status models.MessageStatus) (*models.Message, error) {
	if status == "" {
		return nil, apperr.Validation("status is required")
	}
	if !status.Valid() {
		return nil, apperr.Validation("status must be %q or %q", models.StatusDelivered, models.StatusRead)
	}

	msg, err := s.chats.SetMessageStatus(ctx, chatID, messageID, status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrChatNotFound):
			return nil, apperr.NotFound("chat with ID %s not found", chatID)
		case errors.Is(err, repository.ErrMessageNotFound):
			return nil, apperr.NotFound("message with ID %s not found", messageID)
		case errors.Is(err, repository.ErrStatusRegression):
			return nil, apperr.Validation("message status cannot move from %q back to %q", models.StatusRead, models.StatusDelivered)
		}
		return nil, err
	}

	s.emit(ctx, chatID, realtime.Event{
		Name:    realtime.EventMessageRead,
		Payload: realtime.MessageReadPayload{ChatID: chatID, MessageID: messageID, Status: status},
	})
	return msg, nil
}

// DeleteMessage hard-deletes one message and returns it.
func (s *ChatService) DeleteMessage(ctx context.Context, chatID, messageID string) (*models.Message, error) {
	msg, err := s.chats.RemoveMessage(ctx, chatID, messageID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrChatNotFound):
			return nil, apperr.NotFound("chat with ID %s not found", chatID)
		case errors.Is(err, repository.ErrMessageNotFound):
			return nil, apperr.NotFound("message with ID %s not found", messageID)
		}
		return nil, err
	}

	s.emit(ctx, chatID, realtime.Event{
		Name:    realtime.EventMessageDeleted,
		Payload: realtime.MessageDeletedPayload{ChatID: chatID, MessageID: messageID},
	})
	return msg, nil
}

// GetMessages returns the chat's messages, oldest first. An unknown chat
// yields an empty sequence, not an error: the read path is deliberately
// lenient where the write path is strict.
func (s *ChatService) GetMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return []models.Message{}, nil
		}
		return nil, err
	}
	return chat.Messages, nil
}

// GetAllChats lists every chat the user participates in, most recently
// updated first.
func (s *ChatService) GetAllChats(ctx context.Context, userID string) ([]models.Chat, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("userId is required")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.chats.ListForUser(ctx, userID)
}

// DeleteChat removes the chat and everything in it.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) (*models.Chat, error) {
	chat, err := s.chats.Delete(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return nil, apperr.NotFound("chat with ID %s not found", chatID)
		}
		return nil, err
	}

	s.emit(ctx, chatID, realtime.Event{
		Name:    realtime.EventChatDeleted,
		Payload: realtime.ChatDeletedPayload{ChatID: chatID},
	})
	return chat, nil
}

// SearchUsers matches users whose first or last name contains the query,
// case-insensitively. An empty query returns an empty result so live-search
// inputs stay cheap.
func (s *ChatService) SearchUsers(ctx context.Context, name string) ([]models.UserSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return []models.UserSummary{}, nil
	}
	users, err := s.users.SearchByName(ctx, name)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, models.UserSummary{UserID: users[i].ID, Name: users[i].FullName()})
	}
	return out, nil
}

func (s *ChatService) requireUser(ctx context.Context, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user with ID %s not found", id)
		}
		return err
	}
	return nil
}

func (s *ChatService) emit(ctx context.Context, chatID string, ev realtime.Event) {
	s.broker.Publish(chatID, ev)
	s.audit.Publish(ctx, chatID, ev)
}
