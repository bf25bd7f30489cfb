// Package repository persists chats and reads the user directory. The chat
// document (with its embedded message array) is the unit of mutation; every
// message operation is a single atomic document update so concurrent sends
// against one chat interleave instead of losing writes.
package repository

import (
	"context"
	"errors"

	"github.com/surya16122114/roomies-radar/internal/models"
)

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrChatExists      = errors.New("chat already exists for this pair")
	ErrMessageNotFound = errors.New("message not found")
	ErrUserNotFound    = errors.New("user not found")
	// ErrStatusRegression means a read message was asked to go back to
	// delivered. Statuses only move forward.
	ErrStatusRegression = errors.New("message status cannot move backwards")
)

// ChatStore is everything the chat core needs from chat persistence.
type ChatStore interface {
	// FindByPair matches the unordered pair {userA, userB}; initiation
	// order does not matter.
	FindByPair(ctx context.Context, userA, userB string) (*models.Chat, error)
	FindByID(ctx context.Context, chatID string) (*models.Chat, error)
	// Insert fails with ErrChatExists if the pair already has a chat.
	Insert(ctx context.Context, chat *models.Chat) error
	ListForUser(ctx context.Context, userID string) ([]models.Chat, error)
	// AppendMessage atomically appends msg, bumps lastUpdated, and returns
	// the full updated sequence, oldest first.
	AppendMessage(ctx context.Context, chatID string, msg models.Message) ([]models.Message, error)
	// SetMessageStatus applies a forward-only transition and returns the
	// updated message. Re-applying the current status is a no-op success.
	SetMessageStatus(ctx context.Context, chatID, messageID string, status models.MessageStatus) (*models.Message, error)
	// RemoveMessage hard-deletes the message and returns it.
	RemoveMessage(ctx context.Context, chatID, messageID string) (*models.Message, error)
	// Delete removes the chat and returns the removed document.
	Delete(ctx context.Context, chatID string) (*models.Chat, error)
}

// UserStore is the read-only directory adapter. Accounts live in the user
// service's collection; the chat module only validates and searches them.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	// SearchByName is a case-insensitive substring match on first or last
	// name.
	SearchByName(ctx context.Context, name string) ([]models.User, error)
}
