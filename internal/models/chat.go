package models

import (
	"strings"
	"time"
)

// MessageStatus is the delivery state of a message. Transitions only move
// forward: delivered -> read.
type MessageStatus string

const (
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

func (s MessageStatus) Valid() bool {
	return s == StatusDelivered || s == StatusRead
}

// Message is a single chat message, embedded in its parent Chat document.
type Message struct {
	MessageID string        `bson:"message_id" json:"messageId"`
	SenderID  string        `bson:"sender_id" json:"senderId"`
	Content   string        `bson:"content" json:"content"`
	Status    MessageStatus `bson:"status" json:"status"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
}

// Chat is the single conversation between two users. Messages are stored
// inline, oldest first. PairKey is the symmetric identity of the user pair;
// it is unique-indexed so the same two users can never own two chats,
// regardless of who initiated.
type Chat struct {
	ChatID      string    `bson:"chat_id" json:"chatId"`
	PairKey     string    `bson:"pair_key" json:"-"`
	User1ID     string    `bson:"user1_id" json:"user1Id"`
	User2ID     string    `bson:"user2_id" json:"user2Id"`
	Messages    []Message `bson:"messages" json:"messages"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	LastUpdated time.Time `bson:"last_updated" json:"lastUpdated"`
}

// PairKey derives the order-insensitive identity of a user pair.
func PairKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}

// HasParticipant reports whether userID is one of the two chat members.
func (c *Chat) HasParticipant(userID string) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// OtherParticipant returns the member that is not userID. Empty string if
// userID is not a participant.
func (c *Chat) OtherParticipant(userID string) string {
	switch userID {
	case c.User1ID:
		return c.User2ID
	case c.User2ID:
		return c.User1ID
	}
	return ""
}

// User is the slice of the account record the chat module reads. Accounts
// are owned by the user service; this module never writes them.
type User struct {
	ID        string `bson:"_id" json:"id"`
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Email     string `bson:"email" json:"email"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserSummary is the search-result shape for the new-chat user picker.
type UserSummary struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}
