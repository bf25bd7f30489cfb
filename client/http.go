// Package client is the Go-side counterpart of the chat service: a REST
// client plus the Controller state machine that drives a chat UI (chat
// list, open window, optimistic sends, realtime reconciliation).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/surya16122114/roomies-radar/internal/apperr"
	"github.com/surya16122114/roomies-radar/internal/models"
)

// API is everything the Controller needs from the chat service.
type API interface {
	ResolveChat(ctx context.Context, user1ID, user2ID string) (*models.Chat, error)
	ListChats(ctx context.Context, userID string) ([]models.Chat, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
	SendMessage(ctx context.Context, chatID, senderID, content string) ([]models.Message, error)
	UpdateMessageStatus(ctx context.Context, chatID, messageID string, status models.MessageStatus) (*models.Message, error)
	DeleteMessage(ctx context.Context, chatID, messageID string) (*models.Message, error)
	DeleteChat(ctx context.Context, chatID string) (*models.Chat, error)
	SearchUsers(ctx context.Context, name string) ([]models.UserSummary, error)
}

// HTTPClient talks to the /chats REST surface. Reads are retried with
// exponential backoff; mutations are sent exactly once, because a retried
// send would duplicate the message (the server has no idempotency key).
type HTTPClient struct {
	base       string
	token      string
	http       *http.Client
	maxElapsed time.Duration
}

func NewHTTPClient(base, token string) *HTTPClient {
	return &HTTPClient{
		base:       base,
		token:      token,
		http:       &http.Client{Timeout: 15 * time.Second},
		maxElapsed: 10 * time.Second,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		return &apperr.Error{Code: env.Code, Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// get retries transient failures; validation and not-found responses are
// permanent and returned immediately.
func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	operation := func() error {
		err := c.do(ctx, http.MethodGet, path, nil, out)
		if err == nil {
			return nil
		}
		if apperr.IsValidation(err) || apperr.IsNotFound(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.maxElapsed
	return backoff.Retry(operation, backoff.WithContext(b, ctx))
}

func (c *HTTPClient) ResolveChat(ctx context.Context, user1ID, user2ID string) (*models.Chat, error) {
	var chat models.Chat
	body := map[string]string{"user1Id": user1ID, "user2Id": user2ID}
	if err := c.do(ctx, http.MethodPost, "/chats", body, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (c *HTTPClient) ListChats(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	if err := c.get(ctx, "/chats/"+url.PathEscape(userID), &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (c *HTTPClient) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := c.get(ctx, "/chats/"+url.PathEscape(chatID)+"/messages", &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *HTTPClient) SendMessage(ctx context.Context, chatID, senderID, content string) ([]models.Message, error) {
	var seq []models.Message
	body := map[string]string{"content": content, "senderId": senderID}
	if err := c.do(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/messages", body, &seq); err != nil {
		return nil, err
	}
	return seq, nil
}

func (c *HTTPClient) UpdateMessageStatus(ctx context.Context, chatID, messageID string, status models.MessageStatus) (*models.Message, error) {
	var msg models.Message
	path := "/chats/" + url.PathEscape(chatID) + "/messages/" + url.PathEscape(messageID) + "/messageStatus"
	body := map[string]models.MessageStatus{"status": status}
	if err := c.do(ctx, http.MethodPut, path, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *HTTPClient) DeleteMessage(ctx context.Context, chatID, messageID string) (*models.Message, error) {
	var out struct {
		DeletedMessage models.Message `json:"deletedMessage"`
	}
	path := "/chats/" + url.PathEscape(chatID) + "/messages/" + url.PathEscape(messageID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.DeletedMessage, nil
}

func (c *HTTPClient) DeleteChat(ctx context.Context, chatID string) (*models.Chat, error) {
	var out struct {
		DeletedChat models.Chat `json:"deletedChat"`
	}
	if err := c.do(ctx, http.MethodDelete, "/chats/"+url.PathEscape(chatID), nil, &out); err != nil {
		return nil, err
	}
	return &out.DeletedChat, nil
}

func (c *HTTPClient) SearchUsers(ctx context.Context, name string) ([]models.UserSummary, error) {
	var users []models.UserSummary
	if err := c.get(ctx, "/chats/search?name="+url.QueryEscape(name), &users); err != nil {
		return nil, err
	}
	return users, nil
}
