package client

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/surya16122114/roomies-radar/internal/models"
	"github.com/surya16122114/roomies-radar/internal/realtime"
)

// Session is the realtime side of a client connection: room membership for
// the currently open chat. Implementations wrap a live websocket; tests
// use a recorder.
type Session interface {
	JoinChat(chatID string) error
	LeaveChat(chatID string) error
}

// Controller drives the chat UI state: the chat list, the open window, and
// reconciliation between optimistic local updates and server events. All
// methods are safe for concurrent use; socket events and user actions
// arrive on different goroutines.
type Controller struct {
	api     API
	session Session // may be nil when running without a socket
	userID  string

	mu       sync.Mutex
	chats    []models.Chat
	selected string
	window   []models.Message
	pending  map[string]struct{} // optimistic messageIDs awaiting the server
}

func NewController(api API, session Session, userID string) *Controller {
	return &Controller{
		api:     api,
		session: session,
		userID:  userID,
		pending: make(map[string]struct{}),
	}
}

// Open loads the chat list and opens the most recent chat, if any.
func (c *Controller) Open(ctx context.Context) error {
	chats, err := c.api.ListChats(ctx, c.userID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.chats = chats
	c.mu.Unlock()
	if len(chats) > 0 {
		return c.Select(ctx, chats[0].ChatID)
	}
	return nil
}

// Select opens a chat: leaves the previous room, joins the new one, loads
// the window, and marks incoming delivered messages as read.
func (c *Controller) Select(ctx context.Context, chatID string) error {
	c.mu.Lock()
	prev := c.selected
	c.selected = chatID
	c.mu.Unlock()

	if c.session != nil {
		if prev != "" && prev != chatID {
			_ = c.session.LeaveChat(prev)
		}
		if err := c.session.JoinChat(chatID); err != nil {
			return err
		}
	}
	return c.Refresh(ctx)
}

// Refresh re-reads the open window from the server. This is also the
// recovery path after a dropped socket: fan-out has no backlog.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	chatID := c.selected
	c.mu.Unlock()
	if chatID == "" {
		return nil
	}
	msgs, err := c.api.ListMessages(ctx, chatID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.window = msgs
	c.pending = make(map[string]struct{})
	c.mu.Unlock()
	return c.markWindowRead(ctx, chatID, msgs)
}

// markWindowRead flags the other side's delivered messages as read.
// Best-effort: a failed mark leaves the message delivered and the next
// refresh retries it.
func (c *Controller) markWindowRead(ctx context.Context, chatID string, msgs []models.Message) error {
	for i := range msgs {
		if msgs[i].SenderID == c.userID || msgs[i].Status != models.StatusDelivered {
			continue
		}
		updated, err := c.api.UpdateMessageStatus(ctx, chatID, msgs[i].MessageID, models.StatusRead)
		if err != nil {
			continue
		}
		c.applyStatus(chatID, updated.MessageID, updated.Status)
	}
	return nil
}

// StartChat resolves (or creates) the chat with another user and opens it.
func (c *Controller) StartChat(ctx context.Context, otherUserID string) (*models.Chat, error) {
	chat, err := c.api.ResolveChat(ctx, c.userID, otherUserID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	if c.indexOf(chat.ChatID) < 0 {
		c.chats = append([]models.Chat{*chat}, c.chats...)
	}
	c.mu.Unlock()
	if err := c.Select(ctx, chat.ChatID); err != nil {
		return nil, err
	}
	return chat, nil
}

// Send appends the message optimistically, then sends it. On success the
// server's sequence replaces the window (it is authoritative); on failure
// the optimistic entry is rolled back. Sends are never retried: a retry
// would duplicate the message.
func (c *Controller) Send(ctx context.Context, content string) error {
	c.mu.Lock()
	chatID := c.selected
	localID := "local-" + uuid.NewString()
	c.window = append(c.window, models.Message{
		MessageID: localID,
		SenderID:  c.userID,
		Content:   content,
		Status:    models.StatusDelivered,
	})
	c.pending[localID] = struct{}{}
	c.mu.Unlock()

	seq, err := c.api.SendMessage(ctx, chatID, c.userID, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, localID)
	if err != nil {
		c.removeFromWindow(localID)
		return err
	}
	if c.selected == chatID {
		c.window = seq
	}
	c.bumpChat(chatID)
	return nil
}

// MarkRead marks one message as read (e.g. when it scrolls into view).
func (c *Controller) MarkRead(ctx context.Context, messageID string) error {
	c.mu.Lock()
	chatID := c.selected
	c.mu.Unlock()
	updated, err := c.api.UpdateMessageStatus(ctx, chatID, messageID, models.StatusRead)
	if err != nil {
		return err
	}
	c.applyStatus(chatID, updated.MessageID, updated.Status)
	return nil
}

// DeleteMessage removes a message from the open chat.
func (c *Controller) DeleteMessage(ctx context.Context, messageID string) error {
	c.mu.Lock()
	chatID := c.selected
	c.mu.Unlock()
	if _, err := c.api.DeleteMessage(ctx, chatID, messageID); err != nil {
		return err
	}
	c.mu.Lock()
	c.removeFromWindow(messageID)
	c.mu.Unlock()
	return nil
}

// DeleteChat deletes a chat and moves the selection per the list policy:
// the chat immediately preceding the deleted one, else the first chat,
// else nothing.
func (c *Controller) DeleteChat(ctx context.Context, chatID string) error {
	if _, err := c.api.DeleteChat(ctx, chatID); err != nil {
		return err
	}
	next, changed := c.dropChat(chatID)
	if !changed {
		return nil
	}
	if next == "" {
		return nil
	}
	return c.Select(ctx, next)
}

// HandleEvent reconciles a realtime event into local state. The emitting
// client receives its own events too; reconciliation is idempotent.
func (c *Controller) HandleEvent(ev realtime.Event) {
	switch p := ev.Payload.(type) {
	case realtime.MessageSentPayload:
		c.mu.Lock()
		if c.selected == p.ChatID && c.indexInWindow(p.Message.MessageID) < 0 {
			c.window = append(c.window, p.Message)
		}
		c.bumpChat(p.ChatID)
		c.mu.Unlock()
	case realtime.MessageReadPayload:
		c.applyStatus(p.ChatID, p.MessageID, p.Status)
	case realtime.MessageDeletedPayload:
		c.mu.Lock()
		if c.selected == p.ChatID {
			c.removeFromWindow(p.MessageID)
		}
		c.mu.Unlock()
	case realtime.ChatDeletedPayload:
		next, changed := c.dropChat(p.ChatID)
		if changed && next != "" && c.session != nil {
			// window content is fetched by the caller's next Refresh
			_ = c.session.JoinChat(next)
		}
	}
}

// Chats returns a snapshot of the chat list.
func (c *Controller) Chats() []models.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Chat{}, c.chats...)
}

// Window returns a snapshot of the open chat's messages.
func (c *Controller) Window() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Message{}, c.window...)
}

// Selected returns the open chat's ID, empty if none.
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// dropChat removes the chat from the list and, when it was selected,
// computes the replacement selection. Returns the new selection and
// whether the selection changed.
func (c *Controller) dropChat(chatID string) (next string, changed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(chatID)
	if idx >= 0 {
		c.chats = append(c.chats[:idx], c.chats[idx+1:]...)
	}
	if c.selected != chatID {
		return c.selected, false
	}
	c.window = nil
	switch {
	case idx > 0:
		c.selected = c.chats[idx-1].ChatID
	case len(c.chats) > 0:
		c.selected = c.chats[0].ChatID
	default:
		c.selected = ""
	}
	return c.selected, true
}

// bumpChat moves chatID to the front of the list, matching the
// most-recently-updated ordering the server returns.
func (c *Controller) bumpChat(chatID string) {
	idx := c.indexOf(chatID)
	if idx <= 0 {
		return
	}
	chat := c.chats[idx]
	c.chats = append(c.chats[:idx], c.chats[idx+1:]...)
	c.chats = append([]models.Chat{chat}, c.chats...)
}

func (c *Controller) applyStatus(chatID, messageID string, status models.MessageStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != chatID {
		return
	}
	for i := range c.window {
		if c.window[i].MessageID == messageID {
			c.window[i].Status = status
			return
		}
	}
}

func (c *Controller) removeFromWindow(messageID string) {
	for i := range c.window {
		if c.window[i].MessageID == messageID {
			c.window = append(c.window[:i], c.window[i+1:]...)
			return
		}
	}
}

func (c *Controller) indexOf(chatID string) int {
	for i := range c.chats {
		if c.chats[i].ChatID == chatID {
			return i
		}
	}
	return -1
}

func (c *Controller) indexInWindow(messageID string) int {
	for i := range c.window {
		if c.window[i].MessageID == messageID {
			return i
		}
	}
	return -1
}
