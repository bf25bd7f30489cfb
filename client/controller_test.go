package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surya16122114/roomies-radar/internal/models"
	"github.com/surya16122114/roomies-radar/internal/realtime"
)

// fakeAPI serves canned data and records calls.
type fakeAPI struct {
	chats    map[string][]models.Chat   // userID -> chats
	messages map[string][]models.Message // chatID -> messages
	sendErr  error
	sent     []string
	marked   []string
	deleted  []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		chats:    map[string][]models.Chat{},
		messages: map[string][]models.Message{},
	}
}

func (f *fakeAPI) ResolveChat(_ context.Context, user1ID, user2ID string) (*models.Chat, error) {
	return &models.Chat{ChatID: "chat-" + user1ID + "-" + user2ID, User1ID: user1ID, User2ID: user2ID}, nil
}

func (f *fakeAPI) ListChats(_ context.Context, userID string) ([]models.Chat, error) {
	return f.chats[userID], nil
}

func (f *fakeAPI) ListMessages(_ context.Context, chatID string) ([]models.Message, error) {
	return f.messages[chatID], nil
}

func (f *fakeAPI) SendMessage(_ context.Context, chatID, senderID, content string) ([]models.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, content)
	msg := models.Message{MessageID: "srv-" + content, SenderID: senderID, Content: content, Status: models.StatusDelivered}
	f.messages[chatID] = append(f.messages[chatID], msg)
	return f.messages[chatID], nil
}

func (f *fakeAPI) UpdateMessageStatus(_ context.Context, chatID, messageID string, status models.MessageStatus) (*models.Message, error) {
	f.marked = append(f.marked, messageID)
	for i := range f.messages[chatID] {
		if f.messages[chatID][i].MessageID == messageID {
			f.messages[chatID][i].Status = status
			msg := f.messages[chatID][i]
			return &msg, nil
		}
	}
	return &models.Message{MessageID: messageID, Status: status}, nil
}

func (f *fakeAPI) DeleteMessage(_ context.Context, chatID, messageID string) (*models.Message, error) {
	f.deleted = append(f.deleted, messageID)
	return &models.Message{MessageID: messageID}, nil
}

func (f *fakeAPI) DeleteChat(_ context.Context, chatID string) (*models.Chat, error) {
	return &models.Chat{ChatID: chatID}, nil
}

func (f *fakeAPI) SearchUsers(context.Context, string) ([]models.UserSummary, error) {
	return nil, nil
}

type fakeSession struct {
	joined []string
	left   []string
}

func (s *fakeSession) JoinChat(chatID string) error {
	s.joined = append(s.joined, chatID)
	return nil
}

func (s *fakeSession) LeaveChat(chatID string) error {
	s.left = append(s.left, chatID)
	return nil
}

func chatList(ids ...string) []models.Chat {
	out := make([]models.Chat, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Chat{ChatID: id, User1ID: "me", User2ID: "other-" + id})
	}
	return out
}

func TestOpenSelectsMostRecentChat(t *testing.T) {
	api := newFakeAPI()
	api.chats["me"] = chatList("c1", "c2")
	sess := &fakeSession{}
	ctrl := NewController(api, sess, "me")

	require.NoError(t, ctrl.Open(context.Background()))
	assert.Equal(t, "c1", ctrl.Selected())
	assert.Equal(t, []string{"c1"}, sess.joined)
}

func TestSendOptimisticThenAuthoritative(t *testing.T) {
	api := newFakeAPI()
	api.chats["me"] = chatList("c1")
	ctrl := NewController(api, nil, "me")
	require.NoError(t, ctrl.Open(context.Background()))

	require.NoError(t, ctrl.Send(context.Background(), "hello"))
	window := ctrl.Window()
	require.Len(t, window, 1)
	assert.Equal(t, "srv-hello", window[0].MessageID, "server sequence replaces the optimistic entry")
	assert.Equal(t, []string{"hello"}, api.sent)
}

func TestSendRollbackOnFailure(t *testing.T) {
	api := newFakeAPI()
	api.chats["me"] = chatList("c1")
	ctrl := NewController(api, nil, "me")
	require.NoError(t, ctrl.Open(context.Background()))

	api.sendErr = errors.New("boom")
	require.Error(t, ctrl.Send(context.Background(), "hello"))
	assert.Empty(t, ctrl.Window(), "optimistic entry rolled back")
}

func TestHandleEventReconciliation(t *testing.T) {
	api := newFakeAPI()
	api.chats["me"] = chatList("c1", "c2")
	ctrl := NewController(api, nil, "me")
	require.NoError(t, ctrl.Open(context.Background()))

	incoming := models.Message{MessageID: "m1", SenderID: "other-c1", Content: "hey", Status: models.StatusDelivered}
	ctrl.HandleEvent(realtime.Event{
		Name:    realtime.EventMessageSent,
		Payload: realtime.MessageSentPayload{ChatID: "c1", Message: incoming},
	})
	require.Len(t, ctrl.Window(), 1)

	// duplicate delivery is deduped by messageId
	ctrl.HandleEvent(realtime.Event{
		Name:    realtime.EventMessageSent,
		Payload: realtime.MessageSentPayload{ChatID: "c1", Message: incoming},
	})
	assert.Len(t, ctrl.Window(), 1)

	// events for other chats do not touch the window
	ctrl.HandleEvent(realtime.Event{
		Name:    realtime.EventMessageSent,
		Payload: realtime.MessageSentPayload{ChatID: "c2", Message: models.Message{MessageID: "m2"}},
	})
	assert.Len(t, ctrl.Window(), 1)

	ctrl.HandleEvent(realtime.Event{
		Name:    realtime.EventMessageRead,
		Payload: realtime.MessageReadPayload{ChatID: "c1", MessageID: "m1", Status: models.StatusRead},
	})
	assert.Equal(t, models.StatusRead, ctrl.Window()[0].Status)

	ctrl.HandleEvent(realtime.Event{
		Name:    realtime.EventMessageDeleted,
		Payload: realtime.MessageDeletedPayload{ChatID: "c1", MessageID: "m1"},
	})
	assert.Empty(t, ctrl.Window())
}

func TestDeleteChatSelectionPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("previous chat wins", func(t *testing.T) {
		api := newFakeAPI()
		api.chats["me"] = chatList("c1", "c2", "c3")
		ctrl := NewController(api, nil, "me")
		require.NoError(t, ctrl.Open(ctx))
		require.NoError(t, ctrl.Select(ctx, "c2"))

		require.NoError(t, ctrl.DeleteChat(ctx, "c2"))
		assert.Equal(t, "c1", ctrl.Selected())
		assert.Len(t, ctrl.Chats(), 2)
	})

	t.Run("falls back to first chat", func(t *testing.T) {
		api := newFakeAPI()
		api.chats["me"] = chatList("c1", "c2", "c3")
		ctrl := NewController(api, nil, "me")
		require.NoError(t, ctrl.Open(ctx))

		require.NoError(t, ctrl.DeleteChat(ctx, "c1"))
		assert.Equal(t, "c2", ctrl.Selected())
	})

	t.Run("falls back to nothing selected", func(t *testing.T) {
		api := newFakeAPI()
		api.chats["me"] = chatList("c1")
		ctrl := NewController(api, nil, "me")
		require.NoError(t, ctrl.Open(ctx))

		require.NoError(t, ctrl.DeleteChat(ctx, "c1"))
		assert.Empty(t, ctrl.Selected())
		assert.Empty(t, ctrl.Chats())
	})

	t.Run("deleting an unselected chat keeps selection", func(t *testing.T) {
		api := newFakeAPI()
		api.chats["me"] = chatList("c1", "c2")
		ctrl := NewController(api, nil, "me")
		require.NoError(t, ctrl.Open(ctx))

		require.NoError(t, ctrl.DeleteChat(ctx, "c2"))
		assert.Equal(t, "c1", ctrl.Selected())
	})
}

func TestChatDeletedEventMovesSelection(t *testing.T) {
	api := newFakeAPI()
	api.chats["me"] = chatList("c1", "c2")
	sess := &fakeSession{}
	ctrl := NewController(api, sess, "me")
	require.NoError(t, ctrl.Open(context.Background()))
	require.NoError(t, ctrl.Select(context.Background(), "c2"))

	ctrl.HandleEvent(realtime.Event{
		Name:    realtime.EventChatDeleted,
		Payload: realtime.ChatDeletedPayload{ChatID: "c2"},
	})
	assert.Equal(t, "c1", ctrl.Selected())
	assert.Contains(t, sess.joined, "c1")
}

func TestRefreshMarksIncomingRead(t *testing.T) {
	api := newFakeAPI()
	api.chats["me"] = chatList("c1")
	api.messages["c1"] = []models.Message{
		{MessageID: "m1", SenderID: "other-c1", Content: "hi", Status: models.StatusDelivered},
		{MessageID: "m2", SenderID: "me", Content: "mine", Status: models.StatusDelivered},
		{MessageID: "m3", SenderID: "other-c1", Content: "old", Status: models.StatusRead},
	}
	ctrl := NewController(api, nil, "me")
	require.NoError(t, ctrl.Open(context.Background()))

	assert.Equal(t, []string{"m1"}, api.marked, "only the other side's delivered messages get marked")
	window := ctrl.Window()
	assert.Equal(t, models.StatusRead, window[0].Status)
	assert.Equal(t, models.StatusDelivered, window[1].Status)
}
