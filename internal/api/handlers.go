package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/surya16122114/roomies-radar/internal/apperr"
	"github.com/surya16122114/roomies-radar/internal/models"
	"github.com/surya16122114/roomies-radar/internal/service"
)

const handlerTimeout = 5 * time.Second

type Handlers struct {
	svc *service.ChatService
	log *zap.SugaredLogger
}

func NewHandlers(svc *service.ChatService, log *zap.SugaredLogger) *Handlers {
	return &Handlers{svc: svc, log: log}
}

func (h *Handlers) withTimeout(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), handlerTimeout)
}

// POST /chats
func (h *Handlers) resolveOrCreateChat(c *fiber.Ctx) error {
	var body struct {
		User1ID string `json:"user1Id"`
		User2ID string `json:"user2Id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, h.log, apperr.Validation("invalid request body"))
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	chat, err := h.svc.ResolveOrCreateChat(ctx, body.User1ID, body.User2ID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, chat)
}

// GET /chats/:userId
func (h *Handlers) getAllChats(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	chats, err := h.svc.GetAllChats(ctx, c.Params("userId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, chats)
}

// GET /chats/:chatId/messages
func (h *Handlers) getMessages(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	msgs, err := h.svc.GetMessages(ctx, c.Params("chatId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, msgs)
}

// POST /chats/:chatId/messages
func (h *Handlers) sendMessage(c *fiber.Ctx) error {
	var body struct {
		Content  string `json:"content"`
		SenderID string `json:"senderId"`
		// status is accepted for compatibility with older clients but
		// ignored: new messages always start delivered
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, h.log, apperr.Validation("invalid request body"))
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	seq, err := h.svc.SendMessage(ctx, c.Params("chatId"), body.SenderID, body.Content)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, seq)
}

// PUT /chats/:chatId/messages/:messageId/messageStatus
func (h *Handlers) updateMessageStatus(c *fiber.Ctx) error {
	var body struct {
		Status models.MessageStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, h.log, apperr.Validation("invalid request body"))
	}
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	msg, err := h.svc.UpdateMessageStatus(ctx, c.Params("chatId"), c.Params("messageId"), body.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, msg)
}

// DELETE /chats/:chatId/messages/:messageId
func (h *Handlers) deleteMessage(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	msg, err := h.svc.DeleteMessage(ctx, c.Params("chatId"), c.Params("messageId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, fiber.Map{
		"message":        "Message deleted successfully",
		"deletedMessage": msg,
	})
}

// DELETE /chats/:chatId
func (h *Handlers) deleteChat(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	chat, err := h.svc.DeleteChat(ctx, c.Params("chatId"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, fiber.Map{
		"message":     "Chat deleted successfully",
		"deletedChat": chat,
	})
}

// GET /chats/search?name=
func (h *Handlers) searchUsers(c *fiber.Ctx) error {
	ctx, cancel := h.withTimeout(c)
	defer cancel()
	users, err := h.svc.SearchUsers(ctx, c.Query("name"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return respondOK(c, users)
}
