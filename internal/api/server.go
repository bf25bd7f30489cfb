package api

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/surya16122114/roomies-radar/internal/auth"
	"github.com/surya16122114/roomies-radar/internal/realtime"
	"github.com/surya16122114/roomies-radar/internal/service"
)

// NewServer wires the HTTP surface: the /chats REST routes, the /ws
// realtime endpoint, and a health probe. validator may be nil, which
// leaves the routes open (dev mode).
func NewServer(log *zap.SugaredLogger, svc *service.ChatService, hub *realtime.Hub, validator *auth.Validator) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "roomies-radar-chat",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		realtime.ServeConn(hub, log, conn)
	}))

	h := NewHandlers(svc, log)
	chats := app.Group("/chats")
	if validator != nil {
		chats.Use(BearerAuth(validator))
	}

	// /search must be registered before the /:userId wildcard
	chats.Get("/search", h.searchUsers)
	chats.Get("/:userId", h.getAllChats)
	chats.Get("/:chatId/messages", h.getMessages)
	chats.Post("/:chatId/messages", h.sendMessage)
	chats.Put("/:chatId/messages/:messageId/messageStatus", h.updateMessageStatus)
	chats.Delete("/:chatId/messages/:messageId", h.deleteMessage)
	chats.Delete("/:chatId", h.deleteChat)
	chats.Post("/", h.resolveOrCreateChat)

	return app
}
