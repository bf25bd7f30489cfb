package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/surya16122114/roomies-radar/internal/apperr"
)

func respondOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondError(c *fiber.Ctx, log *zap.SugaredLogger, err error) error {
	ae := apperr.From(err)
	if ae.Status >= 500 {
		log.Errorw("request failed", "path", c.Path(), "err", err)
	} else {
		log.Debugw("request rejected", "path", c.Path(), "code", ae.Code, "err", err)
	}
	return c.Status(ae.Status).JSON(fiber.Map{
		"success": false,
		"code":    ae.Code,
		"message": ae.Message,
	})
}
