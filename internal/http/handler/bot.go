package handler

import (
	"github.com/gofiber/fiber/v2"

	"sessionvault/internal/model"
	"sessionvault/internal/service"
)

type restoreResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
}

type qrResponse struct {
	Success bool   `json:"success"`
	QRCode  string `json:"qr_code"`
	Message string `json:"message"`
}

// GetBotStatus returns the bot status, creating the default record on first call.
//
// @Summary  Get bot status
// @Tags     bot
// @Produce  json
// @Success  200 {object} model.BotStatus
// @Router   /api/bot/status [get]
func GetBotStatus(svc service.StatusService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Get(c.UserContext())
		if err != nil {
			return writeServiceError(c, "Failed to get bot status", err)
		}
		return c.JSON(st)
	}
}

// SetBotStatus replaces the bot status with the JSON body.
//
// @Summary  Update bot status
// @Tags     bot
// @Accept   json
// @Produce  json
// @Param    status body model.BotStatus true "new status"
// @Success  200 {object} messageResponse
// @Failure  400 {object} errorPayload
// @Router   /api/bot/status [post]
func SetBotStatus(svc service.StatusService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var st model.BotStatus
		if err := c.BodyParser(&st); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid status body")
		}
		if err := svc.Set(c.UserContext(), st); err != nil {
			return writeServiceError(c, "Failed to update bot status", err)
		}
		return c.JSON(messageResponse{Success: true, Message: "Bot status updated successfully"})
	}
}

// RestoreSession downloads the newest session file and flags the status as restored.
// An empty store is reported with success=false and HTTP 200.
//
// @Summary  Restore the latest session
// @Tags     bot
// @Produce  json
// @Success  200 {object} restoreResponse
// @Failure  503 {object} errorPayload
// @Router   /api/bot/restore-session [post]
func RestoreSession(svc service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.RestoreLatest(c.UserContext())
		if err != nil {
			return writeServiceError(c, "Session restoration failed", err)
		}
		if !res.Restored {
			return c.JSON(restoreResponse{Success: false, Message: res.Message})
		}
		return c.JSON(restoreResponse{Success: true, Message: res.Message, Filename: res.File.Filename})
	}
}

// GenerateQR issues a mock pairing token.
//
// @Summary  Generate a mock QR token
// @Tags     bot
// @Produce  json
// @Success  200 {object} qrResponse
// @Router   /api/bot/generate-qr [post]
func GenerateQR(svc service.StatusService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := svc.GenerateQR(c.UserContext())
		if err != nil {
			return writeServiceError(c, "QR generation failed", err)
		}
		return c.JSON(qrResponse{
			Success: true,
			QRCode:  token,
			Message: "QR code generated (mock for demonstration)",
		})
	}
}

// ConnectBot simulates a completed WhatsApp pairing.
//
// @Summary  Simulate a WhatsApp connection
// @Tags     bot
// @Produce  json
// @Success  200 {object} messageResponse
// @Router   /api/bot/connect [post]
func ConnectBot(svc service.StatusService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := svc.Connect(c.UserContext()); err != nil {
			return writeServiceError(c, "Connect failed", err)
		}
		return c.JSON(messageResponse{Success: true, Message: "WhatsApp connected successfully (simulated)"})
	}
}
