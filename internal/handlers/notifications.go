package handlers

import (
	"strconv"

	"github.com/arnold/habits-api/internal/middleware"
	"github.com/arnold/habits-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns paginated notifications for the current user
func (h *Handler) GetNotifications(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	result, err := h.svc.Notifications.List(c.UserContext(), middleware.GetUserID(c), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(result)
}

func (h *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	notifID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Notifications.MarkRead(c.UserContext(), middleware.GetUserID(c), notifID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.svc.Notifications.MarkAllRead(c.UserContext(), middleware.GetUserID(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// RegisterDeviceToken saves the FCM token for push notifications
func (h *Handler) RegisterDeviceToken(c *fiber.Ctx) error {
	var req models.DeviceTokenRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	if err := h.svc.Notifications.RegisterDeviceToken(c.UserContext(), middleware.GetUserID(c), req.Token); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
