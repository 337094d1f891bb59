package handlers

import (
	"github.com/arnold/habits-api/internal/middleware"
	"github.com/arnold/habits-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.svc.Users.Register(c.UserContext(), req)
	if err != nil {
		return serviceError(c, err)
	}

	token, err := middleware.GenerateToken(h.secret, user.ID, user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Token: token,
		User:  *user,
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.svc.Users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	token, err := middleware.GenerateToken(h.secret, user.ID, user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(models.AuthResponse{
		Token: token,
		User:  *user,
	})
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	user, err := h.svc.Users.Get(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}
