package handlers

import (
	"github.com/arnold/habits-api/internal/middleware"
	"github.com/arnold/habits-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.svc.Categories.List(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(categories)
}

func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var req models.CreateCategoryRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	category, err := h.svc.Categories.Create(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *Handler) UpdateCategory(c *fiber.Ctx) error {
	categoryID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateCategoryRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	category, err := h.svc.Categories.Update(c.UserContext(), middleware.GetUserID(c), categoryID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(category)
}

func (h *Handler) DeleteCategory(c *fiber.Ctx) error {
	categoryID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Categories.Delete(c.UserContext(), middleware.GetUserID(c), categoryID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
