package handlers

import (
	"github.com/arnold/habits-api/internal/middleware"
	"github.com/arnold/habits-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetGoals lists goals with stats, optionally filtered by ?categoryId=.
func (h *Handler) GetGoals(c *fiber.Ctx) error {
	var categoryID *uuid.UUID
	if raw := c.Query("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid categoryId")
		}
		categoryID = &id
	}

	goals, err := h.svc.Goals.List(c.UserContext(), middleware.GetUserID(c), categoryID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(goals)
}

func (h *Handler) GetGoal(c *fiber.Ctx) error {
	goalID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	goal, err := h.svc.Goals.Get(c.UserContext(), middleware.GetUserID(c), goalID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(goal)
}

func (h *Handler) GetGoalStats(c *fiber.Ctx) error {
	goalID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	stats, err := h.svc.Stats.ComputeGoalStats(c.UserContext(), middleware.GetUserID(c), goalID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}

func (h *Handler) CreateGoal(c *fiber.Ctx) error {
	var req models.CreateGoalRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	goal, err := h.svc.Goals.Create(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (h *Handler) UpdateGoal(c *fiber.Ctx) error {
	goalID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateGoalRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	goal, err := h.svc.Goals.Update(c.UserContext(), middleware.GetUserID(c), goalID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(goal)
}

func (h *Handler) DeleteGoal(c *fiber.Ctx) error {
	goalID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Goals.Delete(c.UserContext(), middleware.GetUserID(c), goalID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) GetGoalProgress(c *fiber.Ctx) error {
	goalID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	entries, err := h.svc.Goals.ListProgress(c.UserContext(), middleware.GetUserID(c), goalID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(entries)
}

func (h *Handler) AddGoalProgress(c *fiber.Ctx) error {
	goalID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, err := requestContext(c)
	if err != nil {
		return err
	}

	var req models.AddGoalProgressRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	goal, err := h.svc.GoalCompletion.AddGoalProgress(ctx, middleware.GetUserID(c), goalID, req.Date, req.Value)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (h *Handler) RemoveGoalProgress(c *fiber.Ctx) error {
	goalID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	logID, err := paramID(c, "logId")
	if err != nil {
		return err
	}

	stats, err := h.svc.GoalCompletion.RemoveGoalProgress(c.UserContext(), middleware.GetUserID(c), goalID, logID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}
