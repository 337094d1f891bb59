package handlers

import (
	"github.com/arnold/habits-api/internal/middleware"
	"github.com/arnold/habits-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetHabits returns every habit of the user merged with its stats.
func (h *Handler) GetHabits(c *fiber.Ctx) error {
	ctx, err := requestContext(c)
	if err != nil {
		return err
	}

	habits, err := h.svc.Habits.List(ctx, middleware.GetUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(habits)
}

func (h *Handler) GetHabit(c *fiber.Ctx) error {
	habitID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, err := requestContext(c)
	if err != nil {
		return err
	}

	habit, err := h.svc.Habits.Get(ctx, middleware.GetUserID(c), habitID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(habit)
}

// GetHabitStats returns stats keyed by habit id, without the definitions.
func (h *Handler) GetHabitStats(c *fiber.Ctx) error {
	ctx, err := requestContext(c)
	if err != nil {
		return err
	}

	stats, err := h.svc.Stats.ComputeHabitStats(ctx, middleware.GetUserID(c), nil)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}

func (h *Handler) CreateHabit(c *fiber.Ctx) error {
	var req models.CreateHabitRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	habit, err := h.svc.Habits.Create(c.UserContext(), middleware.GetUserID(c), req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(habit)
}

func (h *Handler) UpdateHabit(c *fiber.Ctx) error {
	habitID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateHabitRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	habit, err := h.svc.Habits.Update(c.UserContext(), middleware.GetUserID(c), habitID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(habit)
}

func (h *Handler) DeleteHabit(c *fiber.Ctx) error {
	habitID, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Habits.Delete(c.UserContext(), middleware.GetUserID(c), habitID); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CheckHabit marks the habit done. The body is optional; without a date the
// caller's today is used.
func (h *Handler) CheckHabit(c *fiber.Ctx) error {
	habitID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx, err := requestContext(c)
	if err != nil {
		return err
	}

	var req models.CheckHabitRequest
	if len(c.Body()) > 0 {
		if err := h.parseBody(c, &req); err != nil {
			return err
		}
	}

	habit, err := h.svc.HabitCompletion.CheckHabit(ctx, middleware.GetUserID(c), habitID, req.Date)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(habit)
}

// UncheckHabit takes the day as ?date=YYYY-MM-DD, today when absent.
func (h *Handler) UncheckHabit(c *fiber.Ctx) error {
	habitID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	day, err := queryDay(c, "date")
	if err != nil {
		return err
	}
	ctx, err := requestContext(c)
	if err != nil {
		return err
	}

	userID := middleware.GetUserID(c)
	if err := h.svc.HabitCompletion.UncheckHabit(ctx, userID, habitID, day); err != nil {
		return serviceError(c, err)
	}

	habit, err := h.svc.Habits.Get(ctx, userID, habitID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(habit)
}
