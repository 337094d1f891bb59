package handlers

import (
	"github.com/arnold/habits-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

const defaultHistoryDays = 30

// GetHistory returns the user's log entries between ?from= and ?to=
// (inclusive), defaulting to the last 30 days.
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	ctx, err := requestContext(c)
	if err != nil {
		return err
	}
	from, err := queryDay(c, "from")
	if err != nil {
		return err
	}
	to, err := queryDay(c, "to")
	if err != nil {
		return err
	}

	if to.IsZero() {
		to = h.svc.Calendar.Today(ctx)
	}
	if from.IsZero() {
		from = to.AddDays(-(defaultHistoryDays - 1))
	}

	entries, err := h.svc.Logs.ListBetween(ctx, middleware.GetUserID(c), from, to)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"from":    from,
		"to":      to,
		"entries": entries,
	})
}
