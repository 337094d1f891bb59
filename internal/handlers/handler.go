package handlers

import (
	"context"
	"errors"
	"log"
	"reflect"
	"strings"
	"time"
	_ "time/tzdata" // X-Timezone must resolve on hosts without zoneinfo

	"github.com/arnold/habits-api/internal/calendar"
	"github.com/arnold/habits-api/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TimezoneHeader carries the caller's IANA zone; it decides what "today" is.
const TimezoneHeader = "X-Timezone"

type Handler struct {
	svc      *services.Services
	hub      *Hub
	secret   string
	validate *validator.Validate
}

func New(svc *services.Services, hub *Hub, jwtSecret string) *Handler {
	validate := validator.New()
	// Report JSON field names, not Go ones.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{svc: svc, hub: hub, secret: jwtSecret, validate: validate}
}

// parseBody decodes and validates the request body into out.
func (h *Handler) parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fiber.NewError(fiber.StatusBadRequest, "Invalid field "+fe.Field()+": failed "+fe.Tag())
		}
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// queryDay parses an optional YYYY-MM-DD query value; zero when absent.
func queryDay(c *fiber.Ctx, name string) (calendar.Day, error) {
	raw := c.Query(name)
	if raw == "" {
		return calendar.Day{}, nil
	}
	day, err := calendar.Parse(raw)
	if err != nil {
		return calendar.Day{}, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name+", expected YYYY-MM-DD")
	}
	return day, nil
}

// requestContext carries the caller's timezone into the services.
func requestContext(c *fiber.Ctx) (context.Context, error) {
	ctx := c.UserContext()
	zone := strings.TrimSpace(c.Get(TimezoneHeader))
	if zone == "" {
		return ctx, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Unknown timezone "+zone)
	}
	return services.WithLocation(ctx, loc), nil
}

// ErrorHandler renders errors returned from handlers as {"error": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return serviceError(c, err)
}

// serviceError writes the response for an error returned by a service.
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, services.ErrUnprocessable):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	}

	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
