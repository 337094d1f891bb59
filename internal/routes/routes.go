package routes

import (
	"github.com/arnold/habits-api/internal/handlers"
	"github.com/arnold/habits-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func Setup(app *fiber.App, h *handlers.Handler, jwtSecret string) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)

	protected := api.Group("/", middleware.Protected(jwtSecret))

	protected.Get("/me", h.GetMe)

	categories := protected.Group("/categories")
	categories.Get("/", h.GetCategories)
	categories.Post("/", h.CreateCategory)
	categories.Put("/:id", h.UpdateCategory)
	categories.Delete("/:id", h.DeleteCategory)

	habits := protected.Group("/habits")
	habits.Get("/", h.GetHabits)
	habits.Post("/", h.CreateHabit)
	habits.Get("/stats", h.GetHabitStats)
	habits.Get("/:id", h.GetHabit)
	habits.Put("/:id", h.UpdateHabit)
	habits.Delete("/:id", h.DeleteHabit)
	habits.Post("/:id/check", h.CheckHabit)
	habits.Delete("/:id/check", h.UncheckHabit)

	goals := protected.Group("/goals")
	goals.Get("/", h.GetGoals)
	goals.Post("/", h.CreateGoal)
	goals.Get("/:id", h.GetGoal)
	goals.Put("/:id", h.UpdateGoal)
	goals.Delete("/:id", h.DeleteGoal)
	goals.Get("/:id/stats", h.GetGoalStats)
	goals.Get("/:id/progress", h.GetGoalProgress)
	goals.Post("/:id/progress", h.AddGoalProgress)
	goals.Delete("/:id/progress/:logId", h.RemoveGoalProgress)

	protected.Get("/history", h.GetHistory)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.GetNotifications)
	notifications.Put("/:id/read", h.MarkNotificationRead)
	notifications.Post("/read-all", h.MarkAllRead)

	// Device token for push notifications
	protected.Post("/device-token", h.RegisterDeviceToken)

	// WebSocket for live progress updates
	app.Use("/ws", h.WebSocketUpgrade())
	app.Get("/ws", websocket.New(h.HandleWebSocket))
}
