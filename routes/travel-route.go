package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nexsys-it/protego-backend/api/controllers"
	"github.com/nexsys-it/protego-backend/api/middleware"
)

func SetupRoutes(app *fiber.App, travel *controllers.TravelController) {
	api := app.Group("/api/v1")

	api.Post("/users/register", controllers.Register)
	api.Post("/users/login", controllers.Login)
	api.Get("/users/me", middleware.AuthMiddleware, controllers.Me)

	api.Post("/travel/get-quotes", travel.GetQuotes)
}
