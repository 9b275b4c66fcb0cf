package main

import (
	"context"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/nexsys-it/protego-backend/api/auth"
	"github.com/nexsys-it/protego-backend/api/config"
	"github.com/nexsys-it/protego-backend/api/controllers"
	"github.com/nexsys-it/protego-backend/api/providers"
	"github.com/nexsys-it/protego-backend/api/rabbitmq"
	"github.com/nexsys-it/protego-backend/api/routes"
	"github.com/nexsys-it/protego-backend/api/store"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Print("No .env file found, using environment")
	}

	config.InitRedis()

	credentials := store.NewRedisCredentialStore(config.RedisClient)
	if err := store.SeedProviderCredentials(context.Background(), credentials); err != nil {
		log.Fatalf("Failed to seed provider credentials: %s", err)
	}

	tokens := auth.NewService(credentials)
	registry := providers.NewRegistry(
		providers.NewRAKAdapter(tokens),
		providers.NewGIGAdapter(tokens),
	)

	travel := controllers.NewTravelController(registry, rabbitmq.NewFactory())

	app := fiber.New()
	routes.SetupRoutes(app, travel)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	log.Fatal(app.Listen(addr))
}
