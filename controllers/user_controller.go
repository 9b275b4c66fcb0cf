package controllers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexsys-it/protego-backend/api/config"
	"github.com/nexsys-it/protego-backend/api/models"
	"github.com/nexsys-it/protego-backend/api/utils"
)

var ctx = context.Background()

func userKey(email string) string { return "user:" + email }

func Register(c *fiber.Ctx) error {
	var payload models.UserCreate
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}
	if payload.Email == "" || payload.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
	}

	exists, err := config.RedisClient.Exists(ctx, userKey(payload.Email)).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store data"})
	}
	if exists > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := models.User{
		Email:          payload.Email,
		FullName:       payload.FullName,
		HashedPassword: string(hashed),
	}
	userJSON, _ := json.Marshal(user)
	if err := config.RedisClient.Set(ctx, userKey(user.Email), userJSON, 0).Err(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store data"})
	}

	token, err := utils.CreateAccessToken(user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.Status(fiber.StatusCreated).JSON(models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        models.TokenUser{Email: user.Email, Name: user.FullName},
	})
}

// Me returns the profile of the authenticated user.
func Me(c *fiber.Ctx) error {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	email, _ := claims["sub"].(string)

	val, err := config.RedisClient.Get(ctx, userKey(email)).Result()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read user"})
	}

	return c.Status(fiber.StatusOK).JSON(models.TokenUser{Email: user.Email, Name: user.FullName})
}

func Login(c *fiber.Ctx) error {
	var payload models.UserCreate
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	val, err := config.RedisClient.Get(ctx, userKey(payload.Email)).Result()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to read user"})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(payload.Password)) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := utils.CreateAccessToken(user.Email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.Status(fiber.StatusOK).JSON(models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        models.TokenUser{Email: user.Email, Name: user.FullName},
	})
}
