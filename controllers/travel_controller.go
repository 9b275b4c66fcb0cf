package controllers

import (
	"bufio"
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/nexsys-it/protego-backend/api/models"
	"github.com/nexsys-it/protego-backend/api/providers"
	"github.com/nexsys-it/protego-backend/api/rabbitmq"
	"github.com/nexsys-it/protego-backend/api/utils"
)

type TravelController struct {
	Registry   *providers.Registry
	Publisher  *rabbitmq.Factory
	SchemaPath string
}

func NewTravelController(registry *providers.Registry, publisher *rabbitmq.Factory) *TravelController {
	return &TravelController{
		Registry:   registry,
		Publisher:  publisher,
		SchemaPath: "./schemas/travel_request.json",
	}
}

// GetQuotes fans the canonical request out to every registered insurer and
// streams each result back as a server-sent event the moment it completes.
// One event per insurer, success or error, then the stream ends.
func (tc *TravelController) GetQuotes(c *fiber.Ctx) error {
	body := c.Body()

	valid, violations, err := utils.ValidateJSON(body, tc.SchemaPath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to validate request"})
	}
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format", "details": violations})
	}

	var req models.TravelInsuranceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request format"})
	}

	jobs := make([]utils.SSEJob, 0, len(tc.Registry.All()))
	for _, adapter := range tc.Registry.All() {
		a := adapter
		jobs = append(jobs, utils.SSEJob{
			Name: a.Key(),
			Run: func(ctx context.Context) (any, error) {
				// provider failures ride inside the QuoteResult; an error
				// return here would only come from a panic upstream
				return a.GetQuotes(ctx, &req), nil
			},
		})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	publisher := tc.Publisher
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// No request-scoped deadline: an abandoned client must not cancel
		// in-flight insurer calls mid-stream.
		events := utils.FanOut(context.Background(), jobs)

		audited := make(chan utils.SSEEvent, len(jobs))
		go func() {
			for ev := range events {
				if publisher != nil {
					if err := publisher.PublishMessage(rabbitmq.QuoteEventsQueue, ev); err != nil {
						log.Printf("[QUOTES] Failed to publish audit event for %s: %v", ev.API, err)
					}
				}
				audited <- ev
			}
			close(audited)
		}()

		utils.WriteSSE(w, audited)
	}))

	return nil
}
