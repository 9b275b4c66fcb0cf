package controllers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexsys-it/protego-backend/api/models"
	"github.com/nexsys-it/protego-backend/api/providers"
)

type stubAdapter struct {
	key    string
	delay  time.Duration
	result models.QuoteResult
}

func (s *stubAdapter) Key() string { return s.key }

func (s *stubAdapter) GetQuotes(ctx context.Context, req *models.TravelInsuranceRequest) models.QuoteResult {
	time.Sleep(s.delay)
	return s.result
}

const validQuoteRequest = `{
	"travel_details": {
		"coverage_type": "Worldwide",
		"plan_type": "Single Trip",
		"travel_dates": {"start_date": "2026-09-01", "end_date": "2026-09-10"},
		"cover_type": "Individual",
		"travellers": [
			{"first_name": "Aisha", "last_name": "Khan", "date_of_birth": "1990-04-12"}
		],
		"departure": "UAE",
		"destination": "Australia"
	},
	"personal_details": {
		"first_name": "Aisha",
		"last_name": "Khan",
		"mobile_number": "+971500000000",
		"email": "aisha@example.com",
		"marketing_consent": "yes"
	}
}`

func quotesApp(t *testing.T, adapters ...providers.Adapter) *fiber.App {
	t.Helper()

	registry := providers.NewRegistry(adapters...)
	tc := NewTravelController(registry, nil)
	tc.SchemaPath = "../schemas/travel_request.json"

	app := fiber.New()
	app.Post("/api/v1/travel/get-quotes", tc.GetQuotes)
	return app
}

func TestGetQuotes_StreamsOneEventPerProvider(t *testing.T) {
	errMsg := "GIG returned HTTP 502"
	app := quotesApp(t,
		&stubAdapter{key: "rak", result: models.QuoteResult{
			Insurer: "RAK", InsurerName: "RAK Insurance", Plans: []models.PlanCard{{PlanName: "Silver"}},
		}},
		&stubAdapter{key: "gig", result: models.QuoteResult{
			Insurer: "GIG", InsurerName: "GIG Gulf", Plans: []models.PlanCard{}, Error: &errMsg,
		}},
	)

	req := httptest.NewRequest("POST", "/api/v1/travel/get-quotes", strings.NewReader(validQuoteRequest))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(body)

	assert.Equal(t, 2, strings.Count(out, "data: "))
	assert.Contains(t, out, `"api":"rak"`)
	assert.Contains(t, out, `"api":"gig"`)
	assert.Contains(t, out, "GIG returned HTTP 502")
	assert.Contains(t, out, `"plan_name":"Silver"`)
}

func TestGetQuotes_FastProviderStreamsFirst(t *testing.T) {
	app := quotesApp(t,
		&stubAdapter{key: "slow", delay: 300 * time.Millisecond, result: models.QuoteResult{Insurer: "SLOW"}},
		&stubAdapter{key: "fast", delay: 10 * time.Millisecond, result: models.QuoteResult{Insurer: "FAST"}},
	)

	req := httptest.NewRequest("POST", "/api/v1/travel/get-quotes", strings.NewReader(validQuoteRequest))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(body)

	fastAt := strings.Index(out, `"api":"fast"`)
	slowAt := strings.Index(out, `"api":"slow"`)
	require.GreaterOrEqual(t, fastAt, 0)
	require.GreaterOrEqual(t, slowAt, 0)
	assert.Less(t, fastAt, slowAt)
}

func TestGetQuotes_RejectsInvalidRequest(t *testing.T) {
	app := quotesApp(t, &stubAdapter{key: "rak"})

	req := httptest.NewRequest("POST", "/api/v1/travel/get-quotes", strings.NewReader(`{"travel_details": {}}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
