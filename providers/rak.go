package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/nexsys-it/protego-backend/api/auth"
	"github.com/nexsys-it/protego-backend/api/models"
)

const (
	rakRatingURL   = "https://uat-connect.rakinsurance.com/api/travel/gettravelrating"
	rakNamePattern = "*rak*"
)

// rakCoverIDs maps canonical coverage fields to RAK cover IDs.
var rakCoverIDs = map[string]string{
	// Emergency block
	"emergency_medical_amount": "1200", // Emergency Medical Expenses
	"delayed_departure_amount": "1211", // Delayed Departure

	// Accident block
	"personal_accident_amount":     "1219", // Personal Accident / common carrier
	"repatriation_expenses_amount": "1181", // Repatriation of mortal remains

	// Additional block
	"personal_liability_amount": "1222", // Personal Civil Liability
	"delayed_baggage_amount":    "1217", // Delay of luggage
	"loss_of_id_amount":         "1212", // Loss of passport / ID documents
}

type RAKTravellerInfo struct {
	Name     string  `json:"name"`
	Relation *string `json:"relation"`
	DOB      string  `json:"dob"`
}

// RAKQuoteRequest is the body the RAK travel rating endpoint expects.
type RAKQuoteRequest struct {
	TripStartDate  string             `json:"tripStartDate"`
	TripEndDate    string             `json:"tripEndDate"`
	TripDuration   int                `json:"tripDuration"`
	TravelType     string             `json:"travelType"`
	Destination    string             `json:"destination"`
	Departure      string             `json:"departure"`
	TripType       string             `json:"tripType"`
	Traveller      string             `json:"traveller"`
	NoOfTravellers string             `json:"noOfTravellers"`
	Travelling     string             `json:"travelling"`
	Coverage       string             `json:"coverage"`
	IncWorldwide   bool               `json:"incWorldwide"`
	TravellerInfo  []RAKTravellerInfo `json:"travellerInfo"`
	Email          string             `json:"email"`
	ContactNo      string             `json:"contactNo"`
}

type RAKAdapter struct {
	RatingURL string
	Tokens    auth.TokenSource
	Client    *http.Client
}

func NewRAKAdapter(tokens auth.TokenSource) *RAKAdapter {
	return &RAKAdapter{
		RatingURL: rakRatingURL,
		Tokens:    tokens,
		Client:    &http.Client{Timeout: quoteTimeout},
	}
}

func (a *RAKAdapter) Key() string { return "rak" }

func rakErrorResult(format string, args ...any) models.QuoteResult {
	msg := fmt.Sprintf(format, args...)
	return models.QuoteResult{
		Insurer:     "RAK",
		InsurerName: "RAK Insurance",
		Plans:       []models.PlanCard{},
		Error:       &msg,
	}
}

func (a *RAKAdapter) GetQuotes(ctx context.Context, req *models.TravelInsuranceRequest) models.QuoteResult {
	rakRequest, err := BuildRAKRequest(req)
	if err != nil {
		return rakErrorResult("Failed to build RAK request: %v", err)
	}

	token, err := a.Tokens.Token(ctx, rakNamePattern)
	if err != nil || token == "" {
		return rakErrorResult("Missing or invalid RAK token")
	}

	body, _ := json.Marshal(rakRequest)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.RatingURL, bytes.NewReader(body))
	if err != nil {
		return rakErrorResult("Request to RAK failed: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return rakErrorResult("Request to RAK failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return rakErrorResult("Request to RAK failed: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result := rakErrorResult("RAK returned HTTP %d", resp.StatusCode)
		result.RawInsurerResponse = string(raw)
		return result
	}

	var plansRaw []any
	if err := json.Unmarshal(raw, &plansRaw); err != nil {
		result := rakErrorResult("Invalid JSON from RAK")
		result.RawInsurerResponse = map[string]any{"error": "Invalid JSON", "raw": string(raw)}
		return result
	}

	log.Printf("[RAK] Received %d raw plans", len(plansRaw))

	mapped := []models.PlanCard{}
	for _, p := range plansRaw {
		plan, ok := p.(map[string]any)
		if !ok {
			continue
		}
		name, _ := plan["planName"].(string)
		if name == "" || plan["total"] == nil {
			continue
		}
		mapped = append(mapped, MapRAKPlanCard(plan))
	}

	return models.QuoteResult{
		Insurer:            "RAK",
		InsurerName:        "RAK Insurance",
		Plans:              mapped,
		RawInsurerResponse: plansRaw,
	}
}

// BuildRAKRequest translates the canonical request into RAK's rating
// request. Pure transformation, no I/O.
func BuildRAKRequest(req *models.TravelInsuranceRequest) (*RAKQuoteRequest, error) {
	travel := req.TravelDetails

	start, err := parseISODate(travel.TravelDates.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", travel.TravelDates.StartDate, err)
	}
	end, err := parseISODate(travel.TravelDates.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", travel.TravelDates.EndDate, err)
	}
	tripDuration := daysInclusive(start, end)

	planType := strings.ToLower(travel.PlanType)
	tripType := "Single"
	if strings.Contains(planType, "annual") || strings.Contains(planType, "amt") {
		tripType = "Annual"
	}

	travellerLabel := travel.CoverType
	if travellerLabel == "" {
		if len(travel.Travellers) == 1 {
			travellerLabel = "Individual"
		} else {
			travellerLabel = "Family"
		}
	}

	coverageType := strings.ToLower(strings.TrimSpace(travel.CoverageType))
	travelType := "Outbound"
	if coverageType == "uae inbound" {
		travelType = "Inbound"
	}

	return &RAKQuoteRequest{
		TripStartDate:  travel.TravelDates.StartDate,
		TripEndDate:    travel.TravelDates.EndDate,
		TripDuration:   tripDuration,
		TravelType:     travelType,
		Destination:    travel.Destination,
		Departure:      travel.Departure,
		TripType:       tripType,
		Traveller:      travellerLabel,
		NoOfTravellers: strconv.Itoa(len(travel.Travellers)),
		Travelling:     "Yes",
		Coverage:       strconv.Itoa(tripDuration),
		IncWorldwide:   coverageType == "worldwide",
		TravellerInfo:  mapRAKTravellers(travel.Travellers),
		Email:          req.PersonalDetails.Email,
		ContactNo:      req.PersonalDetails.MobileNumber,
	}, nil
}

func mapRAKTravellers(travellers []models.Traveller) []RAKTravellerInfo {
	out := make([]RAKTravellerInfo, 0, len(travellers))
	for _, t := range travellers {
		name := strings.TrimSpace(strings.TrimSpace(t.FirstName) + " " + strings.TrimSpace(t.LastName))
		var relation *string
		if t.Relation != "" {
			relation = strPtr(t.Relation)
		}
		out = append(out, RAKTravellerInfo{Name: name, Relation: relation, DOB: t.DateOfBirth})
	}
	// A lone traveller with no stated relation is the policyholder.
	if len(out) == 1 && out[0].Relation == nil {
		out[0].Relation = strPtr("Self")
	}
	return out
}

// MapRAKPlanCard normalizes one raw RAK plan into the canonical plan card.
func MapRAKPlanCard(plan map[string]any) models.PlanCard {
	name, _ := plan["planName"].(string)

	var premium *float64
	if total, ok := plan["total"].(float64); ok {
		premium = &total
	}

	amount := func(field string) *string {
		coverID, ok := rakCoverIDs[field]
		if !ok {
			return nil
		}
		covers, _ := plan["covers"].([]any)
		return extractRAKAmount(findCoverByID(covers, coverID))
	}

	return models.PlanCard{
		InsurerCode:  "RAK",
		InsurerName:  "RAKINSURANCE",
		PlanName:     name,
		Currency:     "AED",
		PremiumTotal: premium,
		CoverageSummary: models.CoverageSummary{
			Emergency: models.EmergencyCovers{
				EmergencyMedicalAmount: amount("emergency_medical_amount"),
				DelayedDepartureAmount: amount("delayed_departure_amount"),
			},
			Accident: models.AccidentCovers{
				PersonalAccidentAmount:     amount("personal_accident_amount"),
				RepatriationExpensesAmount: amount("repatriation_expenses_amount"),
			},
			Additional: models.AdditionalCovers{
				PersonalLiabilityAmount: amount("personal_liability_amount"),
				DelayedBaggageAmount:    amount("delayed_baggage_amount"),
				LossOfIDAmount:          amount("loss_of_id_amount"),
			},
		},
	}
}

// extractRAKAmount prefers the cover's first structured value, falling back
// to its benefit limit, else nil.
func extractRAKAmount(cover map[string]any) *string {
	if cover == nil {
		return nil
	}

	if values, _ := cover["values"].([]any); len(values) > 0 {
		if first, ok := values[0].(map[string]any); ok {
			raw := strings.TrimSpace(fmt.Sprintf("%v", first["value"]))
			if raw != "" && raw != "<nil>" {
				if strings.Contains(strings.ToLower(raw), "usd") {
					return &raw
				}
				return strPtr("USD " + raw)
			}
		}
	}

	if limit, ok := cover["limit"].(float64); ok && limit > 0 {
		return strPtr("USD " + formatThousands(int(limit)))
	}
	return nil
}
