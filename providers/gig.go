package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/nexsys-it/protego-backend/api/auth"
	"github.com/nexsys-it/protego-backend/api/models"
)

const (
	gigProductsURL = "https://apigw.pp.atom.gig-gulf.com/apis/travel/v1/products"
	gigNamePattern = "*gulf*"
)

// gigCoverIDs maps canonical coverage fields to GIG cover IDs. GIG never
// reports a personal accident cover, so that field stays nil.
var gigCoverIDs = map[string]string{
	"emergency_medical_amount":     "ZT01",
	"repatriation_expenses_amount": "ZT02",
	"delayed_departure_amount":     "ZT209",
	"delayed_baggage_amount":       "ZT210",
	"loss_of_id_amount":            "ZT213",
}

var gigAreaOfCoverage = map[string]CodeValue{
	"uae inbound": {Code: "IB", Value: "Inbound"},
	"worldwide":   {Code: "WWXUC", Value: "Worldwide excluding USA/Canada"},
	"schengen":    {Code: "SCH", Value: "Schengen"},
}

type GIGPolicySchedule struct {
	CreationDate   string    `json:"creationDate"`
	EffectiveDate  string    `json:"effectiveDate"`
	ExpirationDate string    `json:"expirationDate"`
	PolicyType     CodeValue `json:"policyType"`
}

type GIGTravelInformation struct {
	OriginCountry        CodeValue   `json:"originCountry"`
	DestinationCountries []CodeValue `json:"destinationCountries"`
	AreaOfCoverage       CodeValue   `json:"areaOfCoverage"`
}

type GIGPerson struct {
	BirthDate string    `json:"birthDate"`
	Gender    CodeValue `json:"gender"`
}

type GIGInsuredMember struct {
	Person GIGPerson `json:"person"`
}

// GIGQuoteRequest is the body the GIG products endpoint expects.
type GIGQuoteRequest struct {
	PolicySchedule              GIGPolicySchedule    `json:"policySchedule"`
	TravelInformation           GIGTravelInformation `json:"travelInformation"`
	InsuredMembers              []GIGInsuredMember   `json:"insuredMembers"`
	SchemeID                    string               `json:"schemeId"`
	BranchID                    CodeValue            `json:"branchId"`
	IncludeOriginalPremium      string               `json:"includeOriginalPremium"`
	IncludeOptionalCoverPremium string               `json:"includeOptionalCoverPremium"`
}

type GIGAdapter struct {
	ProductsURL string
	Tokens      auth.TokenSource
	Client      *http.Client
}

func NewGIGAdapter(tokens auth.TokenSource) *GIGAdapter {
	return &GIGAdapter{
		ProductsURL: gigProductsURL,
		Tokens:      tokens,
		Client:      &http.Client{Timeout: quoteTimeout},
	}
}

func (a *GIGAdapter) Key() string { return "gig" }

func gigErrorResult(format string, args ...any) models.QuoteResult {
	msg := fmt.Sprintf(format, args...)
	return models.QuoteResult{
		Insurer:     "GIG",
		InsurerName: "GIG Gulf",
		Plans:       []models.PlanCard{},
		Error:       &msg,
	}
}

func (a *GIGAdapter) GetQuotes(ctx context.Context, req *models.TravelInsuranceRequest) models.QuoteResult {
	gigRequest, err := BuildGIGRequest(req)
	if err != nil {
		return gigErrorResult("Failed to build GIG request: %v", err)
	}

	token, err := a.Tokens.Token(ctx, gigNamePattern)
	if err != nil || token == "" {
		return gigErrorResult("Missing or invalid GIG token")
	}

	body, _ := json.Marshal(gigRequest)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.ProductsURL, bytes.NewReader(body))
	if err != nil {
		return gigErrorResult("Request to GIG failed: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("opCo", "uae")

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return gigErrorResult("Request to GIG failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gigErrorResult("Request to GIG failed: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result := gigErrorResult("GIG returned HTTP %d", resp.StatusCode)
		result.RawInsurerResponse = string(raw)
		return result
	}

	var respData map[string]any
	if err := json.Unmarshal(raw, &respData); err != nil {
		result := gigErrorResult("Invalid JSON from GIG")
		result.RawInsurerResponse = map[string]any{"error": "Invalid JSON", "raw": string(raw)}
		return result
	}

	plansRaw, _ := respData["eligiblePlans"].([]any)
	log.Printf("[GIG] Received %d eligible plans", len(plansRaw))

	mapped := []models.PlanCard{}
	for _, p := range plansRaw {
		plan, ok := p.(map[string]any)
		if !ok {
			continue
		}
		mapped = append(mapped, MapGIGPlanCard(plan))
	}

	return models.QuoteResult{
		Insurer:     "GIG",
		InsurerName: "GIG Gulf",
		Plans:       mapped,
	}
}

// BuildGIGRequest translates the canonical request into GIG's products
// request. On an inbound trip the origin is the caller's departure country
// and the destination is the UAE; outbound flips both.
func BuildGIGRequest(req *models.TravelInsuranceRequest) (*GIGQuoteRequest, error) {
	travel := req.TravelDetails

	if _, err := parseISODate(travel.TravelDates.StartDate); err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", travel.TravelDates.StartDate, err)
	}
	if _, err := parseISODate(travel.TravelDates.EndDate); err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", travel.TravelDates.EndDate, err)
	}
	startISO := travel.TravelDates.StartDate
	endISO := travel.TravelDates.EndDate

	coverageType := strings.ToLower(strings.TrimSpace(travel.CoverageType))

	var origin, destination CodeValue
	if coverageType == "uae inbound" {
		origin = countryToCodeAndName(travel.Departure)
		destination = countryCodes["uae"]
	} else {
		origin = countryCodes["uae"]
		destination = countryToCodeAndName(travel.Destination)
	}

	area, ok := gigAreaOfCoverage[coverageType]
	if !ok {
		area = CodeValue{Code: "IB", Value: "Inbound"}
	}

	members := make([]GIGInsuredMember, 0, len(travel.Travellers))
	for _, t := range travel.Travellers {
		members = append(members, GIGInsuredMember{
			Person: GIGPerson{
				BirthDate: t.DateOfBirth,
				Gender:    CodeValue{Code: "M", Value: "Male"},
			},
		})
	}

	return &GIGQuoteRequest{
		PolicySchedule: GIGPolicySchedule{
			CreationDate:   startISO + "T00:00:01",
			EffectiveDate:  startISO + "T00:00:00",
			ExpirationDate: endISO + "T23:59:59",
			PolicyType:     CodeValue{Code: "1", Value: "Single Trip"},
		},
		TravelInformation: GIGTravelInformation{
			OriginCountry:        origin,
			DestinationCountries: []CodeValue{destination},
			AreaOfCoverage:       area,
		},
		InsuredMembers:              members,
		SchemeID:                    "64824A00001",
		BranchID:                    CodeValue{Code: "13", Value: "Dubai"},
		IncludeOriginalPremium:      "true",
		IncludeOptionalCoverPremium: "true",
	}, nil
}

// MapGIGPlanCard normalizes one raw GIG plan into the canonical plan card.
func MapGIGPlanCard(plan map[string]any) models.PlanCard {
	var name string
	if product, ok := plan["product"].(map[string]any); ok {
		name, _ = product["value"].(string)
	}

	covers, _ := plan["covers"].([]any)

	amount := func(field string) *string {
		coverID, ok := gigCoverIDs[field]
		if !ok {
			return nil
		}
		return extractGIGAmount(findCoverByID(covers, coverID))
	}

	return models.PlanCard{
		InsurerCode:  "GIG",
		InsurerName:  "GIG Gulf",
		PlanName:     name,
		Currency:     "AED",
		PremiumTotal: extractGIGPremium(plan),
		CoverageSummary: models.CoverageSummary{
			Emergency: models.EmergencyCovers{
				EmergencyMedicalAmount: amount("emergency_medical_amount"),
				DelayedDepartureAmount: amount("delayed_departure_amount"),
			},
			Accident: models.AccidentCovers{
				PersonalAccidentAmount:     nil, // GIG does not expose this cover
				RepatriationExpensesAmount: amount("repatriation_expenses_amount"),
			},
			Additional: models.AdditionalCovers{
				DelayedBaggageAmount: amount("delayed_baggage_amount"),
				LossOfIDAmount:       amount("loss_of_id_amount"),
			},
		},
	}
}

// extractGIGPremium reads the plan premium, preferring the premium block,
// then originalPremium, then the first cover-level premium.
func extractGIGPremium(plan map[string]any) *float64 {
	premiumBlock, _ := plan["premium"].(map[string]any)
	if premiumBlock == nil {
		premiumBlock, _ = plan["originalPremium"].(map[string]any)
	}
	if premiumBlock != nil {
		if premiumData, ok := premiumBlock["premium"].(map[string]any); ok {
			if amount, ok := premiumData["amount"].(float64); ok && amount != 0 {
				return &amount
			}
		}
	}

	covers, _ := plan["covers"].([]any)
	for _, c := range covers {
		cover, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if cp, ok := cover["coverPremium"].(map[string]any); ok {
			if amount, ok := cp["amount"].(float64); ok && amount != 0 {
				return &amount
			}
		}
	}
	return nil
}

// extractGIGAmount prefers the cover's structured sum insured, falling back
// to the first benefit limit, else nil.
func extractGIGAmount(cover map[string]any) *string {
	if cover == nil {
		return nil
	}

	if sumInsured, ok := cover["sumInsured"].(map[string]any); ok {
		if amount, ok := sumInsured["amount"].(float64); ok {
			return strPtr("AED " + formatThousands(int(amount)))
		}
	}

	if benefits, _ := cover["benefits"].([]any); len(benefits) > 0 {
		if first, ok := benefits[0].(map[string]any); ok {
			if limit, ok := first["limit"].(string); ok && limit != "" {
				return &limit
			}
		}
	}
	return nil
}
