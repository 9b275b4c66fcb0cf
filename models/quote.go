package models

// EmergencyCovers, AccidentCovers and AdditionalCovers together form the
// fixed coverage summary every adapter must fill. A nil field means the
// insurer's response carried no matching cover, not an error.
type EmergencyCovers struct {
	EmergencyMedicalAmount *string `json:"emergency_medical_amount"`
	DelayedDepartureAmount *string `json:"delayed_departure_amount"`
}

type AccidentCovers struct {
	PersonalAccidentAmount     *string `json:"personal_accident_amount"`
	RepatriationExpensesAmount *string `json:"repatriation_expenses_amount"`
}

type AdditionalCovers struct {
	PersonalLiabilityAmount *string `json:"personal_liability_amount,omitempty"`
	DelayedBaggageAmount    *string `json:"delayed_baggage_amount"`
	LossOfIDAmount          *string `json:"loss_of_id_amount"`
}

type CoverageSummary struct {
	Emergency  EmergencyCovers  `json:"emergency"`
	Accident   AccidentCovers   `json:"accident"`
	Additional AdditionalCovers `json:"additional"`
}

// PlanCard is one normalized insurance plan offer in the canonical shape.
type PlanCard struct {
	InsurerCode     string          `json:"insurer_code"`
	InsurerName     string          `json:"insurer_name"`
	PlanName        string          `json:"plan_name"`
	Currency        string          `json:"currency"`
	PremiumTotal    *float64        `json:"premium_total"`
	CoverageSummary CoverageSummary `json:"coverage_summary"`
}

// QuoteResult is the outcome of one provider job. Exactly one is produced
// per configured provider per request; it is built synchronously inside the
// job and published whole.
type QuoteResult struct {
	Insurer            string     `json:"insurer"`
	InsurerName        string     `json:"insurer_name"`
	Plans              []PlanCard `json:"plans"`
	RawInsurerResponse any        `json:"raw_insurer_response,omitempty"`
	Error              *string    `json:"error"`
}

// QuoteEvent is what gets published to the audit queue for every emitted
// provider result, and what the consumer indexes into Elasticsearch.
type QuoteEvent struct {
	API      string       `json:"api"`
	Response *QuoteResult `json:"response,omitempty"`
	Error    string       `json:"error,omitempty"`
}
