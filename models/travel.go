package models

// Traveller is one insured person on the trip.
type Traveller struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Relation    string `json:"relation,omitempty"`
}

type TravelDates struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type TravelDetails struct {
	CoverageType string      `json:"coverage_type"`
	PlanType     string      `json:"plan_type"`
	TravelDates  TravelDates `json:"travel_dates"`
	CoverType    string      `json:"cover_type"`
	Travellers   []Traveller `json:"travellers"`
	Departure    string      `json:"departure"`
	Destination  string      `json:"destination"`
}

type PersonalDetails struct {
	FirstName               string `json:"first_name"`
	LastName                string `json:"last_name"`
	MobileNumber            string `json:"mobile_number"`
	Email                   string `json:"email"`
	PartnerCode             string `json:"partner_code,omitempty"`
	FriendsAndFamilyContact string `json:"friends_and_family_contact,omitempty"`
	MarketingConsent        string `json:"marketing_consent"`
}

// TravelInsuranceRequest is the canonical quote request every insurer
// adapter translates from. Treated as immutable once it enters the pipeline.
type TravelInsuranceRequest struct {
	TravelDetails   TravelDetails   `json:"travel_details"`
	PersonalDetails PersonalDetails `json:"personal_details"`
}
