package providers

import (
	"fmt"
	"strings"
	"time"
)

const (
	quoteTimeout  = 30 * time.Second
	isoDateLayout = "2006-01-02"
)

// CodeValue is the {code, value} pair several insurer APIs use for
// enumerated fields.
type CodeValue struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

var countryCodes = map[string]CodeValue{
	"uae":                  {Code: "ARE", Value: "United Arab Emirates"},
	"united arab emirates": {Code: "ARE", Value: "United Arab Emirates"},
	"australia":            {Code: "AUS", Value: "Australia"},
	"aus":                  {Code: "AUS", Value: "Australia"},
}

// countryToCodeAndName normalizes a free-text country against the lookup
// table. Unrecognized names pass through unchanged rather than being
// dropped, so an upstream can still reject or accept them itself.
func countryToCodeAndName(raw string) CodeValue {
	if raw == "" {
		return CodeValue{}
	}
	if mapped, ok := countryCodes[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return mapped
	}
	return CodeValue{Code: raw, Value: raw}
}

// daysInclusive counts trip days with both endpoints included.
func daysInclusive(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

func parseISODate(val string) (time.Time, error) {
	return time.Parse(isoDateLayout, val)
}

// formatThousands renders 1234567 as "1,234,567".
func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}

// findCoverByID locates a named benefit line item inside an insurer's raw
// covers list. Cover IDs are compared as strings since insurers are not
// consistent about numeric vs string IDs.
func findCoverByID(covers []any, coverID string) map[string]any {
	for _, c := range covers {
		m, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if fmt.Sprintf("%v", m["id"]) == coverID {
			return m
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }
