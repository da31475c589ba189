// Package courts holds the read-only court catalogue: each court's search
// endpoints, the case types it accepts, and how it gates access with a CAPTCHA.
package courts

import "slices"

// CaptchaStrategy describes how a court's site gates case searches.
type CaptchaStrategy string

const (
	CaptchaManual  CaptchaStrategy = "manual"
	CaptchaBypass  CaptchaStrategy = "bypass"
	CaptchaService CaptchaStrategy = "service"
)

// Valid reports whether s is a known strategy.
func (s CaptchaStrategy) Valid() bool {
	switch s {
	case CaptchaManual, CaptchaBypass, CaptchaService:
		return true
	}
	return false
}

// Court is static reference data for one court.
type Court struct {
	Name            string          `json:"name" toml:"name"`
	BaseURL         string          `json:"base_url" toml:"base_url"`
	SearchURL       string          `json:"search_url" toml:"search_url"`
	CaseTypes       []string        `json:"case_types" toml:"case_types"`
	CaptchaStrategy CaptchaStrategy `json:"captcha_strategy" toml:"captcha_strategy"`
}

// AllowsCaseType reports whether caseType is accepted by the court.
func (c Court) AllowsCaseType(caseType string) bool {
	return slices.Contains(c.CaseTypes, caseType)
}

// Defaults returns the built-in court catalogue.
func Defaults() []Court {
	return []Court{
		{
			Name:      "Delhi High Court",
			BaseURL:   "https://delhihighcourt.nic.in",
			SearchURL: "https://delhihighcourt.nic.in/case_search.asp",
			CaseTypes: []string{
				"Civil Appeal",
				"Criminal Appeal",
				"Civil Writ Petition",
				"Criminal Writ Petition",
				"Company Petition",
				"Arbitration Petition",
				"Tax Appeal",
				"Service Matter",
				"Land Acquisition",
			},
			CaptchaStrategy: CaptchaManual,
		},
		{
			Name:      "Faridabad District Court",
			BaseURL:   "https://districts.ecourts.gov.in/faridabad",
			SearchURL: "https://districts.ecourts.gov.in/faridabad/case_search",
			CaseTypes: []string{
				"Civil Suit",
				"Criminal Case",
				"Matrimonial",
				"Recovery",
				"Motor Accident Claims",
				"Labour Dispute",
				"Revenue",
			},
			CaptchaStrategy: CaptchaManual,
		},
	}
}
