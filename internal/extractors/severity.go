package extractors

import "strings"

var severityKeywords = map[string][]string{
	"high": {
		"fire", "smoke", "shock", "burn", "hazard", "fatal",
		"critical", "power supply", "main motor", "laser exposure",
		"replace the fuser", "high voltage",
	},
	"low": {
		"notice", "information only", "cosmetic", "minor",
		"hint", "tip", "no action required",
	},
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"paper_handling", []string{"jam", "tray", "feed", "pickup", "registration", "duplex"}},
	{"fuser", []string{"fuser", "fixing", "heat roller", "thermistor"}},
	{"transfer", []string{"transfer", "itb", "intermediate belt"}},
	{"scanner", []string{"scanner", "ccd", "adf", "platen", "carriage"}},
	{"network", []string{"network", "ethernet", "wifi", "wireless", "dhcp"}},
	{"power", []string{"power", "voltage", "psu", "fan"}},
	{"consumables", []string{"toner", "cartridge", "drum", "developer", "waste"}},
}

// classifySeverity assigns high, medium or low by keyword lookup on the
// surrounding text. Everything not matched defaults to medium.
func classifySeverity(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range severityKeywords["high"] {
		if strings.Contains(lower, kw) {
			return "high"
		}
	}
	for _, kw := range severityKeywords["low"] {
		if strings.Contains(lower, kw) {
			return "low"
		}
	}
	return "medium"
}

// classifyCategory buckets an error code by the subsystem its context
// mentions, defaulting to general.
func classifyCategory(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.words {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return "general"
}
