package order

import "strings"

// Abnormal flag vocabulary. Labs send HL7 table 0078 codes, word forms or
// free text; the short codes and word forms collapse to one display name,
// anything else is stored verbatim.
var abnormalFlagNames = map[string]string{
	"h":            "High",
	"high":         "High",
	"l":            "Low",
	"low":          "Low",
	"hh":           "Panic High",
	"panic high":   "Panic High",
	"ll":           "Panic Low",
	"panic low":    "Panic Low",
	">":            "Alert High",
	"alert high":   "Alert High",
	"<":            "Alert Low",
	"alert low":    "Alert Low",
	"a":            "Abnormal",
	"abn":          "Abnormal",
	"abnormal":     "Abnormal",
	"aa":           "Critical",
	"crit":         "Critical",
	"critical":     "Critical",
	"s":            "Susceptible",
	"susceptible":  "Susceptible",
	"r":            "Resistant",
	"resistant":    "Resistant",
	"i":            "Intermediate",
	"intermediate": "Intermediate",
	"neg":          "Negative",
	"negative":     "Negative",
	"pos":          "Positive",
	"positive":     "Positive",
}

// NormalizeAbnormalFlag maps a lab-supplied flag to its display name.
// Unknown non-empty flags pass through unchanged.
func NormalizeAbnormalFlag(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return ""
	}
	if name, ok := abnormalFlagNames[key]; ok {
		return name
	}
	return strings.TrimSpace(raw)
}

// IsAbnormal reports whether a normalized flag counts toward the
// abnormal-result total. Empty and explicit normal flags do not.
func IsAbnormal(flag string) bool {
	switch strings.ToLower(flag) {
	case "", "n", "normal":
		return false
	}
	return true
}
