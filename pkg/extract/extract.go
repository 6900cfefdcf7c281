package extract

import (
	"regexp"
	"strings"
)

// Rule evaluation order is load-bearing: blood pressure claims its two
// numbers before heart rate runs, and glucose/temperature refuse
// numbers already claimed by an earlier rule. Reordering the rules
// changes which metric wins a shared numeric token.

var bloodPressurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:blood\s+pressure|\bbp\b|\bpressure\b)(?:\s+is)?\s+(\d{2,3})\s*(?:over|/)\s*(\d{2,3})`),
	regexp.MustCompile(`\b(\d{2,3})\s*(?:over|/)\s*(\d{2,3})\b`),
}

var heartRatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:heart\s+rate|\bpulse\b|\bhr\b)(?:\s+is)?\s+(\d{2,3})\b`),
	regexp.MustCompile(`\b(\d{2,3})\s*(?:beats\s+per\s+minute|bpm)\b`),
}

var weightPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:\bweight\b|\bweigh\b)(?:\s+is)?\s+(\d{2,3}(?:\.\d+)?)\b`),
	regexp.MustCompile(`\b(\d{2,3}(?:\.\d+)?)\s*(?:pounds|lbs|kilograms|kg)\b`),
}

var glucosePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:blood\s+glucose|blood\s+sugar|\bglucose\b|\bsugar\b)(?:\s+is)?\s+(\d{2,3})\b`),
	regexp.MustCompile(`\b(\d{2,3})\s*(?:mg/dl|milligrams)\b`),
}

var temperaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:\btemperature\b|\btemp\b)(?:\s+is)?\s+(\d{2,3}(?:\.\d+)?)\b`),
	regexp.MustCompile(`\b(\d{2,3}(?:\.\d+)?)\s*(?:degrees|fahrenheit|celsius)\b`),
}

// Extract runs the ordered pattern rules over a transcript and returns
// the detected metrics. It is a pure function: no side effects,
// case-insensitive, at most one value per metric type.
func Extract(transcript string) Metrics {
	text := strings.ToLower(transcript)
	found := Metrics{}

	// Numbers claimed by earlier rules, checked by glucose and
	// temperature below.
	var claimed []string

	// 1. Blood pressure first: it owns both of its numbers.
	var bpSys, bpDia string
	for _, re := range bloodPressurePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			bpSys, bpDia = m[1], m[2]
			found[BloodPressure] = bpSys + "/" + bpDia
			claimed = append(claimed, bpSys, bpDia)
			break
		}
	}

	// 2. Heart rate: skip a match whose number is a component of the
	// recorded blood-pressure pair, so "120 over 80" never re-reads
	// as a pulse of 120 or 80.
	for _, re := range heartRatePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if m[1] == bpSys || m[1] == bpDia {
			continue
		}
		found[HeartRate] = m[1]
		claimed = append(claimed, m[1])
		break
	}

	// 3. Weight. Does not check numbers claimed by earlier rules.
	for _, re := range weightPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			found[Weight] = m[1]
			claimed = append(claimed, m[1])
			break
		}
	}

	// 4. Blood glucose: skip numbers already claimed.
	for _, re := range glucosePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if isClaimed(claimed, m[1]) {
			continue
		}
		found[BloodGlucose] = m[1]
		claimed = append(claimed, m[1])
		break
	}

	// 5. Temperature: same de-duplication as glucose.
	for _, re := range temperaturePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if isClaimed(claimed, m[1]) {
			continue
		}
		found[Temperature] = m[1]
		break
	}

	return found
}

func isClaimed(claimed []string, value string) bool {
	for _, c := range claimed {
		if c == value {
			return true
		}
	}
	return false
}
