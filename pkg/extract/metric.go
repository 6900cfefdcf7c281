// Package extract finds health-metric mentions in free-form transcribed
// speech. Extraction is a best-effort heuristic parse: matched values
// are returned as raw strings and are not validated for medical
// plausibility.
package extract

// MetricType identifies one of the tracked health-reading categories.
type MetricType string

const (
	BloodPressure MetricType = "blood_pressure"
	BloodGlucose  MetricType = "blood_glucose"
	HeartRate     MetricType = "heart_rate"
	Temperature   MetricType = "temperature"
	Weight        MetricType = "weight"
)

// All lists every metric type.
func All() []MetricType {
	return []MetricType{BloodPressure, BloodGlucose, HeartRate, Temperature, Weight}
}

// Unit returns the canonical unit for the metric type.
func (m MetricType) Unit() string {
	switch m {
	case BloodPressure:
		return "mmHg"
	case BloodGlucose:
		return "mg/dL"
	case HeartRate:
		return "bpm"
	case Temperature:
		return "°F"
	case Weight:
		return "lbs"
	default:
		return ""
	}
}

// Valid reports whether m is a known metric type.
func (m MetricType) Valid() bool {
	switch m {
	case BloodPressure, BloodGlucose, HeartRate, Temperature, Weight:
		return true
	}
	return false
}

// Metrics maps detected metric types to raw value strings. A missing
// key means the metric was not mentioned, not that it was zero.
type Metrics map[MetricType]string
