package extract_test

import (
	"reflect"
	"testing"

	"github.com/pulsekit/vitalvoice/pkg/extract"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       extract.Metrics
	}{
		{
			name:       "blood pressure spoken",
			transcript: "My blood pressure is 120 over 80",
			want:       extract.Metrics{extract.BloodPressure: "120/80"},
		},
		{
			name:       "blood pressure with slash",
			transcript: "bp 135/85 this morning",
			want:       extract.Metrics{extract.BloodPressure: "135/85"},
		},
		{
			name:       "bare N over M",
			transcript: "it was 118 over 76",
			want:       extract.Metrics{extract.BloodPressure: "118/76"},
		},
		{
			name:       "heart rate with unit",
			transcript: "heart rate 72 beats per minute",
			want:       extract.Metrics{extract.HeartRate: "72"},
		},
		{
			name:       "pulse keyword",
			transcript: "my pulse is 65 today",
			want:       extract.Metrics{extract.HeartRate: "65"},
		},
		{
			name:       "weight and temperature",
			transcript: "I weigh 150 pounds and my temperature is 98.6 degrees",
			want: extract.Metrics{
				extract.Weight:      "150",
				extract.Temperature: "98.6",
			},
		},
		{
			name:       "bp numbers excluded from heart rate",
			transcript: "blood pressure 120 over 80 heart rate 72",
			want: extract.Metrics{
				extract.BloodPressure: "120/80",
				extract.HeartRate:     "72",
			},
		},
		{
			name:       "diastolic never re-read as pulse",
			transcript: "pressure was 140 over 90",
			want:       extract.Metrics{extract.BloodPressure: "140/90"},
		},
		{
			name:       "glucose",
			transcript: "blood sugar is 110 after lunch",
			want:       extract.Metrics{extract.BloodGlucose: "110"},
		},
		{
			name:       "glucose with unit",
			transcript: "measured 95 mg/dl",
			want:       extract.Metrics{extract.BloodGlucose: "95"},
		},
		{
			name:       "glucose skips number claimed by bp",
			transcript: "blood pressure 120 over 80 and sugar 80",
			want:       extract.Metrics{extract.BloodPressure: "120/80"},
		},
		{
			name:       "temperature skips number claimed by glucose",
			transcript: "glucose 99 and 99 degrees",
			want:       extract.Metrics{extract.BloodGlucose: "99"},
		},
		{
			name:       "weight in kilograms",
			transcript: "about 70 kg now",
			want:       extract.Metrics{extract.Weight: "70"},
		},
		{
			name:       "no numeric content",
			transcript: "I feel pretty good today, thanks for asking",
			want:       extract.Metrics{},
		},
		{
			name:       "empty transcript",
			transcript: "",
			want:       extract.Metrics{},
		},
		{
			name:       "all five metrics",
			transcript: "blood pressure 122 over 81, heart rate 70, I weigh 180 pounds, glucose is 105, temp is 99.1",
			want: extract.Metrics{
				extract.BloodPressure: "122/81",
				extract.HeartRate:     "70",
				extract.Weight:        "180",
				extract.BloodGlucose:  "105",
				extract.Temperature:   "99.1",
			},
		},
		{
			name:       "implausible values still extracted",
			transcript: "heart rate 500",
			want:       extract.Metrics{extract.HeartRate: "500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extract.Extract(tt.transcript)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.transcript, got, tt.want)
			}
		})
	}
}

func TestExtractIsPure(t *testing.T) {
	transcript := "blood pressure 120 over 80 heart rate 72"
	first := extract.Extract(transcript)
	second := extract.Extract(transcript)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated extraction differs: %v vs %v", first, second)
	}
}

func TestMetricTypeUnit(t *testing.T) {
	units := map[extract.MetricType]string{
		extract.BloodPressure: "mmHg",
		extract.BloodGlucose:  "mg/dL",
		extract.HeartRate:     "bpm",
		extract.Temperature:   "°F",
		extract.Weight:        "lbs",
	}
	for m, want := range units {
		if got := m.Unit(); got != want {
			t.Errorf("%s unit = %q, want %q", m, got, want)
		}
	}
	if extract.MetricType("steps").Valid() {
		t.Error("unexpected valid metric type")
	}
}
