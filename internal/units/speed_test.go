package units

import (
	"math"
	"testing"
)

func TestMPSFromKMH(t *testing.T) {
	got := MPSFromKMH(54)
	if math.Abs(got-15.0) > 1e-9 {
		t.Fatalf("MPSFromKMH(54) = %v, want 15", got)
	}
}

func TestConvertSpeedMPSPassthrough(t *testing.T) {
	for _, unit := range ValidUnits {
		converted := ConvertSpeed(15, unit)
		if unit == MPS && converted != 15 {
			t.Fatalf("mps passthrough changed value: %v", converted)
		}
	}
}

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		name     string
		speedMPS float64
		unit     string
		expected float64
	}{
		{"1 m/s to mph", 1.0, MPH, 2.23694},
		{"1 m/s to kmph", 1.0, KMPH, 3.6},
		{"5 m/s to mps", 5.0, MPS, 5.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertSpeed(tt.speedMPS, tt.unit)
			if math.Abs(got-tt.expected) > 1e-4 {
				t.Errorf("ConvertSpeed(%v, %s) = %v, want %v", tt.speedMPS, tt.unit, got, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(MPS) || IsValid("furlongs/fortnight") {
		t.Fatal("IsValid misbehaved")
	}
}
