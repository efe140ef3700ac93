package obstacle

import (
	"math"
	"testing"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
)

func TestBlackbodyColor(t *testing.T) {
	tests := []struct {
		name     string
		kelvin   float64
		expected core.Vec3
	}{
		{"Zero", 0, blackbodyTable[0]},
		{"Negative clamps", -500, blackbodyTable[0]},
		{"NaN clamps", math.NaN(), blackbodyTable[0]},
		{"Exact entry", 3000, blackbodyTable[3]},
		{"Midpoint", 2500, blackbodyTable[2].Add(blackbodyTable[3]).Multiply(0.5)},
		{"Table maximum", 20000, blackbodyTable[20]},
		{"Above table clamps", 1e6, blackbodyTable[20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlackbodyColor(tt.kelvin)
			if got.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestBlackbodyTableCoverage(t *testing.T) {
	if MaxTableTemperature < 20000 {
		t.Errorf("Table must cover at least 20000 K, covers %f", MaxTableTemperature)
	}
}

func TestLuminosity(t *testing.T) {
	const rMin = 3.0

	if Luminosity(rMin, rMin) != 0 {
		t.Error("Expected zero luminosity at the inner edge")
	}
	if Luminosity(1, rMin) != 0 {
		t.Error("Expected zero luminosity inside the inner edge")
	}

	peak := Luminosity(rMin*49.0/36.0, rMin)
	if math.Abs(peak-1) > 1e-12 {
		t.Errorf("Expected normalized peak 1, got %f", peak)
	}

	for _, r := range []float64{3.5, 5, 10, 50} {
		if l := Luminosity(r, rMin); l < 0 || l > 1+1e-12 {
			t.Errorf("Luminosity(%f) = %f outside [0, 1]", r, l)
		}
	}
}

func TestTemperature(t *testing.T) {
	if Temperature(0, 6000) != 0 {
		t.Error("Expected zero temperature for zero luminosity")
	}
	if got := Temperature(1, 6000); got != 6000 {
		t.Errorf("Expected peak temperature at unit luminosity, got %f", got)
	}
	if got := Temperature(1.0/16.0, 6000); math.Abs(got-3000) > 1e-9 {
		t.Errorf("Expected quarter-power scaling to give 3000 K, got %f", got)
	}
}
