package obstacle

import (
	"math"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
)

// blackbodyStep is the temperature spacing of blackbodyTable in kelvin
const blackbodyStep = 1000.0

// blackbodyTable holds normalized RGB for blackbody emitters at index*1000 K
var blackbodyTable = [...]core.Vec3{
	{X: 0.00, Y: 0.00, Z: 0.00}, // 0 K
	{X: 1.00, Y: 0.22, Z: 0.00},
	{X: 1.00, Y: 0.54, Z: 0.17},
	{X: 1.00, Y: 0.71, Z: 0.42},
	{X: 1.00, Y: 0.82, Z: 0.64},
	{X: 1.00, Y: 0.89, Z: 0.81}, // 5000 K
	{X: 1.00, Y: 0.95, Z: 0.94},
	{X: 0.96, Y: 0.95, Z: 1.00},
	{X: 0.89, Y: 0.91, Z: 1.00},
	{X: 0.84, Y: 0.88, Z: 1.00},
	{X: 0.80, Y: 0.85, Z: 1.00}, // 10000 K
	{X: 0.77, Y: 0.83, Z: 1.00},
	{X: 0.75, Y: 0.82, Z: 1.00},
	{X: 0.73, Y: 0.80, Z: 1.00},
	{X: 0.71, Y: 0.79, Z: 1.00},
	{X: 0.70, Y: 0.78, Z: 1.00}, // 15000 K
	{X: 0.68, Y: 0.77, Z: 1.00},
	{X: 0.67, Y: 0.77, Z: 1.00},
	{X: 0.66, Y: 0.76, Z: 1.00},
	{X: 0.65, Y: 0.75, Z: 1.00},
	{X: 0.64, Y: 0.75, Z: 1.00}, // 20000 K
}

// MaxTableTemperature is the hottest temperature the lookup table resolves; hotter values clamp to it
const MaxTableTemperature = blackbodyStep * float64(len(blackbodyTable)-1)

// BlackbodyColor returns the normalized RGB of a blackbody at the given temperature,
// linearly interpolated between table entries. Out-of-range temperatures are clamped.
func BlackbodyColor(kelvin float64) core.Vec3 {
	if math.IsNaN(kelvin) || kelvin <= 0 {
		return blackbodyTable[0]
	}
	if kelvin >= MaxTableTemperature {
		return blackbodyTable[len(blackbodyTable)-1]
	}

	x := kelvin / blackbodyStep
	i := int(x)
	f := x - float64(i)
	lo, hi := blackbodyTable[i], blackbodyTable[i+1]
	return lo.Multiply(1 - f).Add(hi.Multiply(f))
}

// luminosityPeak is the maximum of (1 - sqrt(x)) * x^3 over x in (0, 1], reached at x = 36/49
var luminosityPeak = (1.0 / 7.0) * math.Pow(36.0/49.0, 3)

// Luminosity returns the thin-disk emission profile (1 - sqrt(rMin/r)) * (rMin/r)^3
// normalized so its peak is 1. It is zero inside rMin.
func Luminosity(r, rMin float64) float64 {
	if r <= rMin || rMin <= 0 {
		return 0
	}
	x := rMin / r
	return (1 - math.Sqrt(x)) * x * x * x / luminosityPeak
}

// Temperature maps a normalized luminosity to an effective temperature, T ∝ L^(1/4)
func Temperature(luminosity, peakTemperature float64) float64 {
	if luminosity <= 0 {
		return 0
	}
	return peakTemperature * math.Pow(luminosity, 0.25)
}
