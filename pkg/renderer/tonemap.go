package renderer

import (
	"image"
	"image/color"
	"math"
)

// ToneMap converts a radiance buffer into displayable 8-bit color. Every channel is
// normalized by the buffer's global maximum, scaled by exposure, raised to gamma
// and mapped to [0, 255]. An all-black buffer maps to black.
func ToneMap(buffer *Radiance, exposure, gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, buffer.Width, buffer.Height))
	peak := buffer.Max()

	for y := 0; y < buffer.Height; y++ {
		for x := 0; x < buffer.Width; x++ {
			c := buffer.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: toneChannel(c.X, peak, exposure, gamma),
				G: toneChannel(c.Y, peak, exposure, gamma),
				B: toneChannel(c.Z, peak, exposure, gamma),
				A: 255,
			})
		}
	}
	return img
}

func toneChannel(value, peak, exposure, gamma float64) uint8 {
	if peak <= 0 || value <= 0 {
		return 0
	}
	v := math.Pow(value/peak*exposure, gamma) * 255
	if math.IsNaN(v) {
		return 0
	}
	// Round to the nearest level so a normalized 1.0 lands on 255
	return uint8(math.Round(max(0, min(255, v))))
}
