package obstacle

import "testing"

func TestNoiseField_RangeAndDeterminism(t *testing.T) {
	a := NewNoiseField(DefaultNoiseConfig())
	b := NewNoiseField(DefaultNoiseConfig())

	for i := 0; i < 200; i++ {
		x := float64(i) * 3.7
		y := float64(i%13) * 0.01
		va := a.Eval(x, y)
		if va < -1 || va > 1 {
			t.Fatalf("Noise value %f at (%f, %f) outside [-1, 1]", va, x, y)
		}
		if vb := b.Eval(x, y); vb != va {
			t.Fatalf("Identically seeded fields differ at (%f, %f): %f vs %f", x, y, va, vb)
		}
	}
}

func TestNoiseField_SingleOctaveFloor(t *testing.T) {
	field := NewNoiseField(NoiseConfig{Frequency: 1, Octaves: 0, Lacunarity: 2, Persistence: 0.5})
	if field.config.Octaves != 1 {
		t.Errorf("Expected octave count to be raised to 1, got %d", field.config.Octaves)
	}
}

func TestDiskTexture_DensityNeverNegative(t *testing.T) {
	texture := &DiskTexture{
		RMin:           3,
		NoiseAmplitude: 5,
		Noise:          NewNoiseField(DefaultNoiseConfig()),
	}
	for r := 3.0; r < 40; r += 0.37 {
		if d := texture.Density(r, 1.5); d < 0 {
			t.Fatalf("Density(%f) = %f is negative", r, d)
		}
	}
}
