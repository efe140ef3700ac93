package output

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-schwarzschild-raytracer/pkg/core"
	"github.com/df07/go-schwarzschild-raytracer/pkg/geodesic"
	"github.com/df07/go-schwarzschild-raytracer/pkg/renderer"
	"github.com/df07/go-schwarzschild-raytracer/pkg/spacetime"
)

func TestRenderPath(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	got := RenderPath("output", "disk", now)
	want := filepath.Join("output", "disk", "render_20240309_140507.png")
	if got != want {
		t.Errorf("RenderPath = %q, want %q", got, want)
	}
}

func TestSavePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	path := filepath.Join(t.TempDir(), "nested", "dir", "out.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	decoded, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
	r, g, b, _ := decoded.At(2, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("pixel = (%d,%d,%d), want (10,20,30)", r>>8, g>>8, b>>8)
	}
}

func TestRadianceRoundTrip(t *testing.T) {
	buffer := renderer.NewRadiance(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			buffer.Set(x, y, core.NewVec3(float64(x)*1.5, float64(y)/3, 1e6+float64(x*y)))
		}
	}

	var encoded bytes.Buffer
	if err := WriteRadiance(&encoded, buffer); err != nil {
		t.Fatalf("WriteRadiance: %v", err)
	}
	decoded, err := ReadRadiance(&encoded)
	if err != nil {
		t.Fatalf("ReadRadiance: %v", err)
	}

	if decoded.Width != 4 || decoded.Height != 3 {
		t.Fatalf("size = %dx%d, want 4x3", decoded.Width, decoded.Height)
	}
	for i := range buffer.Pix {
		if decoded.Pix[i] != buffer.Pix[i] {
			t.Errorf("pixel %d = %v, want %v", i, decoded.Pix[i], buffer.Pix[i])
		}
	}
}

func TestSaveLoadRadiance(t *testing.T) {
	buffer := renderer.NewRadiance(2, 2)
	buffer.Set(1, 1, core.NewVec3(7, 8, 9))

	path := filepath.Join(t.TempDir(), "hdr", "render.srad")
	if err := SaveRadiance(path, buffer); err != nil {
		t.Fatalf("SaveRadiance: %v", err)
	}
	loaded, err := LoadRadiance(path)
	if err != nil {
		t.Fatalf("LoadRadiance: %v", err)
	}
	if got := loaded.At(1, 1); got != core.NewVec3(7, 8, 9) {
		t.Errorf("At(1,1) = %v, want (7,8,9)", got)
	}
	if loaded.Max() != 9 {
		t.Errorf("Max = %v, want 9", loaded.Max())
	}
}

func TestReadRadianceRejectsBadInput(t *testing.T) {
	var valid bytes.Buffer
	if err := WriteRadiance(&valid, renderer.NewRadiance(1, 1)); err != nil {
		t.Fatalf("WriteRadiance: %v", err)
	}
	truncated := valid.Bytes()[:valid.Len()/2]

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"not zstd", []byte(strings.Repeat("x", 64))},
		{"truncated", truncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadRadiance(bytes.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadRadianceWrongMagic(t *testing.T) {
	var encoded bytes.Buffer
	if err := WriteRadiance(&encoded, renderer.NewRadiance(1, 1)); err != nil {
		t.Fatalf("WriteRadiance: %v", err)
	}

	saved := radianceMagic
	radianceMagic = [4]byte{'N', 'O', 'P', 'E'}
	defer func() { radianceMagic = saved }()

	_, err := ReadRadiance(&encoded)
	if !errors.Is(err, ErrBadRadiance) {
		t.Errorf("err = %v, want ErrBadRadiance", err)
	}
}

func TestPathLogRecordsTrace(t *testing.T) {
	space := spacetime.NewSpace(1, 1)
	ray := geodesic.NewRay(core.NewVec4(0, 20, math.Pi/2, 0), math.Pi/2, 0, space)

	var encoded bytes.Buffer
	log := NewPathLog(&encoded, space)
	result := ray.Trace(space, geodesic.TraceConfig{MaxSteps: 25, StepSize: 0.1}, core.NewSeededSampler(1), log)
	if err := log.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if log.Steps() != result.Steps {
		t.Errorf("Steps() = %d, want %d", log.Steps(), result.Steps)
	}

	steps, err := ReadPathLog(&encoded)
	if err != nil {
		t.Fatalf("ReadPathLog: %v", err)
	}
	if len(steps) != result.Steps {
		t.Fatalf("read %d steps, want %d", len(steps), result.Steps)
	}

	for i, s := range steps {
		if s.Step != i+1 {
			t.Errorf("step %d has index %d", i, s.Step)
		}
		if s.StepSize != 0.1 {
			t.Errorf("step %d size = %v, want 0.1", i, s.StepSize)
		}
		if math.Abs(s.NullNorm) > 1e-6 {
			t.Errorf("step %d null norm = %v", i, s.NullNorm)
		}
	}

	last := steps[len(steps)-1]
	if last.Position != [4]float64(result.Final.Position) {
		t.Errorf("last position = %v, want %v", last.Position, result.Final.Position)
	}
	// Inward radial ray from r=20 loses radius every step
	if last.Position[core.R] >= 20 {
		t.Errorf("final radius %v did not decrease", last.Position[core.R])
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestPathLogReportsWriteError(t *testing.T) {
	space := spacetime.NewSpace(1, 1)
	log := NewPathLog(failingWriter{}, space)
	log.RecordStep(1, geodesic.NewRay(core.NewVec4(0, 10, math.Pi/2, 0), math.Pi/2, 0, space), 0.1)

	if err := log.Close(); err == nil {
		t.Error("expected Close to report the write error")
	}
}

func TestReadPathLogRejectsGarbage(t *testing.T) {
	if _, err := ReadPathLog(strings.NewReader("definitely not snappy")); err == nil {
		t.Error("expected error")
	}
}
