package scene

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecode_DegreesAndDefaults(t *testing.T) {
	doc := `{
		"name": "tilted",
		"width": 64,
		"camera": {"distance": 2500, "thetaDeg": 80, "rollDeg": 90, "fovXDeg": 60, "fovYDeg": 30},
		"disk": {"kind": "ring", "innerRadius": 250, "outerRadius": 1500, "temperature": 4000}
	}`

	s, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	const tolerance = 1e-12
	if math.Abs(s.Camera.Theta-80*math.Pi/180) > tolerance {
		t.Errorf("Expected theta in radians, got %f", s.Camera.Theta)
	}
	if math.Abs(s.Camera.Roll-math.Pi/2) > tolerance {
		t.Errorf("Expected roll pi/2, got %f", s.Camera.Roll)
	}
	if math.Abs(s.Camera.FovX-math.Pi/3) > tolerance || math.Abs(s.Camera.FovY-math.Pi/6) > tolerance {
		t.Errorf("Unexpected field of view (%f, %f)", s.Camera.FovX, s.Camera.FovY)
	}
	if s.Width != 64 || s.Height != 200 {
		t.Errorf("Expected 64x200 with preset height, got %dx%d", s.Width, s.Height)
	}
	if s.Disk.Kind != DiskRing || s.Disk.Temperature != 4000 || s.Disk.Brightness != 255 {
		t.Errorf("Unexpected disk %+v", s.Disk)
	}
	if s.MaxSteps != 1000 || s.Exposure != 2.5 {
		t.Errorf("Expected preset integration defaults, got %d steps and exposure %g", s.MaxSteps, s.Exposure)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Decoded scene should be valid: %v", err)
	}
}

func TestDecode_PresetAndRadius(t *testing.T) {
	s, err := Decode(strings.NewReader(`{"preset": "bare", "horizonRadius": 1}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.Name != PresetBare || s.Disk.Kind != DiskNone {
		t.Errorf("Expected bare preset, got %s with %s disk", s.Name, s.Disk.Kind)
	}
	if s.Camera.Distance != 30 {
		t.Errorf("Expected preset scaled to radius 1, camera at %g", s.Camera.Distance)
	}
}

func TestDecode_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{"Malformed", `{"width": `},
		{"Unknown field", `{"widht": 10}`},
		{"Unknown preset", `{"preset": "wormhole"}`},
		{"Wrong type", `{"width": "wide"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tc.doc)); err == nil {
				t.Errorf("Expected error for %s", tc.doc)
			}
		})
	}
}

func TestEncodeThenLoad(t *testing.T) {
	original := NewRingScene(50)
	original.Camera.Yaw = 0.3
	original.PredictHorizon = true

	var buf bytes.Buffer
	if err := Encode(&buf, original); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var raw struct {
		Camera struct {
			ThetaDeg float64 `json:"thetaDeg"`
		} `json:"camera"`
	}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("Encoded scene is not JSON: %v", err)
	}
	if math.Abs(raw.Camera.ThetaDeg-81.9) > 1e-9 {
		t.Errorf("Expected theta of 81.9 degrees, got %f", raw.Camera.ThetaDeg)
	}

	path := filepath.Join(t.TempDir(), "ring.json")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if math.Abs(loaded.Camera.Yaw-0.3) > 1e-12 || math.Abs(loaded.Camera.Theta-original.Camera.Theta) > 1e-12 {
		t.Errorf("Angles did not survive: %+v vs %+v", loaded.Camera, original.Camera)
	}
	loaded.Camera = original.Camera
	if loaded != original {
		t.Errorf("Expected %+v, got %+v", original, loaded)
	}
}

func TestLoad_InvalidScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"width": -1}`), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "image size") {
		t.Errorf("Expected validation error, got %v", err)
	}
}
