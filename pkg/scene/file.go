package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/df07/go-schwarzschild-raytracer/pkg/obstacle"
)

// Scene files use degrees for every angle; the in-memory Scene uses radians.

type cameraFile struct {
	Distance float64 `json:"distance"`
	ThetaDeg float64 `json:"thetaDeg"`
	PhiDeg   float64 `json:"phiDeg"`
	PitchDeg float64 `json:"pitchDeg"`
	YawDeg   float64 `json:"yawDeg"`
	RollDeg  float64 `json:"rollDeg"`
	FovXDeg  float64 `json:"fovXDeg"`
	FovYDeg  float64 `json:"fovYDeg"`
}

type diskFile struct {
	Kind           DiskKind             `json:"kind"`
	InnerRadius    float64              `json:"innerRadius"`
	OuterRadius    float64              `json:"outerRadius"`
	Thickness      float64              `json:"thickness"`
	Temperature    float64              `json:"temperature"`
	Brightness     float64              `json:"brightness"`
	Opacity        float64              `json:"opacity"`
	NoiseAmplitude float64              `json:"noiseAmplitude"`
	Noise          obstacle.NoiseConfig `json:"noise"`
}

type sceneFile struct {
	Preset         string     `json:"preset,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Group          string     `json:"group,omitempty"` // Listing only
	HorizonRadius  float64    `json:"horizonRadius"`
	Speed          float64    `json:"speed"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Camera         cameraFile `json:"camera"`
	Disk           diskFile   `json:"disk"`
	CutoffRadius   float64    `json:"cutoffRadius"`
	PredictHorizon bool       `json:"predictHorizon"`
	RaysPerPixel   int        `json:"raysPerPixel"`
	MaxSteps       int        `json:"maxSteps"`
	StepSize       float64    `json:"stepSize"`
	Adaptive       bool       `json:"adaptive"`
	Seed           int64      `json:"seed"`
	Exposure       float64    `json:"exposure"`
	Gamma          float64    `json:"gamma"`
}

func deg(rad float64) float64 { return rad * 180 / math.Pi }
func rad(deg float64) float64 { return deg * math.Pi / 180 }

func toFile(s Scene) sceneFile {
	return sceneFile{
		Name:          s.Name,
		Description:   s.Description,
		HorizonRadius: s.HorizonRadius,
		Speed:         s.Speed,
		Width:         s.Width,
		Height:        s.Height,
		Camera: cameraFile{
			Distance: s.Camera.Distance,
			ThetaDeg: deg(s.Camera.Theta),
			PhiDeg:   deg(s.Camera.Phi),
			PitchDeg: deg(s.Camera.Pitch),
			YawDeg:   deg(s.Camera.Yaw),
			RollDeg:  deg(s.Camera.Roll),
			FovXDeg:  deg(s.Camera.FovX),
			FovYDeg:  deg(s.Camera.FovY),
		},
		Disk:           diskFile(s.Disk),
		CutoffRadius:   s.CutoffRadius,
		PredictHorizon: s.PredictHorizon,
		RaysPerPixel:   s.RaysPerPixel,
		MaxSteps:       s.MaxSteps,
		StepSize:       s.StepSize,
		Adaptive:       s.Adaptive,
		Seed:           s.Seed,
		Exposure:       s.Exposure,
		Gamma:          s.Gamma,
	}
}

func (f sceneFile) scene() Scene {
	return Scene{
		Name:          f.Name,
		Description:   f.Description,
		HorizonRadius: f.HorizonRadius,
		Speed:         f.Speed,
		Width:         f.Width,
		Height:        f.Height,
		Camera: Camera{
			Distance: f.Camera.Distance,
			Theta:    rad(f.Camera.ThetaDeg),
			Phi:      rad(f.Camera.PhiDeg),
			Pitch:    rad(f.Camera.PitchDeg),
			Yaw:      rad(f.Camera.YawDeg),
			Roll:     rad(f.Camera.RollDeg),
			FovX:     rad(f.Camera.FovXDeg),
			FovY:     rad(f.Camera.FovYDeg),
		},
		Disk:           Disk(f.Disk),
		CutoffRadius:   f.CutoffRadius,
		PredictHorizon: f.PredictHorizon,
		RaysPerPixel:   f.RaysPerPixel,
		MaxSteps:       f.MaxSteps,
		StepSize:       f.StepSize,
		Adaptive:       f.Adaptive,
		Seed:           f.Seed,
		Exposure:       f.Exposure,
		Gamma:          f.Gamma,
	}
}

// Decode reads a JSON scene. Fields missing from the document keep the values of
// the preset it names, or of the disk preset when it names none. The preset is
// built for the document's horizon radius when one is given.
func Decode(r io.Reader) (Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Scene{}, fmt.Errorf("failed to read scene: %w", err)
	}

	var header struct {
		Preset        string  `json:"preset"`
		HorizonRadius float64 `json:"horizonRadius"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return Scene{}, fmt.Errorf("failed to parse scene: %w", err)
	}
	if header.Preset == "" {
		header.Preset = PresetDisk
	}
	base, ok := Preset(header.Preset, header.HorizonRadius)
	if !ok {
		return Scene{}, fmt.Errorf("unknown preset %q", header.Preset)
	}

	file := toFile(base)
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return Scene{}, fmt.Errorf("failed to parse scene: %w", err)
	}
	return file.scene(), nil
}

// Load reads and validates a JSON scene file
func Load(path string) (Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scene{}, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Encode writes the scene as indented JSON with angles in degrees
func Encode(w io.Writer, s Scene) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toFile(s))
}

// MarshalScene returns the scene as compact JSON with angles in degrees
func MarshalScene(s Scene) ([]byte, error) {
	return json.Marshal(toFile(s))
}
