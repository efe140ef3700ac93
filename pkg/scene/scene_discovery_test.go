package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"thin-disk", "Thin Disk"},
		{"edge_on", "Edge On"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata(t *testing.T) {
	tempDir := t.TempDir()

	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name:    "complete.json",
			content: `{"name": "edge-on", "description": "Disk seen edge on", "group": "Studies"}`,
			expected: SceneInfo{
				ID:          "file:complete",
				Name:        "edge-on",
				DisplayName: "Edge On",
				Description: "Disk seen edge on",
				Group:       "Studies",
				Type:        "file",
			},
		},
		{
			name:    "no_metadata.json",
			content: `{"width": 64}`,
			expected: SceneInfo{
				ID:          "file:no_metadata",
				Name:        "no_metadata",
				DisplayName: "No Metadata",
				Group:       "Scene Files",
				Type:        "file",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tc.name)
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatalf("Failed to write test file: %v", err)
			}

			info, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata failed: %v", err)
			}

			tc.expected.FilePath = path
			if info != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, info)
			}
		})
	}
}

func TestListAllScenes(t *testing.T) {
	tempDir := t.TempDir()
	files := map[string]string{
		"b.json":      `{"name": "beta", "group": "Studies"}`,
		"a.json":      `{"name": "alpha", "group": "Studies"}`,
		"broken.json": `{"name": `,
		"notes.txt":   `not a scene`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	response, err := ListAllScenes(tempDir)
	if err != nil {
		t.Fatalf("ListAllScenes failed: %v", err)
	}

	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}
	if response.Groups[0].Name != "Presets" || len(response.Groups[0].Scenes) != 3 {
		t.Errorf("Expected presets first with 3 scenes, got %+v", response.Groups[0])
	}

	studies := response.Groups[1]
	if studies.Name != "Studies" || len(studies.Scenes) != 2 {
		t.Fatalf("Expected 2 studies, got %+v", studies)
	}
	if studies.Scenes[0].Name != "alpha" || studies.Scenes[1].Name != "beta" {
		t.Errorf("Expected studies sorted by display name, got %s, %s", studies.Scenes[0].Name, studies.Scenes[1].Name)
	}
}

func TestListSceneFiles_MissingDirectory(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(scenes) != 0 {
		t.Errorf("Expected no scenes, got %d", len(scenes))
	}
}

func TestResolve(t *testing.T) {
	tempDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tempDir, "small.json"), []byte(`{"name": "small", "width": 32, "height": 16}`), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	s, err := Resolve("file:small", tempDir, 0)
	if err != nil {
		t.Fatalf("Resolve file failed: %v", err)
	}
	if s.Width != 32 || s.Height != 16 || s.HorizonRadius != 100 {
		t.Errorf("Expected 32x16 at radius 100, got %dx%d at %g", s.Width, s.Height, s.HorizonRadius)
	}

	scaled, err := Resolve("file:small", tempDir, 25)
	if err != nil {
		t.Fatalf("Resolve scaled file failed: %v", err)
	}
	if scaled.HorizonRadius != 25 || scaled.Camera.Distance != 750 || scaled.StepSize != 10 {
		t.Errorf("Expected file scene rescaled to radius 25, got radius %g distance %g step %g",
			scaled.HorizonRadius, scaled.Camera.Distance, scaled.StepSize)
	}
	if scaled.Width != 32 || scaled.Height != 16 {
		t.Errorf("Rescaling changed the image size to %dx%d", scaled.Width, scaled.Height)
	}

	if s, err := Resolve(PresetRing, tempDir, 0); err != nil || s.Disk.Kind != DiskRing || s.HorizonRadius != 100 {
		t.Errorf("Expected ring preset at radius 100, got %v at %g (%v)", s.Disk.Kind, s.HorizonRadius, err)
	}
	if s, err := Resolve(PresetRing, tempDir, 10); err != nil || s.HorizonRadius != 10 || s.Disk.InnerRadius != 30 {
		t.Errorf("Expected ring preset built for radius 10, got radius %g inner %g (%v)", s.HorizonRadius, s.Disk.InnerRadius, err)
	}
	if _, err := Resolve("nope", tempDir, 0); err == nil {
		t.Errorf("Expected error for unknown scene")
	}
}
