package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "preset" or "file"
	FilePath    string `json:"filePath"`    // Path to the JSON file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const presetGroup = "Presets"

// ListPresets returns the built-in presets sorted by name
func ListPresets() []SceneInfo {
	var scenes []SceneInfo
	for _, name := range PresetNames() {
		s, _ := Preset(name, 0)
		scenes = append(scenes, SceneInfo{
			ID:          name,
			Name:        name,
			DisplayName: titleCase(name),
			Description: s.Description,
			Group:       presetGroup,
			Type:        "preset",
		})
	}
	return scenes
}

// ListSceneFiles scans dir for *.json scene files. A missing directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var scenes []SceneInfo
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			// Log warning but continue processing other files
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseSceneMetadata reads the name, description and group of a scene file
// without building the scene. Missing values fall back to the file name.
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	info := SceneInfo{
		ID:          fmt.Sprintf("file:%s", nameWithoutExt),
		Name:        nameWithoutExt,
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Scene Files",
		Type:        "file",
		FilePath:    filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, err
	}

	var meta struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Group       string `json:"group"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return info, err
	}

	if meta.Name != "" {
		info.Name = meta.Name
		info.DisplayName = titleCase(meta.Name)
	}
	if meta.Group != "" {
		info.Group = meta.Group
	}
	info.Description = meta.Description
	return info, nil
}

// ListAllScenes returns presets and the scene files in dir, grouped by category
// with the presets first and the remaining groups in alphabetical order.
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	files, err := ListSceneFiles(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	allScenes := append(ListPresets(), files...)

	groupMap := make(map[string][]SceneInfo)
	for _, s := range allScenes {
		groupMap[s.Group] = append(groupMap[s.Group], s)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != presetGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if presetScenes, exists := groupMap[presetGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: presetGroup, Scenes: presetScenes})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response, nil
}

// Resolve returns the scene identified by a SceneInfo ID: a preset name or "file:<name>" inside dir.
// A positive rs builds presets for that horizon radius and rescales file scenes to it.
func Resolve(id, dir string, rs float64) (Scene, error) {
	if name, ok := strings.CutPrefix(id, "file:"); ok {
		s, err := Load(filepath.Join(dir, name+".json"))
		if err != nil {
			return Scene{}, err
		}
		s.Rescale(rs)
		return s, nil
	}
	s, ok := Preset(id, rs)
	if !ok {
		return Scene{}, fmt.Errorf("unknown scene %q", id)
	}
	return s, nil
}

// titleCase converts a filename-style string to title case
// e.g., "thin-disk" -> "Thin Disk"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
