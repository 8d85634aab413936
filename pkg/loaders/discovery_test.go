package loaders

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
		{"twisted-rings", "Twisted Rings"},
		{"plinth_gold", "Plinth Gold"},
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

func writeScene(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneFile
	}{
		{
			name: "complete.scene",
			content: `# Scene: Carved Cube
# Description: Cube with a spherical bite

Shape "box"`,
			expected: SceneFile{ID: "complete", Name: "Carved Cube", Description: "Cube with a spherical bite"},
		},
		{
			name: "free-comment.scene",
			content: `# A lone sphere
# second comment
Shape "sphere"`,
			expected: SceneFile{ID: "free-comment", Name: "Free Comment", Description: "A lone sphere"},
		},
		{
			name:     "no_metadata.scene",
			content:  `Shape "sphere"`,
			expected: SceneFile{ID: "no_metadata", Name: "No Metadata"},
		},
		{
			name: "late-comment.scene",
			content: `Shape "sphere"
# Scene: Ignored`,
			expected: SceneFile{ID: "late-comment", Name: "Late Comment"},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScene(t, dir, tc.name, tc.content)

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}

			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_MissingFile(t *testing.T) {
	if _, err := ParseSceneMetadata(filepath.Join(t.TempDir(), "missing.scene")); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}

func TestListSceneFiles(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "b.scene", "# Scene: Second\nShape \"sphere\"")
	writeScene(t, dir, "a.scene", "# Scene: First\nShape \"box\"")
	writeScene(t, dir, "notes.txt", "not a scene")

	scenes, err := ListSceneFiles(dir)
	if err != nil {
		t.Fatalf("ListSceneFiles() error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].ID != "a" || scenes[1].ID != "b" {
		t.Errorf("Expected scenes sorted by id, got %s, %s", scenes[0].ID, scenes[1].ID)
	}

	found, err := FindSceneFile(dir, "b")
	if err != nil || found.Name != "Second" {
		t.Errorf("FindSceneFile(b) = %+v, %v", found, err)
	}
	if _, err := FindSceneFile(dir, "c"); err == nil {
		t.Errorf("Expected an error for an unknown scene id")
	}
}

func TestListSceneFiles_MissingDirectory(t *testing.T) {
	scenes, err := ListSceneFiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Errorf("ListSceneFiles() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected an empty list, got %v", scenes)
	}
}

func TestBundledScenesParse(t *testing.T) {
	scenes, err := ListSceneFiles("../../scenes")
	if err != nil {
		t.Fatalf("ListSceneFiles() error: %v", err)
	}
	if len(scenes) == 0 {
		t.Fatalf("Expected bundled scene files")
	}
	for _, s := range scenes {
		t.Run(s.ID, func(t *testing.T) {
			if s.Description == "" {
				t.Errorf("Expected a description for %s", s.ID)
			}
			if _, err := LoadScene(s.FilePath); err != nil {
				t.Errorf("LoadScene(%s) error: %v", s.FilePath, err)
			}
		})
	}
}
