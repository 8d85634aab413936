package loaders

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneFile describes a scene description file found on disk
type SceneFile struct {
	ID          string `json:"id"`          // File name without extension
	Name        string `json:"name"`        // Display name
	Description string `json:"description"` // Optional description
	FilePath    string `json:"-"`
}

// ListSceneFiles scans dir for scene files and reads their header metadata.
// A missing directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneFile, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return []SceneFile{}, nil
		}
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+SceneExtension))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneFile, 0, len(files))
	for _, path := range files {
		info, err := ParseSceneMetadata(path)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes, nil
}

// FindSceneFile returns the scene in dir with the given id
func FindSceneFile(dir, id string) (SceneFile, error) {
	scenes, err := ListSceneFiles(dir)
	if err != nil {
		return SceneFile{}, err
	}
	for _, s := range scenes {
		if s.ID == id {
			return s, nil
		}
	}
	return SceneFile{}, fmt.Errorf("scene file %q not found", id)
}

// ParseSceneMetadata reads "# Scene:" and "# Description:" lines from the
// leading comment block. Without a Scene line the file name is title cased;
// without a Description line the first free comment is used.
func ParseSceneMetadata(path string) (SceneFile, error) {
	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))
	info := SceneFile{
		ID:       id,
		Name:     titleCase(id),
		FilePath: path,
	}

	file, err := os.Open(path)
	if err != nil {
		return info, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	var freeComment string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Stop parsing at first non-comment line
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		switch {
		case strings.HasPrefix(content, "Scene:"):
			info.Name = strings.TrimSpace(strings.TrimPrefix(content, "Scene:"))
		case strings.HasPrefix(content, "Description:"):
			info.Description = strings.TrimSpace(strings.TrimPrefix(content, "Description:"))
		case freeComment == "":
			freeComment = content
		}
	}
	if info.Description == "" {
		info.Description = freeComment
	}

	return info, scanner.Err()
}

// titleCase converts a filename-style string to title case
// e.g., "twisted-arch" -> "Twisted Arch"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
