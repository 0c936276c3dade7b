package level

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Info describes a discoverable level
type Info struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Level name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to JSON file (file type only)
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Objectives  int    `json:"objectives"`
}

// Group is a named set of levels
type Group struct {
	Name   string `json:"name"`
	Levels []Info `json:"levels"`
}

// LevelsResponse is the complete response for /api/levels
type LevelsResponse struct {
	Groups []Group `json:"groups"`
}

const (
	builtinGroup = "Built-in Levels"
	fileGroup    = "Level Files"
)

// ListLevelFiles scans dir for *.json level files. A missing directory
// yields an empty list. Files that fail to parse are skipped and reported
// through the returned warnings.
func ListLevelFiles(dir string) ([]Info, []string, error) {
	if dir == "" {
		return nil, nil, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, nil, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan levels directory: %w", err)
	}

	var levels []Info
	var warnings []string
	for _, path := range files {
		lvl, err := Load(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping %s: %v", path, err))
			continue
		}
		info := infoOf(lvl, "file")
		info.FilePath = path
		if info.Group == "" {
			info.Group = fileGroup
		}
		levels = append(levels, info)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Name < levels[j].Name
	})
	return levels, warnings, nil
}

// ListAllLevels returns built-in and file levels grouped by category,
// built-ins first and the remaining groups alphabetically.
func ListAllLevels(dir string) (LevelsResponse, []string, error) {
	var response LevelsResponse

	var all []Info
	for _, lvl := range BuiltinLevels() {
		info := infoOf(lvl, "builtin")
		info.Group = builtinGroup
		all = append(all, info)
	}

	fileLevels, warnings, err := ListLevelFiles(dir)
	if err != nil {
		return response, warnings, err
	}
	all = append(all, fileLevels...)

	groupMap := make(map[string][]Info)
	for _, info := range all {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for name := range groupMap {
		if name != builtinGroup {
			groupNames = append(groupNames, name)
		}
	}
	sort.Strings(groupNames)

	if builtins, ok := groupMap[builtinGroup]; ok {
		response.Groups = append(response.Groups, Group{Name: builtinGroup, Levels: builtins})
	}
	for _, name := range groupNames {
		response.Groups = append(response.Groups, Group{Name: name, Levels: groupMap[name]})
	}
	return response, warnings, nil
}

// Resolve finds a level by built-in id, by file name inside dir, or by path
func Resolve(name, dir string) (*Level, error) {
	if name == "" {
		return nil, fmt.Errorf("empty level name")
	}
	if lvl, ok := Builtin(name); ok {
		return lvl, nil
	}
	if strings.HasSuffix(name, ".json") {
		return Load(name)
	}
	if dir != "" {
		path := filepath.Join(dir, name+".json")
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return nil, fmt.Errorf("unknown level %q", name)
}

func infoOf(lvl *Level, kind string) Info {
	return Info{
		ID:          lvl.ID,
		Name:        lvl.Name,
		Description: lvl.Description,
		Group:       lvl.Group,
		Type:        kind,
		Width:       lvl.Width,
		Height:      lvl.Height,
		Objectives:  len(lvl.Objectives),
	}
}

// titleCase converts an identifier to title case
// e.g., "mirror-hall" -> "Mirror Hall"
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
