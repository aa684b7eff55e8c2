package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type presetsFile struct {
	Presets []string `yaml:"presets"`
}

// LoadPresets reads the pool of list mood prompts from a YAML file.
// Falls back to defaults if the file is missing or lists nothing.
func LoadPresets(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPresets(), nil
		}
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var f presetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets file: %w", err)
	}

	presets := make([]string, 0, len(f.Presets))
	for _, p := range f.Presets {
		if p = strings.TrimSpace(p); p != "" {
			presets = append(presets, p)
		}
	}
	if len(presets) == 0 {
		return DefaultPresets(), nil
	}
	return presets, nil
}

// DefaultPresets returns the built-in moods used when no presets.yaml is present.
func DefaultPresets() []string {
	return []string{
		"A moody noir archive lit by a single desk lamp, deep shadows and brass accents.",
		"A sunlit 1950s drive-in: pastel signage, chrome trim, and hand-painted marquee letters.",
		"A quiet museum reading room with cream paper, serif type, and generous margins.",
		"A neon-soaked midnight matinee with electric magenta and teal glows.",
		"A film lab contact sheet: monochrome frames, grease-pencil marks, and sprocket holes.",
	}
}
