package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// legacyConfig is the settings part of config.json as written by repositories
// created before config.toml existed.
type legacyConfig struct {
	Settings struct {
		BoxIntervals struct {
			Box1 *int `json:"box1"`
			Box2 *int `json:"box2"`
			Box3 *int `json:"box3"`
		} `json:"boxIntervals"`
		QuizSize            *int    `json:"quizSize"`
		DefaultLearningMode *string `json:"defaultLearningMode"`
	} `json:"settings"`
}

// LegacyConfigPath returns the JSON config of older repositories.
func LegacyConfigPath(root string) string {
	return filepath.Join(RepoDir(root), "config.json")
}

// LoadLegacyConfig reads the learning settings of a legacy config.json.
// Missing file is not an error. Other keys of the file are ignored.
func LoadLegacyConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to read legacy config: %w", err)
	}
	var legacy legacyConfig
	if err := json.Unmarshal(data, &legacy); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode legacy config %s: %w", path, err)
	}
	s := legacy.Settings
	return FileConfig{
		Learning: LearningConfig{
			Box1:     s.BoxIntervals.Box1,
			Box2:     s.BoxIntervals.Box2,
			Box3:     s.BoxIntervals.Box3,
			QuizSize: s.QuizSize,
			Mode:     s.DefaultLearningMode,
		},
	}, nil
}

// LoadRepoConfig layers the legacy config.json under the global config and
// the repository config.toml, lowest priority first.
func LoadRepoConfig(root string, global FileConfig) (FileConfig, error) {
	legacy, err := LoadLegacyConfig(LegacyConfigPath(root))
	if err != nil {
		return FileConfig{}, err
	}
	repo, err := LoadConfig(RepoConfigPath(root))
	if err != nil {
		return FileConfig{}, err
	}
	return Merge(Merge(legacy, global), repo), nil
}
