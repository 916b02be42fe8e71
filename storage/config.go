// Package storage manages the files on the card: the JSON configuration
// and the ROM directory.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/spf13/afero"
	"github.com/user-none/picomkiii/audio"
	"github.com/user-none/picomkiii/dvi"
)

// ConfigFile is the name of the configuration file at the card root.
const ConfigFile = "config.json"

// Config is the persisted settings.
type Config struct {
	Version         int    `json:"version"`
	Board           string `json:"board"`
	Region          string `json:"region"`
	Volume          int    `json:"volume"`
	VolumeMax       int    `json:"volumeMax"`
	ScreenMode      int    `json:"screenMode"`
	CropX           int    `json:"cropX"`
	AudioBufferSize int    `json:"audioBufferSize"`
	ROMDir          string `json:"romDir"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version:         1,
		Board:           dvi.DefaultBoard,
		Region:          "auto",
		Volume:          audio.DefaultVolume,
		VolumeMax:       audio.DefaultVolumeMax,
		AudioBufferSize: 2048,
		ROMDir:          "roms",
	}
}

// LoadConfig loads the configuration from config.json.
// If the file doesn't exist, it returns default configuration.
// If the file is corrupted, it returns an error.
func LoadConfig(fsys afero.Fs) (*Config, error) {
	config := &Config{}
	if err := ReadJSON(fsys, ConfigFile, config); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return migrateConfig(config), nil
}

// SaveConfig saves the configuration to config.json atomically
func SaveConfig(fsys afero.Fs, config *Config) error {
	return AtomicWriteJSON(fsys, ConfigFile, config)
}

// migrateConfig fills fields missing from older config versions
func migrateConfig(config *Config) *Config {
	def := DefaultConfig()
	if config.Version == 0 {
		config.Version = def.Version
	}
	if config.Board == "" {
		config.Board = def.Board
	}
	if config.Region == "" {
		config.Region = def.Region
	}
	if config.VolumeMax <= 0 {
		config.VolumeMax = def.VolumeMax
	}
	config.VolumeMax = min(config.VolumeMax, audio.VolumeLimit)
	if config.AudioBufferSize == 0 {
		config.AudioBufferSize = def.AudioBufferSize
	}
	if config.ROMDir == "" {
		config.ROMDir = def.ROMDir
	}
	return config
}

// AtomicWriteJSON writes data to a JSON file atomically.
// It writes to a temporary file first, then renames to the target path.
func AtomicWriteJSON(fsys afero.Fs, name string, data any) error {
	if err := fsys.MkdirAll(path.Dir(name), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	tempFile := name + ".tmp"
	if err := afero.WriteFile(fsys, tempFile, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := fsys.Rename(tempFile, name); err != nil {
		fsys.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ReadJSON reads and unmarshals a JSON file
func ReadJSON(fsys afero.Fs, name string, data any) error {
	jsonData, err := afero.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(jsonData, data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}
