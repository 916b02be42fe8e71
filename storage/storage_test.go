package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Version != 1 {
		t.Errorf("expected version 1, got %d", config.Version)
	}
	if config.Volume != 50 {
		t.Errorf("expected volume 50, got %d", config.Volume)
	}
	if config.VolumeMax != 80 {
		t.Errorf("expected volume max 80, got %d", config.VolumeMax)
	}
	if config.AudioBufferSize != 2048 {
		t.Errorf("expected audio buffer 2048, got %d", config.AudioBufferSize)
	}
	if config.Region != "auto" {
		t.Errorf("expected region 'auto', got '%s'", config.Region)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	config, err := LoadConfig(afero.NewMemMapFs())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *config != *DefaultConfig() {
		t.Errorf("expected defaults, got %+v", config)
	}
}

func TestLoadConfigCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, ConfigFile, []byte("{not json"), 0644)

	if _, err := LoadConfig(fs); err == nil {
		t.Error("expected error for corrupt config")
	}
}

func TestLoadConfigMigrates(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, ConfigFile, []byte(`{"volume": 30, "screenMode": 2}`), 0644)

	config, err := LoadConfig(fs)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Version != 1 {
		t.Errorf("expected version 1, got %d", config.Version)
	}
	if config.Volume != 30 {
		t.Errorf("expected volume 30 kept, got %d", config.Volume)
	}
	if config.ScreenMode != 2 {
		t.Errorf("expected screen mode 2 kept, got %d", config.ScreenMode)
	}
	if config.VolumeMax != 80 || config.AudioBufferSize != 2048 || config.ROMDir != "roms" {
		t.Errorf("expected missing fields filled, got %+v", config)
	}
}

func TestLoadConfigCapsVolumeMax(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, ConfigFile, []byte(`{"volume": 300, "volumeMax": 300}`), 0644)

	config, err := LoadConfig(fs)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.VolumeMax != 100 {
		t.Errorf("expected volume max capped at 100, got %d", config.VolumeMax)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	config := DefaultConfig()
	config.ScreenMode = 3
	config.Board = "picodvi"

	if err := SaveConfig(fs, config); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if ok, _ := afero.Exists(fs, ConfigFile+".tmp"); ok {
		t.Error("temp file should be cleaned up")
	}

	loaded, err := LoadConfig(fs)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *config {
		t.Errorf("expected %+v, got %+v", config, loaded)
	}
}

func TestFindROM(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"roms/b.sms", "roms/a.txt", "roms/c.zip", "roms/sub/0.sms"} {
		afero.WriteFile(fs, name, []byte{0}, 0644)
	}
	isSMS := func(name string) bool { return strings.HasSuffix(name, ".sms") }

	path, err := FindROM(fs, "roms", isSMS)
	if err != nil {
		t.Fatalf("FindROM failed: %v", err)
	}
	if path != "roms/b.sms" {
		t.Errorf("expected roms/b.sms, got %s", path)
	}
}

func TestFindROMEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	fs.MkdirAll("roms", 0755)

	_, err := FindROM(fs, "roms", func(string) bool { return true })
	if !errors.Is(err, ErrNoROM) {
		t.Errorf("expected ErrNoROM, got %v", err)
	}
}

func TestFindROMMissingDir(t *testing.T) {
	if _, err := FindROM(afero.NewMemMapFs(), "roms", func(string) bool { return true }); err == nil {
		t.Error("expected error for missing directory")
	}
}
