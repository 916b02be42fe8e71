// Package adapter describes the console to the host and builds emulator
// instances from card settings.
package adapter

import (
	"fmt"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/picomkiii/emu"
)

const (
	Name    = "picomkiii"
	Version = "0.1.0"
)

// SystemInfo returns system metadata for the host window and ROM lookup.
func SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            Name,
		ConsoleName:     "Sega Master System",
		Extensions:      []string{".sms"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.MaxScreenHeight,
		AspectRatio:     256.0 / 192.0,
		SampleRate:      emu.SampleRate,
		Buttons: []emucore.Button{
			{Name: "1", ID: 4, DefaultKey: "J", DefaultPad: "A"},
			{Name: "2", ID: 5, DefaultKey: "K", DefaultPad: "B"},
			{Name: "Pause", ID: 6, DefaultKey: "Backspace", DefaultPad: "Back"},
			{Name: "Start", ID: 7, DefaultKey: "Enter", DefaultPad: "Start"},
		},
		Players:     2,
		RDBName:     "Sega - Master System - Mark III",
		DataDirName: Name,
		ConsoleID:   2,
		CoreName:    Name,
		CoreVersion: Version,
	}
}

// CreateEmulator creates an emulator for rom. regionName is a configured
// region ("auto", "ntsc" or "pal").
func CreateEmulator(rom []byte, regionName string) (*emu.Emulator, error) {
	region, err := emu.ResolveRegion(regionName, rom)
	if err != nil {
		return nil, err
	}
	e, err := emu.NewEmulator(rom, region)
	if err != nil {
		return nil, fmt.Errorf("failed to create emulator: %w", err)
	}
	return e, nil
}
