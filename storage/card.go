package storage

import (
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/spf13/afero"
)

// ErrNoROM is returned when the ROM directory holds nothing loadable.
var ErrNoROM = errors.New("no ROM found on card")

// Mount returns the card rooted at dir on the host filesystem.
func Mount(dir string) afero.Fs {
	return afero.NewBasePathFs(afero.NewOsFs(), dir)
}

// FindROM returns the path of the first file in dir, in lexical order,
// that match accepts.
func FindROM(fsys afero.Fs, dir string, match func(name string) bool) (string, error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	for _, info := range infos {
		if info.IsDir() || !match(info.Name()) {
			continue
		}
		return path.Join(dir, info.Name()), nil
	}
	return "", fmt.Errorf("%w in %s", ErrNoROM, dir)
}
