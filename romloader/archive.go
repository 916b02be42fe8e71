package romloader

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// archiveEntry is the part of a zip or 7z entry the extractor needs.
type archiveEntry interface {
	FileInfo() fs.FileInfo
	Open() (io.ReadCloser, error)
}

func extractFromZIP(r io.ReaderAt, size int64, extensions []string) ([]byte, string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open zip: %w", err)
	}
	for _, f := range zr.File {
		if data, ok, err := extractEntry(f, f.Name, extensions); ok || err != nil {
			return data, filepath.Base(f.Name), err
		}
	}
	return nil, "", ErrNoROMFile
}

func extractFrom7z(r io.ReaderAt, size int64, extensions []string) ([]byte, string, error) {
	zr, err := sevenzip.NewReader(r, size)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open 7z: %w", err)
	}
	for _, f := range zr.File {
		if data, ok, err := extractEntry(f, f.Name, extensions); ok || err != nil {
			return data, filepath.Base(f.Name), err
		}
	}
	return nil, "", ErrNoROMFile
}

// extractEntry reads e when it is a ROM file. ok is false for entries
// that were skipped.
func extractEntry(e archiveEntry, name string, extensions []string) (data []byte, ok bool, err error) {
	if e.FileInfo().IsDir() || !isROMFile(name, extensions) {
		return nil, false, nil
	}
	rc, err := e.Open()
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s in archive: %w", name, err)
	}
	defer rc.Close()

	data, err = limitedRead(rc)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, true, nil
}
