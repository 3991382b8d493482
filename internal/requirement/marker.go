package requirement

import (
	"os"
	"path/filepath"
)

// DeleteMarkerFilename marks a source directory as a removable temporary
// checkout. Destructive removal during install-mode placement is only
// permitted when this marker is present.
const DeleteMarkerFilename = "wheelsmith-delete-this-directory.txt"

const deleteMarkerMessage = `This file is placed here by wheelsmith to indicate the source was put
here by wheelsmith and may be deleted by it.
`

// WriteDeleteMarker places the removable-source marker in dir.
func WriteDeleteMarker(dir string) error {
	return os.WriteFile(filepath.Join(dir, DeleteMarkerFilename), []byte(deleteMarkerMessage), 0o600)
}

// HasDeleteMarker reports whether dir carries the removable-source marker.
func HasDeleteMarker(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, DeleteMarkerFilename))
	return err == nil
}
