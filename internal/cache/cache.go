// Package cache maps a requirement's source identity to the directory its
// built wheel is stored in, either under a configured persistent cache root
// or under a run-scoped ephemeral root.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
)

// WheelCache derives output directories for built wheels.
//
// The same source identity always maps to the same directory: the key is a
// SHA-256 fingerprint of the link URL, split into nested path segments to
// keep directory fan-out bounded.
type WheelCache struct {
	root      string
	ephemRoot string
}

// New creates a wheel cache. root is the persistent cache root (empty when no
// persistent cache is configured); ephemRoot is the run-scoped ephemeral root.
func New(root, ephemRoot string) *WheelCache {
	return &WheelCache{root: root, ephemRoot: ephemRoot}
}

// HasPersistentRoot reports whether a persistent cache root is configured.
func (c *WheelCache) HasPersistentRoot() bool { return c.root != "" }

// PathForLink returns the persistent cache directory for a link.
// Callers must check HasPersistentRoot first.
func (c *WheelCache) PathForLink(link *requirement.Link) string {
	return filepath.Join(append([]string{c.root, "wheels"}, fingerprintParts(link)...)...)
}

// EphemPathForLink returns the ephemeral cache directory for a link, scoped
// to the current run.
func (c *WheelCache) EphemPathForLink(link *requirement.Link) string {
	return filepath.Join(append([]string{c.ephemRoot}, fingerprintParts(link)...)...)
}

// fingerprintParts computes the collision-resistant cache key for a link and
// splits it into path segments (aa/bb/cc/rest).
func fingerprintParts(link *requirement.Link) []string {
	sum := sha256.Sum256([]byte(link.String()))
	h := hex.EncodeToString(sum[:])
	return []string{h[:2], h[2:4], h[4:6], h[6:]}
}
