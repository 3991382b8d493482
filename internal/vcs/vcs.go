// Package vcs provides the version-control capability consumed by the build
// policy: deciding whether a checked-out revision is an immutable pin that can
// be cached safely.
package vcs

import "git.home.luguber.info/inful/wheelsmith/internal/requirement"

// Backend answers immutability questions for one version-control system.
type Backend interface {
	// Name returns the VCS scheme name ("git", "hg", ...).
	Name() string

	// IsImmutableRevCheckout reports whether the checkout at dest, obtained
	// from url, is pinned to a revision that will always resolve to identical
	// content (a fixed content identity, not a movable reference).
	IsImmutableRevCheckout(url string, dest string) (bool, error)
}

// Registry maps VCS scheme names to backends.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates a registry with the default backends registered.
func NewRegistry() *Registry {
	r := &Registry{backends: make(map[string]Backend)}
	r.Register(&GitBackend{})
	return r
}

// Register adds a backend, replacing any previous backend with the same name.
func (r *Registry) Register(b Backend) {
	r.backends[b.Name()] = b
}

// ForLink returns the backend responsible for a VCS link, or nil when the
// link is not VCS-sourced or its scheme has no registered backend.
func (r *Registry) ForLink(link *requirement.Link) Backend {
	if link == nil {
		return nil
	}
	scheme := link.VCSScheme()
	if scheme == "" {
		return nil
	}
	return r.backends[scheme]
}
