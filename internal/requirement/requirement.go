// Package requirement models a single source requirement handed to the build
// orchestrator: its source identity, flags, source directory, build protocol,
// and scoped build-environment resource.
//
// A Requirement is owned by the caller. The orchestrator mutates its
// SourceDir and Link exactly once, during install-mode placement; no other
// component writes to it.
package requirement

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Protocol selects which build protocol a requirement uses.
type Protocol string

const (
	// ProtocolLegacy builds via an external build command with free-form options.
	ProtocolLegacy Protocol = "legacy"

	// ProtocolModern builds via a project-declared backend with a structured
	// build capability and no free-form options.
	ProtocolModern Protocol = "modern"
)

// ModernBackend is the build capability exposed by a modern-protocol backend.
type ModernBackend interface {
	// BuildWheel builds a wheel into destDir using the pre-discovered metadata
	// directory and returns the produced wheel filename (not a full path).
	BuildWheel(ctx context.Context, destDir, metadataDir string) (string, error)
}

// BuildEnv is a scoped build-environment resource acquired per requirement
// for the duration of its build.
type BuildEnv interface {
	// Acquire enters the build environment and returns a release function.
	// The release function must be called on every exit path.
	Acquire(ctx context.Context) (release func(), err error)
}

// NoopBuildEnv is a BuildEnv that provides no isolation.
type NoopBuildEnv struct{}

func (NoopBuildEnv) Acquire(context.Context) (func(), error) { return func() {}, nil }

// Requirement is one source requirement in a build batch.
type Requirement struct {
	// Name is the distribution name.
	Name string

	// Link is the source identity. Rewritten to the built wheel during
	// install-mode placement.
	Link *Link

	// SourceDir is the unpacked source directory, empty when the source has
	// not been prepared locally.
	SourceDir string

	// Editable marks an editable (in-place development) install.
	Editable bool

	// Constraint marks a constraint-only requirement that is never built.
	Constraint bool

	// Protocol selects the build protocol.
	Protocol Protocol

	// MetadataDir is the pre-discovered metadata directory. Modern protocol only.
	MetadataDir string

	// Backend is the modern-protocol build capability. Modern protocol only.
	Backend ModernBackend

	// BuildEnv is the scoped build-environment resource.
	BuildEnv BuildEnv
}

// IsWheel reports whether the requirement already points at a built wheel.
func (r *Requirement) IsWheel() bool {
	return r.Link != nil && r.Link.IsWheel()
}

// buildEnv returns the requirement's build environment, defaulting to a noop.
func (r *Requirement) buildEnv() BuildEnv {
	if r.BuildEnv == nil {
		return NoopBuildEnv{}
	}
	return r.BuildEnv
}

// AcquireBuildEnv acquires the scoped build environment for this requirement.
func (r *Requirement) AcquireBuildEnv(ctx context.Context) (func(), error) {
	return r.buildEnv().Acquire(ctx)
}

// RemoveTemporarySource deletes the requirement's source directory and clears
// SourceDir. Callers must verify the delete marker first.
func (r *Requirement) RemoveTemporarySource() error {
	if r.SourceDir == "" {
		return nil
	}
	if err := os.RemoveAll(r.SourceDir); err != nil {
		return fmt.Errorf("remove temporary source %s: %w", r.SourceDir, err)
	}
	r.SourceDir = ""
	return nil
}

// EnsureBuildLocation creates and returns a fresh per-requirement directory
// under buildDir, used to re-establish SourceDir after install-mode placement.
func (r *Requirement) EnsureBuildLocation(buildDir string) (string, error) {
	if r.Name == "" {
		return "", fmt.Errorf("requirement has no name")
	}
	loc := filepath.Join(buildDir, r.Name)
	if err := os.MkdirAll(loc, 0o750); err != nil {
		return "", fmt.Errorf("create build location %s: %w", loc, err)
	}
	return loc, nil
}
