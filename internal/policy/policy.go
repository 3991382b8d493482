// Package policy holds the pure decision functions of the build pipeline:
// whether a requirement should be built into a wheel, and whether a built
// wheel may be stored in the persistent cache.
package policy

import (
	"log/slog"
	"regexp"

	"git.home.luguber.info/inful/wheelsmith/internal/logfields"
	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
	"git.home.luguber.info/inful/wheelsmith/internal/vcs"
)

// BinaryAllowed decides whether binary wheels are permitted for a requirement.
type BinaryAllowed func(*requirement.Requirement) bool

// AlwaysAllowed permits binary wheels for every requirement. Callers that
// want the default must pass it explicitly; Policy has no hidden fallback.
func AlwaysAllowed(*requirement.Requirement) bool { return true }

// DisallowNames returns a BinaryAllowed that forbids binary wheels for the
// listed requirement names. ":all:" forbids them for every requirement.
func DisallowNames(names ...string) BinaryAllowed {
	disallowed := make(map[string]bool, len(names))
	for _, n := range names {
		disallowed[n] = true
	}
	return func(req *requirement.Requirement) bool {
		return !disallowed[":all:"] && !disallowed[req.Name]
	}
}

// nameVersionRe recognizes a "name-version" pattern in a source archive
// basename (e.g. foo-2.1), the heuristic signal of a pinned, reproducible
// source.
var nameVersionRe = regexp.MustCompile(`(?i)([a-z0-9_.]+)-([a-z0-9_.!+-]+)`)

// Policy evaluates build and cache decisions. Decisions are deterministic
// for identical requirement state.
type Policy struct {
	binaryAllowed BinaryAllowed
	vcs           *vcs.Registry
}

// New creates a Policy. binaryAllowed must be non-nil; pass AlwaysAllowed for
// the permissive default.
func New(binaryAllowed BinaryAllowed, registry *vcs.Registry) *Policy {
	return &Policy{binaryAllowed: binaryAllowed, vcs: registry}
}

// ShouldBuild reports whether a requirement should be built into a wheel.
// needWheel is true when the caller wants wheel artifacts as the run's output
// (ArtifactOutput mode) rather than an installation.
func (p *Policy) ShouldBuild(req *requirement.Requirement, needWheel bool) bool {
	if req.Constraint {
		// never build requirements that are merely constraints
		return false
	}
	if req.IsWheel() {
		if needWheel {
			slog.Info("Skipping requirement, already a wheel", logfields.Requirement(req.Name))
		}
		return false
	}

	if needWheel {
		return true
	}

	if req.Editable || req.SourceDir == "" {
		return false
	}

	if !p.binaryAllowed(req) {
		slog.Info("Skipping wheel build, binaries are disabled for requirement",
			logfields.Requirement(req.Name))
		return false
	}

	return true
}

// ShouldCache reports whether a built wheel for this requirement can be
// stored in the persistent wheel cache, assuming one is available and
// ShouldBuild has determined a wheel needs to be built.
func (p *Policy) ShouldCache(req *requirement.Requirement) bool {
	if !p.ShouldBuild(req, false) {
		// never cache what an install would not have built (editable mode, etc)
		return false
	}

	if req.Link != nil && req.Link.IsVCS() {
		// VCS checkout: cache only when pinned to an immutable revision,
		// otherwise the wheel is valid just for this run.
		backend := p.vcs.ForLink(req.Link)
		if backend == nil {
			return false
		}
		immutable, err := backend.IsImmutableRevCheckout(req.Link.String(), req.SourceDir)
		if err != nil {
			slog.Warn("Could not determine checkout immutability, not caching",
				logfields.Requirement(req.Name), logfields.Error(err))
			return false
		}
		return immutable
	}

	if req.Link == nil {
		return false
	}
	base, _ := req.Link.SplitExt()
	if nameVersionRe.MatchString(base) {
		return true
	}

	// Local directory or otherwise unpinned source: ephemeral cache only.
	return false
}
