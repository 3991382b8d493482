package vcs

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitBackend implements the immutability check for git checkouts.
type GitBackend struct{}

func (GitBackend) Name() string { return "git" }

// IsImmutableRevCheckout reports whether the checkout at dest is pinned to a
// full commit hash. Only a complete hash qualifies: branches, tags, and
// abbreviated hashes are movable or ambiguous references.
func (GitBackend) IsImmutableRevCheckout(url string, dest string) (bool, error) {
	rev := requestedRev(url)
	if !plumbing.IsHash(rev) {
		return false, nil
	}

	repo, err := git.PlainOpen(dest)
	if err != nil {
		return false, fmt.Errorf("open checkout %s: %w", dest, err)
	}
	head, err := repo.Head()
	if err != nil {
		return false, fmt.Errorf("resolve HEAD of %s: %w", dest, err)
	}

	// The checkout must actually be at the pinned revision; a stale checkout
	// of a different commit is not proof of immutability.
	return head.Hash() == plumbing.NewHash(rev), nil
}

// requestedRev extracts the revision component of a git source URL of the
// form git+<scheme>://host/repo.git@<rev>. Returns "" when no revision was
// requested.
func requestedRev(url string) string {
	// Fragments (#egg=name, #subdirectory=...) are not part of the revision.
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	at := strings.LastIndexByte(url, '@')
	if at < 0 {
		return ""
	}
	rev := url[at+1:]
	// An '@' inside the authority (git@host) is not a revision separator.
	if strings.ContainsAny(rev, "/:") {
		return ""
	}
	return rev
}
