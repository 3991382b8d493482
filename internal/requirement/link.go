package requirement

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/wheelsmith/internal/wheel"
)

// vcsSchemes are the version-control prefixes recognized in source URLs,
// e.g. git+https://host/repo.git@rev.
var vcsSchemes = []string{"git", "hg", "svn", "bzr"}

// Link is a requirement's source identity: the URL the source was obtained
// from (an index archive URL, a VCS URL, or a local file URL).
type Link struct {
	raw string
	url *url.URL
}

// NewLink parses a source URL into a Link.
func NewLink(raw string) (*Link, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty link URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse link %q: %w", raw, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("link %q has no scheme", raw)
	}
	return &Link{raw: raw, url: u}, nil
}

// FileLink builds a file:// link for a local filesystem path.
func FileLink(p string) *Link {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return &Link{raw: u.String(), url: u}
}

func (l *Link) String() string { return l.raw }

// Scheme returns the full URL scheme, including any VCS prefix
// (e.g. "git+https").
func (l *Link) Scheme() string { return l.url.Scheme }

// VCSScheme returns the VCS name for a VCS link ("git", "hg", ...) or the
// empty string for non-VCS links.
func (l *Link) VCSScheme() string {
	scheme, _, found := strings.Cut(l.url.Scheme, "+")
	if !found {
		scheme = l.url.Scheme
	}
	for _, v := range vcsSchemes {
		if scheme == v {
			return v
		}
	}
	return ""
}

// IsVCS reports whether the link points at a version-control checkout.
func (l *Link) IsVCS() bool { return l.VCSScheme() != "" }

// Filename returns the base filename of the link path, URL-unescaped.
func (l *Link) Filename() string {
	p := l.url.Path
	name := path.Base(strings.TrimRight(p, "/"))
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

// SplitExt splits the link filename into base and extension, treating
// compound archive extensions (.tar.gz, .tar.bz2, .tar.xz) as one unit.
func (l *Link) SplitExt() (base, ext string) {
	name := l.Filename()
	for _, compound := range []string{".tar.gz", ".tar.bz2", ".tar.xz"} {
		if strings.HasSuffix(name, compound) {
			return strings.TrimSuffix(name, compound), compound
		}
	}
	ext = path.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}

// IsWheel reports whether the link points at an already-built wheel.
func (l *Link) IsWheel() bool { return wheel.IsWheelName(l.Filename()) }

// FilePath returns the local filesystem path for a file:// link.
func (l *Link) FilePath() string {
	return filepath.FromSlash(l.url.Path)
}
