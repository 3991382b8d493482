package cache

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
)

func mustLink(t *testing.T, raw string) *requirement.Link {
	t.Helper()
	link, err := requirement.NewLink(raw)
	require.NoError(t, err)
	return link
}

func TestPathForLink_Deterministic(t *testing.T) {
	c := New("/var/cache/wheelsmith", "/tmp/ephem")
	link := mustLink(t, "https://files.example.com/pkg-1.0.tar.gz")

	first := c.PathForLink(link)
	second := c.PathForLink(link)
	require.Equal(t, first, second)
	require.True(t, strings.HasPrefix(first, filepath.Join("/var/cache/wheelsmith", "wheels")))
}

func TestPathForLink_DistinctSources(t *testing.T) {
	c := New("/var/cache/wheelsmith", "/tmp/ephem")

	a := c.PathForLink(mustLink(t, "https://files.example.com/pkg-1.0.tar.gz"))
	b := c.PathForLink(mustLink(t, "https://files.example.com/pkg-1.1.tar.gz"))
	require.NotEqual(t, a, b)
}

func TestPathForLink_NestedSegments(t *testing.T) {
	c := New("/root", "/tmp/ephem")
	p := c.PathForLink(mustLink(t, "https://files.example.com/pkg-1.0.tar.gz"))

	rel, err := filepath.Rel(filepath.Join("/root", "wheels"), p)
	require.NoError(t, err)

	segments := strings.Split(rel, string(filepath.Separator))
	require.Len(t, segments, 4)
	require.Len(t, segments[0], 2)
	require.Len(t, segments[1], 2)
	require.Len(t, segments[2], 2)
	require.Len(t, segments[3], 58)
}

func TestEphemPathForLink(t *testing.T) {
	c := New("", "/tmp/wheelsmith-run/ephem")
	link := mustLink(t, "https://files.example.com/pkg-1.0.tar.gz")

	require.False(t, c.HasPersistentRoot())
	p := c.EphemPathForLink(link)
	require.True(t, strings.HasPrefix(p, "/tmp/wheelsmith-run/ephem"))
	require.Equal(t, p, c.EphemPathForLink(link))
}

func TestPersistentAndEphemeralDiffer(t *testing.T) {
	c := New("/var/cache/wheelsmith", "/tmp/ephem")
	link := mustLink(t, "https://files.example.com/pkg-1.0.tar.gz")
	require.NotEqual(t, c.PathForLink(link), c.EphemPathForLink(link))
}
