package wheel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplacePythonTag(t *testing.T) {
	cases := []struct {
		name     string
		wheel    string
		tag      string
		expected string
	}{
		{
			name:     "cpython tag replaced",
			wheel:    "pkg-1.0-cp39-cp39-linux_x86_64",
			tag:      "py3",
			expected: "pkg-1.0-py3-cp39-linux_x86_64",
		},
		{
			name:     "with extension",
			wheel:    "simplewheel-2.0-py2.py3-none-any.whl",
			tag:      "py3",
			expected: "simplewheel-2.0-py3-none-any.whl",
		},
		{
			name:     "build tag present",
			wheel:    "pkg-1.0-1-cp39-abi3-manylinux1_x86_64.whl",
			tag:      "py3",
			expected: "pkg-1.0-1-py3-abi3-manylinux1_x86_64.whl",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReplacePythonTag(tc.wheel, tc.tag)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestReplacePythonTag_Malformed(t *testing.T) {
	_, err := ReplacePythonTag("pkg-1.0.tar.gz", "py3")
	require.Error(t, err)
}

func TestIsWheelName(t *testing.T) {
	require.True(t, IsWheelName("pkg-1.0-py3-none-any.whl"))
	require.True(t, IsWheelName("pkg-1.0-1-py3-none-any.whl"))
	require.False(t, IsWheelName("pkg-1.0.tar.gz"))
	require.False(t, IsWheelName("pkg-1.0.whl"))
}
