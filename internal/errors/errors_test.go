package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildError_ErrorString(t *testing.T) {
	e := New(CategoryBuild, SeverityError, "wheel build failed")
	require.Equal(t, "build (error): wheel build failed", e.Error())

	wrapped := Wrap(errors.New("exit status 1"), CategoryBuild, SeverityError, "wheel build failed")
	require.Equal(t, "build (error): wheel build failed: exit status 1", wrapped.Error())
}

func TestBuildError_Unwrap(t *testing.T) {
	cause := errors.New("exit status 1")
	e := BuildFailed(cause, "subprocess failed")
	require.True(t, errors.Is(e, cause))
}

func TestBuildError_UnwrapThroughFmt(t *testing.T) {
	e := PlacementFailed(errors.New("disk full"), "copy wheel")
	outer := fmt.Errorf("requirement simplewheel: %w", e)

	var be *BuildError
	require.True(t, errors.As(outer, &be))
	require.Equal(t, CategoryPlacement, be.Category)
}

func TestIsFatal(t *testing.T) {
	require.True(t, IsFatal(InternalConsistencyViolation("missing marker")))
	require.False(t, IsFatal(BuildFailed(nil, "boom")))
	require.False(t, IsFatal(errors.New("plain")))
}

func TestIsCategory(t *testing.T) {
	require.True(t, IsCategory(ConfigurationConflict("build options not supported"), CategoryConfig))
	require.False(t, IsCategory(ZeroArtifacts("no files"), CategoryConfig))
	require.False(t, IsCategory(errors.New("plain"), CategoryBuild))
}

func TestGetCategory_Fallback(t *testing.T) {
	require.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	require.Equal(t, CategoryBuild, GetCategory(ZeroArtifacts("no files")))
}

func TestWithContext(t *testing.T) {
	e := ZeroArtifacts("no files").WithContext("command", "python setup.py bdist_wheel")
	require.Equal(t, "python setup.py bdist_wheel", e.Context["command"])
}
