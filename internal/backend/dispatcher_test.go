package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	wserrors "git.home.luguber.info/inful/wheelsmith/internal/errors"
	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
)

// fakeRunner records invocations and simulates a legacy build by writing the
// configured filenames into the destination directory (the arg after "-d").
type fakeRunner struct {
	output  string
	err     error
	produce []string

	gotDir  string
	gotArgs []string
	calls   int
}

func (f *fakeRunner) Run(_ context.Context, dir string, args []string) (string, error) {
	f.gotDir = dir
	f.gotArgs = args
	f.calls++
	if f.err != nil {
		return f.output, f.err
	}
	for i, a := range args {
		if a == "-d" && i+1 < len(args) {
			for _, name := range f.produce {
				if err := os.WriteFile(filepath.Join(args[i+1], name), []byte("wheel"), 0o600); err != nil {
					return "", err
				}
			}
		}
	}
	return f.output, nil
}

func legacyReq(t *testing.T) *requirement.Requirement {
	t.Helper()
	return &requirement.Requirement{
		Name:      "simplewheel",
		SourceDir: t.TempDir(),
		Protocol:  requirement.ProtocolLegacy,
	}
}

func TestBuildLegacy_SingleFile(t *testing.T) {
	runner := &fakeRunner{produce: []string{"simplewheel-1.0-py3-none-any.whl"}}
	d := NewDispatcher(Options{}).WithRunner(runner)
	dest := t.TempDir()

	wheelPath, err := d.Build(context.Background(), legacyReq(t), dest, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "simplewheel-1.0-py3-none-any.whl"), wheelPath)

	// Command ran in the source directory with the destination flag.
	require.Contains(t, runner.gotArgs, "-d")
	require.Contains(t, runner.gotArgs, dest)
}

func TestBuildLegacy_ZeroFiles(t *testing.T) {
	runner := &fakeRunner{output: "no wheel produced"}
	d := NewDispatcher(Options{}).WithRunner(runner)

	_, err := d.Build(context.Background(), legacyReq(t), t.TempDir(), "")
	require.Error(t, err)
	require.True(t, wserrors.IsCategory(err, wserrors.CategoryBuild))
	require.False(t, wserrors.IsFatal(err))
}

func TestBuildLegacy_MultipleFiles_PicksLexicographicFirst(t *testing.T) {
	runner := &fakeRunner{produce: []string{
		"zebra-1.0-py3-none-any.whl",
		"alpha-1.0-py3-none-any.whl",
	}}
	d := NewDispatcher(Options{}).WithRunner(runner)
	dest := t.TempDir()

	wheelPath, err := d.Build(context.Background(), legacyReq(t), dest, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dest, "alpha-1.0-py3-none-any.whl"), wheelPath)
}

func TestBuildLegacy_SubprocessFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("exit status 1"), output: "Traceback ..."}
	d := NewDispatcher(Options{}).WithRunner(runner)

	_, err := d.Build(context.Background(), legacyReq(t), t.TempDir(), "")
	require.Error(t, err)
	require.True(t, wserrors.IsCategory(err, wserrors.CategoryBuild))
}

func TestBuildLegacy_PythonTagFlag(t *testing.T) {
	runner := &fakeRunner{produce: []string{"simplewheel-1.0-py3-none-any.whl"}}
	d := NewDispatcher(Options{}).WithRunner(runner)

	_, err := d.Build(context.Background(), legacyReq(t), t.TempDir(), "py3")
	require.NoError(t, err)
	require.Contains(t, runner.gotArgs, "--python-tag")
	require.Contains(t, runner.gotArgs, "py3")
}

func TestBuildLegacy_OptionsOrdering(t *testing.T) {
	runner := &fakeRunner{produce: []string{"simplewheel-1.0-py3-none-any.whl"}}
	d := NewDispatcher(Options{
		BuildCommand:  []string{"python", "setup.py", "bdist_wheel"},
		GlobalOptions: []string{"--no-user-cfg"},
		BuildOptions:  []string{"--plat-name", "linux_x86_64"},
	}).WithRunner(runner)

	req := legacyReq(t)
	_, err := d.Build(context.Background(), req, t.TempDir(), "")
	require.NoError(t, err)
	require.Equal(t, req.SourceDir, runner.gotDir)
	require.Equal(t, "python", runner.gotArgs[0])
	require.Contains(t, runner.gotArgs, "--no-user-cfg")
	require.Contains(t, runner.gotArgs, "--plat-name")
}

func TestClean_BestEffort(t *testing.T) {
	ok := &fakeRunner{}
	d := NewDispatcher(Options{}).WithRunner(ok)
	require.True(t, d.Clean(context.Background(), legacyReq(t)))

	failing := &fakeRunner{err: errors.New("exit status 1")}
	d = NewDispatcher(Options{}).WithRunner(failing)
	require.False(t, d.Clean(context.Background(), legacyReq(t)))

	// No source dir: nothing to clean.
	noSource := &requirement.Requirement{Name: "pkg"}
	require.True(t, d.Clean(context.Background(), noSource))
}

func TestBuild_UnknownProtocol(t *testing.T) {
	d := NewDispatcher(Options{}).WithRunner(&fakeRunner{})
	req := legacyReq(t)
	req.Protocol = requirement.Protocol("bogus")

	_, err := d.Build(context.Background(), req, t.TempDir(), "")
	require.Error(t, err)
	require.True(t, wserrors.IsCategory(err, wserrors.CategoryConfig))
}
