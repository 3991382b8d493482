// Package backend dispatches wheel builds to one of the two build protocols:
// the legacy external build command, or the modern project-declared backend.
// Both are exposed behind a single Build operation returning an explicit
// result, never a panic; a failure fails that requirement only.
package backend

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	wserrors "git.home.luguber.info/inful/wheelsmith/internal/errors"
	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
)

// CommandRunner executes an external command and returns its combined output.
// Injectable so tests can exercise the dispatcher without spawning processes.
type CommandRunner interface {
	Run(ctx context.Context, dir string, args []string) (output string, err error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) // #nosec G204 - command comes from configuration
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Options configures a Dispatcher.
type Options struct {
	// BuildCommand is the legacy external build command, invoked in the
	// requirement's source directory.
	BuildCommand []string

	// CleanCommand is the best-effort legacy clean command run after a failed
	// legacy build.
	CleanCommand []string

	// GlobalOptions are free-form options passed to every legacy invocation.
	GlobalOptions []string

	// BuildOptions are free-form build options. The modern protocol accepts
	// none; a non-empty value fails modern-protocol requirements up front.
	BuildOptions []string
}

// Dispatcher builds one requirement into a destination directory using the
// requirement's selected protocol.
type Dispatcher struct {
	opts   Options
	runner CommandRunner
}

// NewDispatcher creates a dispatcher. Empty build/clean commands fall back to
// the conventional setup.py invocations.
func NewDispatcher(opts Options) *Dispatcher {
	if len(opts.BuildCommand) == 0 {
		opts.BuildCommand = []string{"python", "setup.py", "bdist_wheel"}
	}
	if len(opts.CleanCommand) == 0 {
		opts.CleanCommand = []string{"python", "setup.py", "clean", "--all"}
	}
	return &Dispatcher{opts: opts, runner: execRunner{}}
}

// WithRunner swaps the command runner (fluent helper).
func (d *Dispatcher) WithRunner(r CommandRunner) *Dispatcher { d.runner = r; return d }

// Build builds req into destDir and returns the full path of the produced
// wheel. pythonTag, when non-empty, overrides the python tag field of the
// produced wheel filename.
func (d *Dispatcher) Build(ctx context.Context, req *requirement.Requirement, destDir, pythonTag string) (string, error) {
	switch req.Protocol {
	case requirement.ProtocolModern:
		return d.buildModern(ctx, req, destDir, pythonTag)
	case requirement.ProtocolLegacy, "":
		return d.buildLegacy(ctx, req, destDir, pythonTag)
	default:
		return "", wserrors.ConfigurationConflict(
			fmt.Sprintf("unknown build protocol %q for %s", req.Protocol, req.Name))
	}
}

// formatCommandArgs renders a command line for logging.
func formatCommandArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if strings.ContainsAny(a, " \t\"'") {
			quoted[i] = fmt.Sprintf("%q", a)
		} else {
			quoted[i] = a
		}
	}
	return strings.Join(quoted, " ")
}
