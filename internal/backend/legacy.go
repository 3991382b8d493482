package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	wserrors "git.home.luguber.info/inful/wheelsmith/internal/errors"
	"git.home.luguber.info/inful/wheelsmith/internal/logfields"
	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
)

// logDivider separates captured command output in log messages.
const logDivider = "----------------------------------------"

// buildLegacy invokes the external build command against the requirement's
// source directory, then scans the destination directory for the produced
// wheel.
func (d *Dispatcher) buildLegacy(ctx context.Context, req *requirement.Requirement, destDir, pythonTag string) (string, error) {
	args := make([]string, 0, len(d.opts.BuildCommand)+len(d.opts.GlobalOptions)+len(d.opts.BuildOptions)+4)
	args = append(args, d.opts.BuildCommand...)
	args = append(args, d.opts.GlobalOptions...)
	args = append(args, d.opts.BuildOptions...)
	args = append(args, "-d", destDir)
	if pythonTag != "" {
		args = append(args, "--python-tag", pythonTag)
	}

	slog.Debug("Building wheel via legacy build command",
		logfields.Requirement(req.Name), logfields.Path(destDir),
		slog.String("command", formatCommandArgs(args)))

	output, err := d.runner.Run(ctx, req.SourceDir, args)
	if err != nil {
		slog.Error("Failed building wheel", logfields.Requirement(req.Name), logfields.Error(err))
		return "", wserrors.BuildFailed(err, fmt.Sprintf("legacy build of wheel for %s failed", req.Name)).
			WithContext("command", formatCommandArgs(args))
	}

	return selectProducedWheel(ctx, destDir, req.Name, args, output)
}

// selectProducedWheel resolves the wheel path from the files the legacy build
// left in the destination directory. Zero files is a failure; more than one
// picks the lexicographically-first name and warns.
func selectProducedWheel(ctx context.Context, destDir, name string, args []string, output string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", wserrors.BuildFailed(err, fmt.Sprintf("scan destination directory for %s", name))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	// Sort for determinism.
	sort.Strings(names)

	if len(names) == 0 {
		slog.Warn("Legacy build of wheel created no files",
			logfields.Requirement(name),
			slog.String("result", formatCommandResult(ctx, args, output)))
		return "", wserrors.ZeroArtifacts(fmt.Sprintf("legacy build of wheel for %s created no files", name))
	}

	if len(names) > 1 {
		slog.Warn("Legacy build of wheel created more than one file, choosing first",
			logfields.Requirement(name),
			slog.String("filenames", strings.Join(names, ", ")),
			slog.String("result", formatCommandResult(ctx, args, output)))
	}

	return filepath.Join(destDir, names[0]), nil
}

// Clean runs the best-effort legacy clean command on the requirement's source
// directory after a failed legacy build. Failures are logged and swallowed.
func (d *Dispatcher) Clean(ctx context.Context, req *requirement.Requirement) bool {
	if req.SourceDir == "" {
		return true
	}
	args := make([]string, 0, len(d.opts.CleanCommand)+len(d.opts.GlobalOptions))
	args = append(args, d.opts.CleanCommand...)
	args = append(args, d.opts.GlobalOptions...)

	slog.Info("Running clean command for requirement", logfields.Requirement(req.Name))
	if _, err := d.runner.Run(ctx, req.SourceDir, args); err != nil {
		slog.Error("Failed cleaning build dir", logfields.Requirement(req.Name), logfields.Error(err))
		return false
	}
	return true
}

// formatCommandResult formats command information for logging. Command output
// is suppressed unless verbose (debug) logging is enabled.
func formatCommandResult(ctx context.Context, args []string, output string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Command arguments: %s\n", formatCommandArgs(args))

	switch {
	case output == "":
		b.WriteString("Command output: None")
	case !slog.Default().Enabled(ctx, slog.LevelDebug):
		b.WriteString("Command output: [use --verbose to show]")
	default:
		if !strings.HasSuffix(output, "\n") {
			output += "\n"
		}
		fmt.Fprintf(&b, "Command output:\n%s%s", output, logDivider)
	}

	return b.String()
}
