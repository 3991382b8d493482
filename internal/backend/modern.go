package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	wserrors "git.home.luguber.info/inful/wheelsmith/internal/errors"
	"git.home.luguber.info/inful/wheelsmith/internal/logfields"
	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
	"git.home.luguber.info/inful/wheelsmith/internal/wheel"
)

// buildModern invokes the requirement's declared backend. The modern protocol
// accepts no free-form build options, so those are rejected before the
// backend is ever invoked.
func (d *Dispatcher) buildModern(ctx context.Context, req *requirement.Requirement, destDir, pythonTag string) (string, error) {
	if len(d.opts.BuildOptions) > 0 {
		slog.Error("Cannot build wheel with custom build options using the modern protocol",
			logfields.Requirement(req.Name))
		return "", wserrors.ConfigurationConflict(
			fmt.Sprintf("cannot build wheel for %s: modern build protocol accepts no build options", req.Name))
	}
	if req.Backend == nil || req.MetadataDir == "" {
		return "", wserrors.ConfigurationConflict(
			fmt.Sprintf("modern-protocol requirement %s has no backend or metadata directory", req.Name))
	}

	slog.Debug("Building wheel via modern backend",
		logfields.Requirement(req.Name), logfields.Path(destDir))

	wheelName, err := req.Backend.BuildWheel(ctx, destDir, req.MetadataDir)
	if err != nil {
		slog.Error("Failed building wheel", logfields.Requirement(req.Name), logfields.Error(err))
		return "", wserrors.BuildFailed(err, fmt.Sprintf("modern build of wheel for %s failed", req.Name))
	}

	if pythonTag != "" {
		// Modern backends have no tag-negotiation capability, so the produced
		// file is renamed, touching only the python tag field.
		newName, err := wheel.ReplacePythonTag(wheelName, pythonTag)
		if err != nil {
			return "", wserrors.BuildFailed(err, fmt.Sprintf("rewrite python tag for %s", req.Name))
		}
		if err := os.Rename(filepath.Join(destDir, wheelName), filepath.Join(destDir, newName)); err != nil {
			return "", wserrors.BuildFailed(err, fmt.Sprintf("rename wheel for %s", req.Name))
		}
		wheelName = newName
	}

	return filepath.Join(destDir, wheelName), nil
}
