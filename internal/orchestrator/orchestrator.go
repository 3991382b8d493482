// Package orchestrator drives a batch of wheel builds end to end: it applies
// the build policy, resolves output directories through the cache, dispatches
// each build, and places the produced wheels. One requirement's failure never
// corrupts another's outcome; only an internal consistency violation aborts
// the run.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/wheelsmith/internal/backend"
	"git.home.luguber.info/inful/wheelsmith/internal/cache"
	wserrors "git.home.luguber.info/inful/wheelsmith/internal/errors"
	"git.home.luguber.info/inful/wheelsmith/internal/logfields"
	"git.home.luguber.info/inful/wheelsmith/internal/metrics"
	"git.home.luguber.info/inful/wheelsmith/internal/policy"
	"git.home.luguber.info/inful/wheelsmith/internal/provenance"
	"git.home.luguber.info/inful/wheelsmith/internal/requirement"
	"git.home.luguber.info/inful/wheelsmith/internal/unpack"
	"git.home.luguber.info/inful/wheelsmith/internal/workspace"
)

// Mode selects what the run's output is.
type Mode string

const (
	// ModeInstall builds wheels, then unpacks each in place in preparation
	// for installation. No fixed external wheel directory may be configured.
	ModeInstall Mode = "install"

	// ModeWheel builds wheels as the run's output and copies them into the
	// configured wheel directory.
	ModeWheel Mode = "wheel"
)

// Options configures an Orchestrator.
type Options struct {
	// WheelDir is the externally requested output directory. Required for
	// ModeWheel, forbidden for ModeInstall.
	WheelDir string

	// BuildDir is where install-mode placement re-establishes source
	// directories. Defaults to a subdirectory of the run workspace.
	BuildDir string

	// InterpreterTag overrides the python tag of wheels built in install
	// mode (e.g. "cp312"). Empty disables the override.
	InterpreterTag string
}

// Orchestrator executes wheel build batches. Processing is strictly
// sequential; the orchestrator blocks on each backend invocation.
type Orchestrator struct {
	policy     *policy.Policy
	cache      *cache.WheelCache
	dispatcher *backend.Dispatcher
	ws         *workspace.Manager
	opts       Options
	recorder   metrics.Recorder
	prov       *provenance.Store
	runID      string

	// wheelFilenames accumulates built wheel names, relative to their output
	// directory, in batch order.
	wheelFilenames []string
}

// New creates an orchestrator. The workspace must already be created; its
// lifetime bounds every ephemeral directory this run produces.
func New(p *policy.Policy, c *cache.WheelCache, d *backend.Dispatcher, ws *workspace.Manager, opts Options) *Orchestrator {
	return &Orchestrator{
		policy:     p,
		cache:      c,
		dispatcher: d,
		ws:         ws,
		opts:       opts,
		recorder:   metrics.NoopRecorder{},
		runID:      uuid.NewString(),
	}
}

// WithRecorder swaps the metrics recorder (fluent helper).
func (o *Orchestrator) WithRecorder(r metrics.Recorder) *Orchestrator { o.recorder = r; return o }

// WithProvenance attaches a provenance store recording per-build outcomes.
func (o *Orchestrator) WithProvenance(s *provenance.Store) *Orchestrator { o.prov = s; return o }

// RunID returns the identifier of this orchestrator run.
func (o *Orchestrator) RunID() string { return o.runID }

// WheelFilenames returns the built wheel filenames accumulated so far,
// relative to their output directories, in batch order.
func (o *Orchestrator) WheelFilenames() []string { return o.wheelFilenames }

// buildEntry pairs a requirement with its resolved output directory.
type buildEntry struct {
	req       *requirement.Requirement
	outputDir string
}

// Build builds wheels for the batch and returns the requirements that failed.
// The returned error is non-nil only when the whole run was aborted
// (a mode precondition or internal consistency violation).
func (o *Orchestrator) Build(ctx context.Context, reqs []*requirement.Requirement, mode Mode) ([]*requirement.Requirement, error) {
	if err := o.checkModePrecondition(mode); err != nil {
		return nil, err
	}

	started := time.Now()
	defer func() { o.recorder.ObserveRunDuration(time.Since(started)) }()

	buildset := o.collectBuildset(reqs, mode)
	if len(buildset) == 0 {
		return nil, nil
	}

	names := make([]string, len(buildset))
	for i, entry := range buildset {
		names[i] = entry.req.Name
	}
	slog.Info("Building wheels for collected requirements",
		logfields.Mode(string(mode)), logfields.RunID(o.runID),
		slog.String("requirements", strings.Join(names, ", ")))

	pythonTag := ""
	if mode == ModeInstall {
		pythonTag = o.opts.InterpreterTag
	}

	var succeeded, failed []*requirement.Requirement
	for _, entry := range buildset {
		req := entry.req

		if err := os.MkdirAll(entry.outputDir, 0o750); err != nil {
			o.recordFailure(ctx, req, wserrors.PlacementFailed(err, "create output directory"))
			failed = append(failed, req)
			continue
		}

		wheelPath, err := o.buildOne(ctx, req, entry.outputDir, pythonTag)
		if err != nil {
			// Best-effort cleanup of legacy build droppings; the failure
			// stands regardless.
			if req.Protocol != requirement.ProtocolModern {
				o.dispatcher.Clean(ctx, req)
			}
			o.recordFailure(ctx, req, err)
			failed = append(failed, req)
			continue
		}

		if err := o.place(ctx, req, wheelPath, mode); err != nil {
			if wserrors.IsFatal(err) {
				return failed, err
			}
			o.recordFailure(ctx, req, err)
			failed = append(failed, req)
			continue
		}

		rel, relErr := filepath.Rel(entry.outputDir, wheelPath)
		if relErr != nil {
			rel = filepath.Base(wheelPath)
		}
		o.wheelFilenames = append(o.wheelFilenames, rel)
		succeeded = append(succeeded, req)
		o.recorder.IncRequirementOutcome(metrics.OutcomeBuilt)
	}

	o.logSummary(succeeded, failed)
	return failed, nil
}

// checkModePrecondition enforces the mode/output-directory contract: install
// runs never have a fixed external wheel directory, wheel runs always do.
func (o *Orchestrator) checkModePrecondition(mode Mode) error {
	switch mode {
	case ModeInstall:
		if o.opts.WheelDir != "" {
			return wserrors.InternalConsistencyViolation("install mode must not configure a wheel output directory")
		}
	case ModeWheel:
		if o.opts.WheelDir == "" {
			return wserrors.InternalConsistencyViolation("wheel mode requires a wheel output directory")
		}
	default:
		return wserrors.InternalConsistencyViolation(fmt.Sprintf("unknown build mode %q", mode))
	}
	return nil
}

// collectBuildset applies the build policy and resolves each surviving
// requirement's output directory.
func (o *Orchestrator) collectBuildset(reqs []*requirement.Requirement, mode Mode) []buildEntry {
	needWheel := mode == ModeWheel

	var buildset []buildEntry
	for _, req := range reqs {
		if !o.policy.ShouldBuild(req, needWheel) {
			o.recorder.IncRequirementOutcome(metrics.OutcomeSkipped)
			continue
		}
		buildset = append(buildset, buildEntry{req: req, outputDir: o.resolveOutputDir(req)})
	}
	return buildset
}

// resolveOutputDir picks the persistent cache directory when a persistent
// root is configured and the policy approves caching; otherwise the
// run-scoped ephemeral directory.
func (o *Orchestrator) resolveOutputDir(req *requirement.Requirement) string {
	link := req.Link
	if link == nil {
		// Local sources without a link still need a stable key within the run.
		link = requirement.FileLink(req.SourceDir)
	}

	if o.cache.HasPersistentRoot() && o.policy.ShouldCache(req) {
		o.recorder.IncCacheDirKind(true)
		return o.cache.PathForLink(link)
	}
	o.recorder.IncCacheDirKind(false)
	return o.cache.EphemPathForLink(link)
}

// buildOne builds a single requirement inside its scoped build environment
// and a fresh temporary build directory, then moves the wheel into outputDir.
func (o *Orchestrator) buildOne(ctx context.Context, req *requirement.Requirement, outputDir, pythonTag string) (string, error) {
	release, err := req.AcquireBuildEnv(ctx)
	if err != nil {
		return "", wserrors.BuildFailed(err, fmt.Sprintf("acquire build environment for %s", req.Name))
	}
	defer release()

	tempDir, err := o.ws.CreateTempSubdir("wheel")
	if err != nil {
		return "", wserrors.BuildFailed(err, fmt.Sprintf("create temporary build directory for %s", req.Name))
	}
	defer func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			slog.Warn("Failed to remove temporary build directory",
				logfields.Path(tempDir), logfields.Error(rmErr))
		}
	}()

	buildStart := time.Now()
	wheelPath, err := o.dispatcher.Build(ctx, req, tempDir, pythonTag)
	o.recorder.ObserveWheelBuildDuration(string(req.Protocol), time.Since(buildStart))
	if err != nil {
		return "", err
	}

	sum, size, err := hashFile(wheelPath)
	if err != nil {
		return "", wserrors.PlacementFailed(err, fmt.Sprintf("hash wheel for %s", req.Name))
	}

	wheelName := filepath.Base(wheelPath)
	destPath := filepath.Join(outputDir, wheelName)
	if err := moveFile(wheelPath, destPath); err != nil {
		return "", wserrors.PlacementFailed(err, fmt.Sprintf("store wheel for %s", req.Name))
	}

	slog.Info("Created wheel",
		logfields.Requirement(req.Name), logfields.Wheel(wheelName),
		logfields.Size(size), logfields.SHA256(sum))
	slog.Info("Stored in directory", logfields.Path(outputDir))

	o.appendProvenance(ctx, req, wheelName, sum, size, provenance.OutcomeBuilt)
	return destPath, nil
}

// place reconciles a built wheel according to the run mode.
func (o *Orchestrator) place(ctx context.Context, req *requirement.Requirement, wheelPath string, mode Mode) error {
	if mode == ModeInstall {
		return o.placeForInstall(req, wheelPath)
	}
	return o.placeForWheelOutput(req, wheelPath)
}

// placeForInstall replaces the requirement's source with the unpacked wheel:
// the single legitimate in-place mutation of requirement state, owned
// exclusively by the orchestrator.
func (o *Orchestrator) placeForInstall(req *requirement.Requirement, wheelPath string) error {
	// The source about to be removed must be a temporary checkout this tool
	// placed. A missing marker means the caller handed us a directory we do
	// not own: a contract violation that aborts the whole run.
	if req.SourceDir != "" && !requirement.HasDeleteMarker(req.SourceDir) {
		return wserrors.InternalConsistencyViolation(
			fmt.Sprintf("source directory %s for %s lacks the removable-source marker", req.SourceDir, req.Name))
	}

	if err := req.RemoveTemporarySource(); err != nil {
		return wserrors.PlacementFailed(err, fmt.Sprintf("remove built source for %s", req.Name))
	}

	buildDir := o.opts.BuildDir
	if buildDir == "" {
		dir, err := o.ws.CreateSubdir("build")
		if err != nil {
			return wserrors.PlacementFailed(err, "create install build directory")
		}
		buildDir = dir
	}

	loc, err := req.EnsureBuildLocation(buildDir)
	if err != nil {
		return wserrors.PlacementFailed(err, fmt.Sprintf("establish build location for %s", req.Name))
	}
	req.SourceDir = loc
	req.Link = requirement.FileLink(wheelPath)

	if err := unpack.Wheel(wheelPath, loc); err != nil {
		return wserrors.PlacementFailed(err, fmt.Sprintf("unpack wheel for %s", req.Name))
	}
	return nil
}

// placeForWheelOutput copies the wheel from its cache directory into the
// externally requested wheel directory.
func (o *Orchestrator) placeForWheelOutput(req *requirement.Requirement, wheelPath string) error {
	if err := os.MkdirAll(o.opts.WheelDir, 0o750); err != nil {
		return wserrors.PlacementFailed(err, fmt.Sprintf("create wheel directory for %s", req.Name))
	}
	dest := filepath.Join(o.opts.WheelDir, filepath.Base(wheelPath))
	if err := copyFile(wheelPath, dest); err != nil {
		return wserrors.PlacementFailed(err, fmt.Sprintf("copy wheel for %s", req.Name))
	}
	return nil
}

// recordFailure logs, counts, and persists a per-requirement failure.
func (o *Orchestrator) recordFailure(ctx context.Context, req *requirement.Requirement, err error) {
	slog.Warn("Building wheel failed", logfields.Requirement(req.Name), logfields.Error(err))
	o.recorder.IncRequirementOutcome(metrics.OutcomeFailed)
	o.appendProvenance(ctx, req, "", "", 0, provenance.OutcomeFailed)
}

func (o *Orchestrator) appendProvenance(ctx context.Context, req *requirement.Requirement, wheelName, sum string, size int64, outcome provenance.Outcome) {
	if o.prov == nil {
		return
	}
	err := o.prov.Append(ctx, provenance.Record{
		RunID:       o.runID,
		Requirement: req.Name,
		Wheel:       wheelName,
		SHA256:      sum,
		Size:        size,
		Outcome:     outcome,
	})
	if err != nil {
		slog.Warn("Failed to record build provenance",
			logfields.Requirement(req.Name), logfields.Error(err))
	}
}

func (o *Orchestrator) logSummary(succeeded, failed []*requirement.Requirement) {
	if len(succeeded) > 0 {
		slog.Info("Successfully built requirements",
			logfields.RunID(o.runID), slog.String("requirements", joinNames(succeeded)))
	}
	if len(failed) > 0 {
		slog.Info("Failed to build requirements",
			logfields.RunID(o.runID), slog.String("requirements", joinNames(failed)))
	}
}

func joinNames(reqs []*requirement.Requirement) string {
	names := make([]string, len(reqs))
	for i, req := range reqs {
		names[i] = req.Name
	}
	return strings.Join(names, " ")
}
