package errors

// Constructors for the failure taxonomy used by the dispatcher and orchestrator.
// A policy-driven skip is not an error and has no constructor here.

// ConfigurationConflict signals options that are incompatible with the
// requirement's build protocol. Fails that requirement only.
func ConfigurationConflict(message string) *BuildError {
	return New(CategoryConfig, SeverityError, message)
}

// BuildFailed signals a backend or subprocess failure during the build.
func BuildFailed(err error, message string) *BuildError {
	return Wrap(err, CategoryBuild, SeverityError, message)
}

// ZeroArtifacts signals a legacy build that exited successfully but produced
// no files in the destination directory.
func ZeroArtifacts(message string) *BuildError {
	return New(CategoryBuild, SeverityError, message)
}

// PlacementFailed signals a directory creation, copy, or move failure while
// placing a built wheel.
func PlacementFailed(err error, message string) *BuildError {
	return Wrap(err, CategoryPlacement, SeverityError, message)
}

// InternalConsistencyViolation signals a caller contract violation (such as a
// missing removable-source marker before destructive removal). Aborts the
// entire run.
func InternalConsistencyViolation(message string) *BuildError {
	return New(CategoryInternal, SeverityFatal, message)
}
