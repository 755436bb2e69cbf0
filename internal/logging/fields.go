// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Run configuration fields.
	FieldFlavor = "flavor"
	FieldJobs   = "jobs"
	FieldFormat = "format"
	FieldStrict = "strict"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesErrored    = "files_errored"
	FieldUnsafeURLs      = "unsafe_urls"
	FieldFailures        = "collector_failures"
	FieldElapsed         = "elapsed"

	// Extraction fields.
	FieldCollector = "collector"
	FieldWarnings  = "warnings"
	FieldURL       = "url"
	FieldLayer     = "layer"

	// Collector listing fields.
	FieldEnabled      = "enabled"
	FieldInterests    = "interests"
	FieldIgnoreInside = "ignore_inside"
	FieldDescription  = "description"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
