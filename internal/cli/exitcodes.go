package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/yaklabco/gomdwarehouse/pkg/extract"
	"github.com/yaklabco/gomdwarehouse/pkg/fsutil"
)

// Exit codes for gomdwarehouse.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFindings indicates extraction completed but, in strict mode,
	// found unsafe URLs, collector failures or unreadable documents.
	ExitFindings = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

var (
	// ErrFindings is returned when strict mode turns findings into a failure.
	ErrFindings = errors.New("extraction findings")

	// ErrUsage marks invalid command-line input.
	ErrUsage = errors.New("invalid usage")

	// ErrConfig marks configuration errors.
	ErrConfig = errors.New("configuration error")
)

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// ExitCodeFromResult determines the exit code based on result and strict mode.
func ExitCodeFromResult(result *extract.Result, strict bool) int {
	if result == nil || !strict {
		return ExitSuccess
	}
	if result.HasUnsafeURLs() || result.HasFailures() {
		return ExitFindings
	}
	return ExitSuccess
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrFindings):
		return ExitFindings
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, fs.ErrPermission),
		errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fsutil.ErrTooLarge):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
