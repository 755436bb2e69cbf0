package extract

import "github.com/yaklabco/gomdwarehouse/pkg/config"

// Options controls a multi-file run.
type Options struct {
	// Paths are files or directories to process. Empty means ".".
	Paths []string

	// WorkingDir resolves relative Paths and is the base for glob matching.
	// Empty means the process working directory.
	WorkingDir string

	// Extensions lists Markdown extensions (with leading dot). Empty means
	// DefaultExtensions.
	Extensions []string

	// ExcludeGlobs skip matching files and directories. Config.Ignore is
	// applied as well.
	ExcludeGlobs []string

	// FollowSymlinks traverses symlinked directories.
	FollowSymlinks bool

	// Jobs bounds concurrent documents; <= 0 means runtime.NumCPU().
	Jobs int

	// Config is the resolved configuration for every document.
	Config *config.Config
}

// DefaultExtensions returns the default set of Markdown file extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) paths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}

func (o Options) excludes() []string {
	if o.Config == nil || len(o.Config.Ignore) == 0 {
		return o.ExcludeGlobs
	}
	out := make([]string, 0, len(o.ExcludeGlobs)+len(o.Config.Ignore))
	out = append(out, o.ExcludeGlobs...)
	return append(out, o.Config.Ignore...)
}
