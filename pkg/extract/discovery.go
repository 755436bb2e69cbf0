package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Discover returns the sorted, de-duplicated absolute paths of the Markdown
// files selected by opts. Hidden files and directories below a walked root
// are skipped. Explicitly named files are kept when their extension matches,
// unless an exclude glob matches them.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := &discoverer{
		ctx:        ctx,
		workDir:    workDir,
		extensions: opts.extensions(),
		excludes:   opts.excludes(),
		follow:     opts.FollowSymlinks,
		seen:       make(map[string]struct{}),
		visited:    make(map[string]struct{}),
	}

	for _, input := range opts.paths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if info.IsDir() {
			if err := d.walk(abs); err != nil {
				return nil, err
			}
			continue
		}
		if d.wantFile(abs) {
			d.add(abs)
		}
	}

	slices.Sort(d.files)
	return d.files, nil
}

type discoverer struct {
	ctx        context.Context
	workDir    string
	extensions []string
	excludes   []string
	follow     bool

	files   []string
	seen    map[string]struct{}
	visited map[string]struct{}
}

func (d *discoverer) add(path string) {
	if _, ok := d.seen[path]; ok {
		return
	}
	d.seen[path] = struct{}{}
	d.files = append(d.files, path)
}

func (d *discoverer) rel(path string) string {
	rel, err := filepath.Rel(d.workDir, path)
	if err != nil {
		return path
	}
	return rel
}

func (d *discoverer) wantFile(path string) bool {
	return hasExtension(path, d.extensions) && !matchAny(d.rel(path), d.excludes)
}

// walk adds matching files under root. Symlinked directories are walked
// through their target, once per target, so cycles terminate.
func (d *discoverer) walk(root string) error {
	if real, err := filepath.EvalSymlinks(root); err == nil {
		if _, done := d.visited[real]; done {
			return nil
		}
		d.visited[real] = struct{}{}
	}

	var pending []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := d.ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		hidden := path != root && strings.HasPrefix(entry.Name(), ".")

		if entry.IsDir() {
			if hidden || (path != root && matchAny(d.rel(path), d.excludes)) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				// Broken or unreadable link.
				return nil //nolint:nilerr // skipped on purpose
			}
			if target.IsDir() {
				if d.follow && !matchAny(d.rel(path), d.excludes) {
					pending = append(pending, path)
				}
				return nil
			}
		}

		if d.wantFile(path) {
			d.add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}

	for _, link := range pending {
		real, err := filepath.EvalSymlinks(link)
		if err != nil {
			continue
		}
		if err := d.walk(real); err != nil {
			return err
		}
	}
	return nil
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
