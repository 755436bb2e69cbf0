// Package fsutil provides the file system primitives gomdwarehouse needs:
// size-bounded reads of untrusted documents and atomic result writes.
package fsutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrTooLarge is wrapped by every *SizeError.
	ErrTooLarge = errors.New("file too large")
)

// SizeError reports a file larger than the read limit. Size is a lower
// bound when the file grew while being read.
type SizeError struct {
	Path string
	Size int64
	Max  int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: %d bytes exceeds limit of %d", e.Path, e.Size, e.Max)
}

func (e *SizeError) Unwrap() error {
	return ErrTooLarge
}

// FileInfo describes a file as it was read.
type FileInfo struct {
	Path    string
	Mode    os.FileMode
	ModTime time.Time

	// Size is the number of bytes read.
	Size int64

	// Hash is the SHA-256 of the content read.
	Hash [32]byte
}

// Digest returns the hex-encoded content hash.
func (fi *FileInfo) Digest() string {
	return hex.EncodeToString(fi.Hash[:])
}

// DigestOf returns the hex-encoded SHA-256 of content, matching
// FileInfo.Digest for the same bytes.
func DigestOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ReadFile reads at most maxBytes from path. Files that are, or grow, larger
// fail with a *SizeError before their content is returned. maxBytes <= 0
// disables the limit.
func ReadFile(ctx context.Context, path string, maxBytes int64) ([]byte, *FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, classify(path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}
	if maxBytes > 0 && stat.Size() > maxBytes {
		return nil, nil, &SizeError{Path: path, Size: stat.Size(), Max: maxBytes}
	}

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, classify(path, err)
	}
	if maxBytes > 0 && int64(len(content)) > maxBytes {
		return nil, nil, &SizeError{Path: path, Size: int64(len(content)), Max: maxBytes}
	}

	info := &FileInfo{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    int64(len(content)),
		Hash:    sha256.Sum256(content),
	}
	return content, info, nil
}

func classify(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}
}
