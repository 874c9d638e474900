// Package ioutils provides file system utilities for the media exporter.
//
// This package contains functions for:
//   - Copying files without overwriting
//   - File writing
//   - Filename sanitization
//   - Directory creation and inspection
//
// All functions that accept a context.Context respect cancellation,
// though file operations themselves may not be interruptible.
package ioutils

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// invalidChars matches characters that cannot appear in a file or folder name
// on at least one of the supported filesystems: < > : " / \ | ? * and control
// characters 0x00-0x1f.
var invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFileName replaces every character that is invalid in file/folder
// names with an underscore.
//
// Trailing dots and spaces are replaced too, which also turns "." and ".."
// into "_" and "__" so a name can never address a parent directory. An empty
// name becomes "_". Names that are already valid come back unchanged.
//
// Example:
//
//	SanitizeFileName("Sún*Rise")       // Returns "Sún_Rise"
//	SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
//	SanitizeFileName("..")             // Returns "__"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	if name == "" {
		return "_"
	}
	trimmed := strings.TrimRight(name, ". ")
	return trimmed + strings.Repeat("_", len(name)-len(trimmed))
}

// CopyFileIfMissing copies src to dst unless dst already exists.
//
// The destination is opened with O_EXCL, so an existing file is never
// truncated or overwritten, even if it appears between the check and the
// copy. The returned bool reports whether a copy happened and n the number
// of bytes written.
//
// Example:
//
//	copied, n, err := CopyFileIfMissing(ctx, "/site/media/1/sun.jpg", "/export/Images/Sun.jpg")
func CopyFileIfMissing(ctx context.Context, src, dst string) (copied bool, n int64, err error) {
	if err := ctx.Err(); err != nil {
		return false, 0, err
	}

	if _, err := os.Lstat(dst); err == nil {
		return false, 0, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, 0, err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return false, 0, err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, 0, nil
		}
		return false, 0, err
	}

	n, err = io.Copy(destFile, sourceFile)
	if cerr := destFile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return false, 0, err
	}

	return true, n, nil
}

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644. If the file already exists,
// it is truncated before writing. Nothing is written once ctx is done.
func WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FileExists reports whether path names an existing regular file.
// Directories and unreadable paths report false.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// HasFiles reports whether dir directly contains at least one file.
// Subdirectories are not counted and not descended into.
func HasFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			return true, nil
		}
	}
	return false, nil
}
