// Package fsutil provides the file and path helpers used by the lipsync client.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultDirPermissions  = 0o750
	invalidCharReplacement = "_"
	millisecondsInSecond   = 1000
	secondsInMinute        = 60
	formatMilliseconds     = "%.0fms"
	formatSeconds          = "%.2fs"
	formatMinutes          = "%dm %.1fs"
)

// Accepted input extensions.
const (
	extTXT  = ".txt"
	extMD   = ".md"
	extText = ".text"
)

// ErrNotTextFile is returned for inputs without a plain text extension.
var ErrNotTextFile = errors.New("not a text file")

var filenameReplacer = strings.NewReplacer(
	"<", invalidCharReplacement,
	">", invalidCharReplacement,
	":", invalidCharReplacement,
	"\"", invalidCharReplacement,
	"/", invalidCharReplacement,
	"\\", invalidCharReplacement,
	"|", invalidCharReplacement,
	"?", invalidCharReplacement,
	"*", invalidCharReplacement,
	" ", invalidCharReplacement,
)

// EnsureDir creates path and its parents when missing.
func EnsureDir(path string) error {
	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		mkdirErr := os.MkdirAll(path, defaultDirPermissions)
		if mkdirErr != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, mkdirErr)
		}
	}

	return nil
}

// IsValidTextFile reports whether filename has a plain text extension.
func IsValidTextFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case extTXT, extMD, extText:
		return true
	default:
		return false
	}
}

// ReadTextFile reads a text input, refusing other file types.
func ReadTextFile(path string) (string, error) {
	if !IsValidTextFile(path) {
		return "", fmt.Errorf("%w: %s", ErrNotTextFile, path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return string(data), nil
}

// SanitizeFilename replaces characters that are invalid in most filesystems.
func SanitizeFilename(filename string) string {
	return filenameReplacer.Replace(filename)
}

// TimelinePath names the timeline written for input inside dir.
func TimelinePath(dir, input, extension string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	return filepath.Join(dir, SanitizeFilename(base)+"."+extension)
}

// WriteFile writes data to path, creating the parent directory.
func WriteFile(path string, data []byte) error {
	err := EnsureDir(filepath.Dir(path))
	if err != nil {
		return err
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// FormatMilliseconds formats a timeline length, e.g. "850ms", "3.06s", "1m 5.0s".
func FormatMilliseconds(ms float64) string {
	if ms < millisecondsInSecond {
		return fmt.Sprintf(formatMilliseconds, ms)
	}

	seconds := ms / millisecondsInSecond
	if seconds < secondsInMinute {
		return fmt.Sprintf(formatSeconds, seconds)
	}

	minutes := int(seconds / secondsInMinute)

	return fmt.Sprintf(formatMinutes, minutes, seconds-float64(minutes*secondsInMinute))
}
