// Package fs reads image files from the local filesystem for the picker and
// for bulk import.
package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"flipbutton/internal/button"
)

// ErrNotImage is returned for files whose content is not an image.
var ErrNotImage = errors.New("not an image")

// ImageExtensions lists the extensions offered by file pickers. Content is
// always sniffed, so this only narrows what the user is shown.
var ImageExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".svg", ".ico", ".tif", ".tiff", ".avif", ".heic",
}

// ReadImage loads the file at rawPath as a button.File. Directories and
// special files are rejected, and the MIME type is detected from content.
func ReadImage(rawPath string) (*button.File, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if err := checkRegular(absPath, info.Mode()); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", absPath, err)
	}

	mimeType, err := DetectImageType(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", absPath, err)
	}

	return &button.File{
		Name:         info.Name(),
		Type:         mimeType,
		Size:         int64(len(data)),
		LastModified: info.ModTime(),
		Data:         data,
	}, nil
}

// DetectImageType sniffs data and returns its MIME type without parameters,
// or ErrNotImage.
func DetectImageType(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	mimeType, _, _ := strings.Cut(mt.String(), ";")
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mimeType)
	}
	return mimeType, nil
}

// HasImageExtension reports whether name ends in one of ImageExtensions.
func HasImageExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FindFiles lists regular files under dir, skipping anything ignore matches.
// Ignored directories are not descended into. Paths are returned in lexical
// order.
func FindFiles(dir string, recursive bool, ignore *IgnoreMatcher) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive || ignore.Match(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignore.Match(rel) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return paths, nil
}

func checkRegular(path string, mode fs.FileMode) error {
	switch {
	case mode.IsDir():
		return fmt.Errorf("cannot read directory as image: %s", path)
	case mode&os.ModeDevice != 0:
		return fmt.Errorf("device files not supported: %s", path)
	case mode&os.ModeNamedPipe != 0:
		return fmt.Errorf("named pipes not supported: %s", path)
	case mode&os.ModeSocket != 0:
		return fmt.Errorf("sockets not supported: %s", path)
	case !mode.IsRegular():
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}
