// Package files is the storage adapter the decoders read from and the
// encoders write to. It runs on any afero filesystem so commands work on the
// OS and tests on memory.
package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Source reads and writes whole files.
type Source interface {
	ReadFile(path string) ([]byte, error)
	ModTime(path string) (time.Time, error)
	WriteFile(path string, data []byte) error
	Walk(root string, fn func(path string, info fs.FileInfo) error) error
}

// FS implements Source on an afero filesystem.
type FS struct {
	fs afero.Fs
}

// New wraps fs.
func New(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// OS returns a source backed by the operating system.
func OS() *FS {
	return New(afero.NewOsFs())
}

// ReadFile returns the file contents.
func (f *FS) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// ModTime returns the file's modification time.
func (f *FS) ModTime(path string) (time.Time, error) {
	info, err := f.fs.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}

// WriteFile writes data, creating parent directories as needed.
func (f *FS) WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(f.fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Walk calls fn for every regular file under root in lexical order.
// Returning filepath.SkipDir from fn skips the rest of that file's directory.
func (f *FS) Walk(root string, fn func(path string, info fs.FileInfo) error) error {
	return afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if info.IsDir() {
			return nil
		}
		return fn(path, info)
	})
}

// Ext returns the lower-cased extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
