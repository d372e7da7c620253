// Package jsonfile implements the default persistence gateway: the whole record
// collection as one JSON document on local disk.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alem-hub/student-records/internal/domain/student"
	"github.com/alem-hub/student-records/internal/infrastructure/persistence/document"
)

const (
	// DefaultFileName is the file every save writes to.
	DefaultFileName = "data.json"

	// LegacyFileName is read only when DefaultFileName is absent.
	LegacyFileName = "data. json"
)

// Config holds the data file location.
type Config struct {
	// Dir is the directory holding the data file. Empty means the directory
	// of the running executable.
	Dir string

	// FileName and LegacyFileName default to DefaultFileName and LegacyFileName.
	FileName       string
	LegacyFileName string
}

// Gateway reads and writes the record document.
type Gateway struct {
	dir    string
	name   string
	legacy string
}

// New creates a Gateway, resolving an empty Dir to the executable's directory.
func New(cfg Config) (*Gateway, error) {
	dir := cfg.Dir
	if dir == "" {
		var err error
		dir, err = ExecutableDir()
		if err != nil {
			return nil, err
		}
	}
	g := &Gateway{
		dir:    dir,
		name:   cfg.FileName,
		legacy: cfg.LegacyFileName,
	}
	if g.name == "" {
		g.name = DefaultFileName
	}
	if g.legacy == "" {
		g.legacy = LegacyFileName
	}
	return g, nil
}

// ExecutableDir returns the directory of the running program.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Name implements student.Gateway.
func (g *Gateway) Name() string { return "file" }

// WritePath is the path every save targets.
func (g *Gateway) WritePath() string {
	return filepath.Join(g.dir, g.name)
}

// ReadPath returns the current file if it exists, else the legacy file if that
// exists, else the current path.
func (g *Gateway) ReadPath() string {
	current := g.WritePath()
	if fileExists(current) {
		return current
	}
	legacy := filepath.Join(g.dir, g.legacy)
	if fileExists(legacy) {
		return legacy
	}
	return current
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Save writes records to the current file name.
func (g *Gateway) Save(_ context.Context, records []student.Record) error {
	data, err := document.Encode(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(g.WritePath(), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", g.WritePath(), err)
	}
	return nil
}

// Load reads the record document. A missing file yields no records.
func (g *Gateway) Load(_ context.Context) ([]student.Record, error) {
	path := g.ReadPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []student.Record{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	records, err := document.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}
