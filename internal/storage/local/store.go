// Package local implements the on-disk archive store.
package local

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Config captures the parameters for the archive store.
type Config struct {
	// BaseDir is the output directory all archive folders live under.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// ArchiveStore persists story folders and page files on the local
// filesystem. Folder existence doubles as the pipeline's idempotency
// marker: a story whose folder already exists is never re-archived.
type ArchiveStore struct {
	baseDir string
	logger  *zap.Logger
}

// New creates an archive store rooted at cfg.BaseDir, creating the
// directory if needed and verifying it is writable.
func New(cfg Config, logger *zap.Logger) (*ArchiveStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	// Relative roots ("." is the shipped default) must become absolute or
	// the traversal guard in resolve cannot prefix-match against them.
	baseDir, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base directory: %w", err)
	}

	info, err := os.Stat(baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat base directory: %w", err)
		}
		if mkErr := os.MkdirAll(baseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	probe := filepath.Join(baseDir, ".writable_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}

	return &ArchiveStore{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// EnsureFolder creates the named archive folder if it does not already
// exist and reports whether it was created.
func (s *ArchiveStore) EnsureFolder(name string) (bool, error) {
	full, err := s.resolve(name)
	if err != nil {
		return false, err
	}
	if info, err := os.Stat(full); err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("archive path %s exists and is not a directory", full)
		}
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat archive folder: %w", err)
	}
	if err := os.Mkdir(full, 0o750); err != nil {
		return false, fmt.Errorf("create archive folder: %w", err)
	}
	s.logger.Info("created archive folder", zap.String("folder", name))
	return true, nil
}

// Save writes data to dir/filename under the store root and returns the
// written path.
func (s *ArchiveStore) Save(dir, filename string, data []byte) (string, error) {
	full, err := s.resolve(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	// The folder normally exists by the time a save arrives, but a save
	// must not depend on it.
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("create parent directories: %w", err)
	}
	if err := os.WriteFile(full, data, 0o600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return full, nil
}

// resolve joins rel onto the base dir and rejects paths that escape it.
func (s *ArchiveStore) resolve(rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", fmt.Errorf("path is required")
	}
	full := filepath.Join(s.baseDir, rel)
	cleanBase := filepath.Clean(s.baseDir)
	if !strings.HasPrefix(filepath.Clean(full), cleanBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	return full, nil
}
