// Package filesink delivers repaired recordings to a directory on disk.
package filesink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// DefaultExt is appended to generated names and to names without an extension.
const DefaultExt = ".webm"

// LockName is the advisory lock file kept in the output directory.
const LockName = ".webmfix.lock"

// Sink writes each delivered recording atomically into Dir.
type Sink struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Sink rooted at dir, creating it if needed.
func New(dir string, logger *slog.Logger) (*Sink, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("filesink: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %q: %w", dir, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the directory recordings are written to.
func (s *Sink) Dir() string {
	return s.dir
}

// Path returns the destination path for name.
func (s *Sink) Path(name string) string {
	return filepath.Join(s.dir, s.fileName(name))
}

// Deliver writes data to the file for name, replacing any existing file.
// Writers sharing the directory are serialized with an advisory lock file.
func (s *Sink) Deliver(ctx context.Context, name string, data []byte) error {
	target := s.Path(name)

	lock := flock.New(filepath.Join(s.dir, LockName))
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock %s: %w", target, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", target)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := WriteAtomic(target, data, 0o644); err != nil {
		return err
	}

	s.logger.Debug("recording written", slog.String("path", target), slog.Int("bytes", len(data)))
	return nil
}

func (s *Sink) fileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "recording-" + s.now().Format("20060102-150405") + DefaultExt
	}
	if filepath.Ext(name) == "" {
		name += DefaultExt
	}
	return name
}

// WriteAtomic writes data to a uniquely named temporary file next to path,
// syncs it, and renames it over path.
func WriteAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		_ = out.Close()
		_ = os.Remove(tmp)
	}

	if _, err := out.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := out.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
