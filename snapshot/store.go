package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// ErrNotExist is returned by a Store's Load when no snapshot has been
// written yet. Callers treat it as a clean first run, not a failure.
var ErrNotExist = errors.New("snapshot does not exist")

// Store is the byte-level durability backend for snapshots. Backends stay
// dumb: the reconciler owns the format, a Store only moves opaque bytes.
type Store interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileStore persists the snapshot to a single local file. Writes go through
// a temp file and rename so a crash mid-write leaves the previous snapshot
// intact. Paths ending in ".gz" are transparently gzip-compressed.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path. An empty path falls
// back to [DefaultFileName] in the working directory.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultFileName
	}
	return &FileStore{path: path}
}

// Path returns the snapshot file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) compressed() bool {
	return strings.HasSuffix(f.path, ".gz")
}

// Load reads the current snapshot bytes, returning [ErrNotExist] when no
// file has been written yet.
func (f *FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", f.path, err)
	}
	if !f.compressed() {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot file %s: %w", f.path, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot file %s: %w", f.path, err)
	}
	return out, nil
}

// Save atomically replaces the snapshot file with data.
func (f *FileStore) Save(data []byte) error {
	if f.compressed() {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return fmt.Errorf("failed to compress snapshot: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to compress snapshot: %w", err)
		}
		data = buf.Bytes()
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}
