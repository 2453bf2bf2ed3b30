package submission

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrPreviewNotFound = errors.New("preview not found")

// PreviewHandle references the thumbnail source of an item. Local handles
// are backed by a file the PreviewManager owns; remote handles point at an
// already stored object and own nothing.
type PreviewHandle struct {
	ID        string `json:"id"`
	Remote    bool   `json:"remote"`
	RemoteURL string `json:"remoteUrl,omitempty"`
	path      string
}

// PreviewManager mints and releases local preview files for one draft.
type PreviewManager struct {
	mu          sync.Mutex
	dir         string
	outstanding map[string]string
	released    int
	logger      *zap.Logger
}

// NewPreviewManager creates a manager writing previews under a fresh
// directory inside root.
func NewPreviewManager(root string, logger *zap.Logger) (*PreviewManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create preview root: %w", err)
	}
	dir, err := os.MkdirTemp(root, "draft-")
	if err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}
	return &PreviewManager{
		dir:         dir,
		outstanding: make(map[string]string),
		logger:      logger,
	}, nil
}

// Acquire stores the file bytes and returns the handle that owns them.
func (m *PreviewManager) Acquire(file RawFile) (PreviewHandle, error) {
	id := uuid.NewString()
	path := filepath.Join(m.dir, id+filepath.Ext(file.Name))
	if err := os.WriteFile(path, file.Data, 0o600); err != nil {
		return PreviewHandle{}, fmt.Errorf("failed to write preview: %w", err)
	}

	m.mu.Lock()
	m.outstanding[id] = path
	m.mu.Unlock()

	return PreviewHandle{ID: id, path: path}, nil
}

// Remote returns a handle backed by an already stored object.
func (m *PreviewManager) Remote(url string) PreviewHandle {
	return PreviewHandle{ID: uuid.NewString(), Remote: true, RemoteURL: url}
}

// Release frees a local preview. Releasing a remote, unknown or already
// released handle does nothing.
func (m *PreviewManager) Release(h PreviewHandle) {
	if h.Remote || h.ID == "" {
		return
	}

	m.mu.Lock()
	path, ok := m.outstanding[h.ID]
	if ok {
		delete(m.outstanding, h.ID)
		m.released++
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.Warn("Failed to remove preview file", zap.String("handle", h.ID), zap.Error(err))
	}
}

// ReleaseAll frees every outstanding preview and removes the directory.
func (m *PreviewManager) ReleaseAll() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.outstanding))
	for id := range m.outstanding {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Release(PreviewHandle{ID: id})
	}
	if err := os.RemoveAll(m.dir); err != nil {
		m.logger.Warn("Failed to remove preview directory", zap.String("dir", m.dir), zap.Error(err))
	}
}

// Open returns a reader over an outstanding local preview.
func (m *PreviewManager) Open(id string) (io.ReadCloser, error) {
	m.mu.Lock()
	path, ok := m.outstanding[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrPreviewNotFound
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrPreviewNotFound
		}
		return nil, err
	}
	return f, nil
}

// Outstanding returns how many local previews are still held.
func (m *PreviewManager) Outstanding() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outstanding)
}

// Released returns how many local previews have been freed.
func (m *PreviewManager) Released() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}
