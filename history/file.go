package history

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileSlot stores a slot as a JSON file named after the slot inside dir.
// Writes go to a temporary file that is renamed over the previous one.
type FileSlot struct {
	fs   afero.Fs
	dir  string
	name string
}

// NewFileSlot returns a slot stored in dir on fs.
func NewFileSlot(fs afero.Fs, dir, name string) *FileSlot {
	return &FileSlot{fs: fs, dir: dir, name: name}
}

func (s *FileSlot) Name() string { return s.name }

// Path is the location of the slot file.
func (s *FileSlot) Path() string {
	return filepath.Join(s.dir, s.name+".json")
}

func (s *FileSlot) Read() ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.Path())
	if os.IsNotExist(err) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.Path())
	}
	return data, nil
}

func (s *FileSlot) Write(data []byte) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrapf(err, "creating directory %s", s.dir)
	}
	tmp := s.Path() + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	if err := s.fs.Rename(tmp, s.Path()); err != nil {
		return errors.Wrapf(err, "renaming %s", tmp)
	}
	return nil
}

func (s *FileSlot) Remove() error {
	err := s.fs.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", s.Path())
	}
	return nil
}

func (s *FileSlot) Close() error { return nil }

// MemorySlot keeps the slot in memory. It is used for ephemeral sessions and tests.
type MemorySlot struct {
	mu      sync.Mutex
	name    string
	payload []byte
	set     bool
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot(name string) *MemorySlot {
	return &MemorySlot{name: name}
}

func (s *MemorySlot) Name() string { return s.name }

func (s *MemorySlot) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), s.payload...), nil
}

func (s *MemorySlot) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append([]byte(nil), data...)
	s.set = true
	return nil
}

func (s *MemorySlot) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = nil
	s.set = false
	return nil
}

func (s *MemorySlot) Close() error { return nil }
