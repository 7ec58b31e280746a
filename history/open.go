package history

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Backend names accepted by OpenSlot.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// OpenSlot opens the named slot on the given backend. For the file backend,
// path is the directory holding the slot file; for the database backends it
// is the database file.
func OpenSlot(backend, path, name string) (Slot, error) {
	switch backend {
	case BackendSQLite, "":
		slot, err := OpenSQLiteSlot(path, name)
		if err != nil {
			return nil, err
		}
		return slot, nil
	case BackendBolt:
		slot, err := OpenBoltSlot(path, name)
		if err != nil {
			return nil, err
		}
		return slot, nil
	case BackendFile:
		dir := path
		if filepath.Ext(path) != "" {
			dir = filepath.Dir(path)
		}
		return NewFileSlot(afero.NewOsFs(), dir, name), nil
	case BackendMemory:
		return NewMemorySlot(name), nil
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "backend %q", backend)
	}
}
