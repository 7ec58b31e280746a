package history

import (
	"github.com/pkg/errors"
)

// ErrSlotEmpty is returned by a Slot that has never been written or was removed.
var ErrSlotEmpty = errors.New("history: slot is empty")

// ErrUnknownBackend is returned by OpenSlot for an unsupported backend name.
var ErrUnknownBackend = errors.New("history: unknown store backend")

// Slot is a single named, durable value. Write replaces the previous value
// as a whole; readers never observe a partial write.
type Slot interface {
	Name() string
	Read() ([]byte, error)
	Write(data []byte) error
	Remove() error
	Close() error
}
