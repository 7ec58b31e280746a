package history

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var slotsBucket = []byte("slots")

// BoltSlot stores a slot as a key of the slots bucket in a bbolt database.
type BoltSlot struct {
	db   *bolt.DB
	name string
}

// OpenBoltSlot opens the named slot in the bbolt file at path.
func OpenBoltSlot(path, name string) (*BoltSlot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating directory for %s", path)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening bolt database %s", path)
	}
	return &BoltSlot{db: db, name: name}, nil
}

func (s *BoltSlot) Name() string { return s.name }

func (s *BoltSlot) Read() ([]byte, error) {
	var payload []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(slotsBucket)
		if b == nil {
			return ErrSlotEmpty
		}
		v := b.Get([]byte(s.name))
		if v == nil {
			return ErrSlotEmpty
		}
		// v is only valid for the lifetime of the transaction
		payload = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *BoltSlot) Write(data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(slotsBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(s.name), data)
	})
}

func (s *BoltSlot) Remove() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(slotsBucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(s.name))
	})
}

func (s *BoltSlot) Close() error {
	return s.db.Close()
}
