package history

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Store persists a conversation list as JSON in a single Slot.
type Store struct {
	slot Slot
}

// NewStore returns a Store writing to slot.
func NewStore(slot Slot) *Store {
	return &Store{slot: slot}
}

// Load returns the persisted conversation list, newest first, in the order it
// was saved. A missing or malformed payload yields an empty list. The error is
// only set when the backend itself could not be read, in which case the list
// is empty as well.
func (s *Store) Load() ([]*Conversation, error) {
	data, err := s.slot.Read()
	if errors.Is(err, ErrSlotEmpty) {
		return []*Conversation{}, nil
	}
	if err != nil {
		return []*Conversation{}, errors.Wrapf(err, "reading slot %s", s.slot.Name())
	}

	list, err := Decode(data)
	if err != nil {
		log.Debug().Err(err).Str("slot", s.slot.Name()).Msg("discarding malformed conversation payload")
		return []*Conversation{}, nil
	}
	return list, nil
}

// Save overwrites the persisted conversation list.
func (s *Store) Save(list []*Conversation) error {
	data, err := Encode(list)
	if err != nil {
		return err
	}
	return errors.Wrapf(s.slot.Write(data), "writing slot %s", s.slot.Name())
}

// Clear removes all persisted state.
func (s *Store) Clear() error {
	return errors.Wrapf(s.slot.Remove(), "removing slot %s", s.slot.Name())
}

// Close releases the underlying slot.
func (s *Store) Close() error {
	return s.slot.Close()
}

// Encode serializes a conversation list.
func Encode(list []*Conversation) ([]byte, error) {
	if list == nil {
		list = []*Conversation{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, errors.Wrap(err, "encoding conversations")
	}
	return data, nil
}

// Decode parses a serialized conversation list. Null entries are dropped and
// conversations saved without an ID are assigned one.
func Decode(data []byte) ([]*Conversation, error) {
	var raw []*Conversation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding conversations")
	}

	list := make([]*Conversation, 0, len(raw))
	for _, conv := range raw {
		if conv == nil {
			continue
		}
		if conv.ID == "" {
			id, err := uuid.NewRandom()
			if err != nil {
				return nil, err
			}
			conv.ID = id.String()
		}
		list = append(list, conv)
	}
	return list, nil
}
