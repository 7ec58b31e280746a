package history

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ReadFile reads a conversation list exported with WriteFile. Unlike Store.Load,
// a malformed file is an error.
func ReadFile(fs afero.Fs, path string) ([]*Conversation, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading conversation file %q", path)
	}
	list, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing conversation file %q", path)
	}
	return list, nil
}

// WriteFile exports a conversation list as indented JSON.
func WriteFile(fs afero.Fs, path string, list []*Conversation) error {
	if list == nil {
		list = []*Conversation{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding conversations")
	}
	return errors.Wrapf(afero.WriteFile(fs, path, data, 0644), "writing conversation file %q", path)
}

// Merge prepends the imported conversations whose IDs are not yet present in
// list, keeping their relative order. It returns the merged list and the
// number of conversations added.
func Merge(list, imported []*Conversation) ([]*Conversation, int) {
	seen := make(map[string]bool, len(list))
	for _, conv := range list {
		seen[conv.ID] = true
	}

	added := make([]*Conversation, 0, len(imported))
	for _, conv := range imported {
		if seen[conv.ID] {
			continue
		}
		seen[conv.ID] = true
		added = append(added, conv)
	}
	return append(added, list...), len(added)
}
