package history

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	want := sampleList(t)

	require.NoError(t, WriteFile(fs, "/export.json", want))
	got, err := ReadFile(fs, "/export.json")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFile_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := ReadFile(fs, "/missing.json")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.json", []byte("{oops"), 0644))
	_, err = ReadFile(fs, "/bad.json")
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	list := sampleList(t)
	fresh := sampleList(t)

	merged, added := Merge(list, []*Conversation{fresh[0], list[1], fresh[1]})
	assert.Equal(t, 2, added)
	require.Len(t, merged, 4)
	assert.Equal(t, fresh[0].ID, merged[0].ID)
	assert.Equal(t, fresh[1].ID, merged[1].ID)
	assert.Equal(t, list[0].ID, merged[2].ID)
	assert.Equal(t, list[1].ID, merged[3].ID)

	again, added := Merge(merged, fresh)
	assert.Zero(t, added)
	assert.Len(t, again, 4)
}
