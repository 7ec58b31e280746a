package askiq

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/askiq/history"
	"github.com/dhamidi/askiq/remote"
	"github.com/dhamidi/askiq/session"
)

func newController(t *testing.T) *session.Controller {
	t.Helper()
	return session.New(
		history.NewStore(history.NewMemorySlot(history.DefaultSlotName)),
		remote.AskerFunc(func(ctx context.Context, q remote.Query) (string, error) {
			return "re: " + q.Question, nil
		}),
	)
}

func TestExportThenImport(t *testing.T) {
	fs := afero.NewMemMapFs()
	source := newController(t)
	for _, q := range []string{"first", "second"} {
		source.StartNew()
		_, err := source.Ask(context.Background(), q)
		require.NoError(t, err)
	}

	n, err := ExportConversations(fs, "/backup.json", source)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	target := newController(t)
	added, err := ImportConversations(fs, "/backup.json", target)
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	if diff := cmp.Diff(source.Conversations(), target.Conversations()); diff != "" {
		t.Errorf("imported conversations differ (-exported +imported):\n%s", diff)
	}

	added, err = ImportConversations(fs, "/backup.json", target)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Len(t, target.Conversations(), 2)
}

func TestImportConversations_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	controller := newController(t)

	_, err := ImportConversations(fs, "/missing.json", controller)
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/broken.json", []byte("{not json"), 0644))
	_, err = ImportConversations(fs, "/broken.json", controller)
	assert.Error(t, err)
	assert.Empty(t, controller.Conversations())
}
