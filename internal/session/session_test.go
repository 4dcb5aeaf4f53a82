package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comparecarts/internal/model"
)

func TestStore_SaveLoadClear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	want := Session{
		User:  model.UserView{ID: uuid.New(), Name: "Ann", Email: "ann@x.com", Credits: 10},
		Token: "tok",
	}
	require.NoError(t, store.Save(want))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
	assert.NoError(t, store.Clear())
}

func TestStore_CorruptFileIsLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStore(path).Load()
	assert.ErrorIs(t, err, ErrNoSession)
}
