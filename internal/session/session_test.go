package session

import (
	"crypto/rand"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	hash := make([]byte, 32)
	block := make([]byte, 32)
	_, err := rand.Read(hash)
	require.NoError(t, err)
	_, err = rand.Read(block)
	require.NoError(t, err)
	return NewStore(hash, block, filepath.Join(t.TempDir(), "session"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	state := FromHTTP("foreup", []*http.Cookie{
		{Name: "PHPSESSID", Value: "abc123", Path: "/", Domain: "foreupsoftware.com"},
		{Name: "remember", Value: "1"},
	})
	require.NoError(t, store.Save(state))

	got, ok := store.Load("foreup")
	require.True(t, ok)
	require.Len(t, got.Cookies, 2)
	require.Equal(t, "abc123", got.Cookies[0].Value)
	require.False(t, got.SavedAt.IsZero())

	restored := got.ToHTTP()
	require.Equal(t, "PHPSESSID", restored[0].Name)
	require.Equal(t, "foreupsoftware.com", restored[0].Domain)
}

func TestLoadRejectsOtherProvider(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(State{Provider: "foreup"}))

	_, ok := store.Load("recgov")
	require.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	store := newTestStore(t)
	_, ok := store.Load("foreup")
	require.False(t, ok)
}

func TestLoadRejectsTamperedBlob(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(State{Provider: "foreup"}))

	// A store with different keys must refuse the blob.
	other := NewStore(make([]byte, 32), make([]byte, 32), store.path)
	_, ok := other.Load("foreup")
	require.False(t, ok)
}

func TestClearIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(State{Provider: "foreup"}))
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	_, ok := store.Load("foreup")
	require.False(t, ok)
}
