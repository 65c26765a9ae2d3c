package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	key, err := DeriveKey("correct horse battery staple", salt, KeySize)
	require.NoError(t, err)

	a, err := New(key)
	require.NoError(t, err)

	ct, err := a.EncryptToString([]byte(`{"username":"golfer","password":"secret"}`))
	require.NoError(t, err)

	pt, err := a.DecryptString(ct)
	require.NoError(t, err)
	require.JSONEq(t, `{"username":"golfer","password":"secret"}`, string(pt))
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	key1, err := DeriveKey("one", salt, KeySize)
	require.NoError(t, err)
	key2, err := DeriveKey("two", salt, KeySize)
	require.NoError(t, err)

	a1, err := New(key1)
	require.NoError(t, err)
	a2, err := New(key2)
	require.NoError(t, err)

	ct, err := a1.EncryptToString([]byte("payload"))
	require.NoError(t, err)

	_, err = a2.DecryptString(ct)
	require.Error(t, err)
}

func TestNewRejectsShortKey(t *testing.T) {
	_, err := New([]byte("short"))
	require.Error(t, err)
}

func TestDeriveKeyRejectsEmptyPassphrase(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	_, err = DeriveKey("", salt, KeySize)
	require.Error(t, err)
}
