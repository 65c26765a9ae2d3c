package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/example/slot-sniper/internal/crypto"
)

// SealedSuffix marks an encrypted credentials file.
const SealedSuffix = ".enc"

type credentialsFile struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Envelope is the on-disk shape of a sealed credentials file.
type Envelope struct {
	Salt string `json:"salt"`
	Data string `json:"data"`
}

// ResolveCredentials returns the username/password for the run. Inline
// values win; otherwise the credentials file is read, unsealing it first
// when it carries the sealed suffix.
func (c Config) ResolveCredentials() (username, password string, err error) {
	if c.Credentials.Username != "" {
		return c.Credentials.Username, c.Credentials.Password, nil
	}
	if c.Credentials.File == "" {
		return "", "", fmt.Errorf("credentials required: set credentials.username or credentials.file")
	}

	raw, err := os.ReadFile(c.Credentials.File)
	if err != nil {
		return "", "", fmt.Errorf("read credentials file: %w", err)
	}

	if strings.HasSuffix(c.Credentials.File, SealedSuffix) {
		raw, err = unseal(raw, c.Passphrase)
		if err != nil {
			return "", "", err
		}
	}

	var creds credentialsFile
	if err := json.Unmarshal(raw, &creds); err != nil {
		return "", "", fmt.Errorf("parse credentials file: %w", err)
	}
	if creds.Username == "" {
		return "", "", fmt.Errorf("credentials file has no username")
	}
	return creds.Username, creds.Password, nil
}

func unseal(raw []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("sealed credentials file needs a passphrase (SLOTSNIPE_PASSPHRASE)")
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse sealed credentials: %w", err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	key, err := crypto.DeriveKey(passphrase, salt, crypto.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := crypto.New(key)
	if err != nil {
		return nil, err
	}
	return aead.DecryptString(env.Data)
}

// Seal encrypts a plaintext credentials payload for writing to a .enc file.
func Seal(plaintext []byte, passphrase string) ([]byte, error) {
	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, err
	}
	key, err := crypto.DeriveKey(passphrase, salt, crypto.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := crypto.New(key)
	if err != nil {
		return nil, err
	}
	data, err := aead.EncryptToString(plaintext)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(Envelope{
		Salt: base64.RawStdEncoding.EncodeToString(salt),
		Data: data,
	}, "", "  ")
}
