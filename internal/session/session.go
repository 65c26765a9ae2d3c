// Package session persists the booking-site login session (the HTTP cookie
// jar) between runs so the monitor does not re-authenticate on every tick.
// The blob on disk is authenticated and encrypted with securecookie.
package session

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/securecookie"
)

const blobName = "slotsnipe_session"

// MaxAge bounds how long a persisted session is trusted before forcing a
// fresh login.
const MaxAge = 12 * time.Hour

type Cookie struct {
	Name    string
	Value   string
	Path    string
	Domain  string
	Expires time.Time
}

type State struct {
	Provider string
	Cookies  []Cookie
	SavedAt  time.Time
}

type Store struct {
	sc   *securecookie.SecureCookie
	path string
}

func NewStore(hashKey, blockKey []byte, path string) *Store {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(MaxAge.Seconds()))
	return &Store{sc: sc, path: path}
}

func (s *Store) Save(state State) error {
	state.SavedAt = time.Now()
	encoded, err := s.sc.Encode(blobName, state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// Load returns the stored state, or false when there is no usable session
// (missing file, tampered blob, expired, wrong provider).
func (s *Store) Load(provider string) (State, bool) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return State{}, false
	}
	var state State
	if err := s.sc.Decode(blobName, string(b), &state); err != nil {
		return State{}, false
	}
	if state.Provider != provider {
		return State{}, false
	}
	return state, true
}

func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// FromHTTP converts jar cookies into persistable form.
func FromHTTP(provider string, cookies []*http.Cookie) State {
	state := State{Provider: provider}
	for _, c := range cookies {
		state.Cookies = append(state.Cookies, Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
		})
	}
	return state
}

// ToHTTP converts stored cookies back for jar restoration.
func (s State) ToHTTP() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		out = append(out, &http.Cookie{
			Name:    c.Name,
			Value:   c.Value,
			Path:    c.Path,
			Domain:  c.Domain,
			Expires: c.Expires,
		})
	}
	return out
}
