package cmd

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"github.com/example/slot-sniper/internal/config"
	"github.com/example/slot-sniper/internal/page/htmlpage"
	"github.com/example/slot-sniper/internal/providers"
	"github.com/example/slot-sniper/internal/session"
)

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildProvider resolves credentials and binds the configured provider to a
// fresh HTTP page. The page is returned too so callers can persist its
// cookie jar.
func buildProvider(cfg config.Config, log *slog.Logger) (providers.Provider, *htmlpage.Page, error) {
	username, password, err := cfg.ResolveCredentials()
	if err != nil {
		return nil, nil, err
	}

	pg := htmlpage.New(htmlpage.WithLogger(log))
	prov, err := providers.New(cfg.Provider, pg, providers.Config{
		URL:              cfg.URL,
		Username:         username,
		Password:         password,
		Window:           cfg.Window(),
		MaxUnknownStreak: cfg.MaxUnknownStreak,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	return prov, pg, nil
}

// sessionStore returns nil when session keys are not configured; callers
// treat that as "no persistence".
func sessionStore(cfg config.Config) (*session.Store, error) {
	if cfg.SessionHashKey == "" || cfg.SessionBlockKey == "" {
		return nil, nil
	}
	hash, err := base64.StdEncoding.DecodeString(cfg.SessionHashKey)
	if err != nil {
		return nil, fmt.Errorf("session.hash_key: %w", err)
	}
	block, err := base64.StdEncoding.DecodeString(cfg.SessionBlockKey)
	if err != nil {
		return nil, fmt.Errorf("session.block_key: %w", err)
	}
	return session.NewStore(hash, block, cfg.SessionFile), nil
}

func restoreSession(store *session.Store, cfg config.Config, pg *htmlpage.Page, log *slog.Logger) {
	if store == nil {
		return
	}
	state, ok := store.Load(cfg.Provider)
	if !ok {
		return
	}
	site, err := url.Parse(cfg.URL)
	if err != nil {
		return
	}
	pg.SetCookies(site, state.ToHTTP())
	log.Info("restored saved session", "provider", cfg.Provider, "saved_at", state.SavedAt)
}

func saveSession(store *session.Store, cfg config.Config, pg *htmlpage.Page, log *slog.Logger) {
	if store == nil {
		return
	}
	site, err := url.Parse(cfg.URL)
	if err != nil {
		return
	}
	cookies := pg.Cookies(site)
	if len(cookies) == 0 {
		return
	}
	if err := store.Save(session.FromHTTP(cfg.Provider, cookies)); err != nil {
		log.Warn("saving session failed", "err", err)
	}
}
