// Package config loads the run configuration: one file plus SLOTSNIPE_* env
// overrides, read once at startup and immutable afterwards.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/example/slot-sniper/internal/domain/booking"
)

type SMTP struct {
	Server   string
	Port     int
	From     string
	Password string
	To       []string
}

type Credentials struct {
	Username string
	Password string
	// File points to a credentials JSON, optionally sealed (see creds.go).
	File string
}

type Config struct {
	Provider string
	URL      string

	Timezone   string
	TargetDate time.Time

	Desired     booking.TimeOfDay
	WindowStart booking.TimeOfDay
	WindowEnd   booking.TimeOfDay
	PartySize   int

	ReleaseTime booking.TimeOfDay

	MaxDuration      time.Duration
	RetryFloor       time.Duration
	MaxUnknownStreak int

	MonitorInterval time.Duration

	Credentials Credentials
	Passphrase  string

	SMTP         SMTP
	OTLPEndpoint string
	DatabaseURL  string
	RedisAddr    string
	SessionFile  string

	SessionHashKey  string
	SessionBlockKey string

	location *time.Location
}

func defaults(v *viper.Viper) {
	v.SetDefault("provider", "foreup")
	v.SetDefault("timezone", "America/Los_Angeles")
	v.SetDefault("window.start", "00:00")
	v.SetDefault("window.end", "23:59")
	v.SetDefault("window.desired", "12:00")
	v.SetDefault("party_size", 1)
	v.SetDefault("release_time", "00:00")
	v.SetDefault("race.max_duration", "10m")
	v.SetDefault("race.retry_floor", "50ms")
	v.SetDefault("race.max_unknown_streak", 5)
	v.SetDefault("monitor.interval", "15m")
	v.SetDefault("session.file", ".slotsnipe-session")
	v.SetDefault("notify.smtp.port", 587)
}

// Load reads path (or ./slotsnipe.yaml when path is empty) and applies env
// overrides. Window invariants are validated here, not at race time.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("slotsnipe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/slotsnipe")
	}
	v.SetEnvPrefix("SLOTSNIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	defaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Running purely off env vars is fine when no file was named.
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Provider: strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
		URL:      strings.TrimSpace(v.GetString("url")),
		Timezone: v.GetString("timezone"),

		PartySize:        v.GetInt("party_size"),
		MaxDuration:      v.GetDuration("race.max_duration"),
		RetryFloor:       v.GetDuration("race.retry_floor"),
		MaxUnknownStreak: v.GetInt("race.max_unknown_streak"),
		MonitorInterval:  v.GetDuration("monitor.interval"),

		Credentials: Credentials{
			Username: v.GetString("credentials.username"),
			Password: v.GetString("credentials.password"),
			File:     v.GetString("credentials.file"),
		},
		Passphrase: v.GetString("passphrase"),

		SMTP: SMTP{
			Server:   v.GetString("notify.smtp.server"),
			Port:     v.GetInt("notify.smtp.port"),
			From:     v.GetString("notify.smtp.from"),
			Password: v.GetString("notify.smtp.password"),
			To:       v.GetStringSlice("notify.smtp.to"),
		},
		OTLPEndpoint: v.GetString("metrics.otlp_endpoint"),
		DatabaseURL:  v.GetString("database_url"),
		RedisAddr:    v.GetString("redis.addr"),

		SessionFile:     v.GetString("session.file"),
		SessionHashKey:  v.GetString("session.hash_key"),
		SessionBlockKey: v.GetString("session.block_key"),
	}

	var err error
	if cfg.location, err = time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	if raw := v.GetString("target_date"); raw != "" {
		cfg.TargetDate, err = time.ParseInLocation("2006-01-02", raw, cfg.location)
		if err != nil {
			return Config{}, fmt.Errorf("invalid target_date %q (want YYYY-MM-DD): %w", raw, err)
		}
	}

	if cfg.Desired, err = booking.ParseTimeOfDay(v.GetString("window.desired")); err != nil {
		return Config{}, fmt.Errorf("window.desired: %w", err)
	}
	if cfg.WindowStart, err = booking.ParseTimeOfDay(v.GetString("window.start")); err != nil {
		return Config{}, fmt.Errorf("window.start: %w", err)
	}
	if cfg.WindowEnd, err = booking.ParseTimeOfDay(v.GetString("window.end")); err != nil {
		return Config{}, fmt.Errorf("window.end: %w", err)
	}
	if cfg.ReleaseTime, err = booking.ParseTimeOfDay(v.GetString("release_time")); err != nil {
		return Config{}, fmt.Errorf("release_time: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Provider {
	case "foreup", "recgov":
	default:
		return fmt.Errorf("unknown provider %q (want foreup or recgov)", c.Provider)
	}
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.TargetDate.IsZero() {
		return fmt.Errorf("target_date is required")
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("race.max_duration must not be negative")
	}
	if c.MonitorInterval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	// Window invariants are a load-time contract; the selector only applies
	// the bounds as a hard filter.
	return c.Window().Validate()
}

func (c Config) Window() booking.TargetWindow {
	return booking.TargetWindow{
		Date:             c.TargetDate,
		Desired:          c.Desired,
		WindowStart:      c.WindowStart,
		WindowEnd:        c.WindowEnd,
		RequiredCapacity: c.PartySize,
	}
}

func (c Config) Release() booking.ReleaseInstant {
	return booking.ReleaseInstant{
		Location: c.location,
		Hour:     c.ReleaseTime.Hour(),
		Minute:   c.ReleaseTime.Minute(),
	}
}

func (c Config) Location() *time.Location {
	return c.location
}
