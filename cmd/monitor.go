package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/example/slot-sniper/internal/config"
	"github.com/example/slot-sniper/internal/db"
	"github.com/example/slot-sniper/internal/migrate"
	"github.com/example/slot-sniper/internal/monitor"
	"github.com/example/slot-sniper/internal/notify"
	"github.com/example/slot-sniper/internal/store"
	"github.com/example/slot-sniper/internal/telemetry"
)

// checkHistory adapts the run store to the monitor's History interface.
type checkHistory struct {
	repo     *store.Repo
	provider string
}

func (h checkHistory) SaveCheck(ctx context.Context, res monitor.CheckResult) error {
	c := store.Check{
		Provider:  h.provider,
		Date:      res.Date,
		Success:   res.Success,
		Total:     res.Total,
		CheckedAt: res.CheckedAt,
	}
	for _, s := range res.Slots {
		c.Times = append(c.Times, s.Time.String())
	}
	if res.Err != nil {
		s := res.Err.Error()
		c.Error = &s
	}
	return h.repo.SaveCheck(ctx, c)
}

func newMonitorCmd() *cobra.Command {
	var migrateUp bool

	c := &cobra.Command{
		Use:   "monitor",
		Short: "Periodically check availability and alert when slots appear",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			log := newLogger(verbose)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			prov, pg, err := buildProvider(cfg, log)
			if err != nil {
				return err
			}
			sessions, err := sessionStore(cfg)
			if err != nil {
				return err
			}
			restoreSession(sessions, cfg, pg, log)

			var notifier monitor.Notifier = notify.LogNotifier{Log: log}
			if cfg.SMTP.Server != "" {
				notifier = notify.NewEmailNotifier(notify.SMTPConfig(cfg.SMTP))
			}

			var metrics monitor.Metrics
			if cfg.OTLPEndpoint != "" {
				provider, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
				if err != nil {
					return err
				}
				defer func() {
					if err := provider.Shutdown(context.Background()); err != nil {
						log.Warn("metrics shutdown failed", "err", err)
					}
				}()
				metrics = telemetry.NewRecorder(attribute.String("provider", cfg.Provider))
			}

			var history monitor.History
			if cfg.DatabaseURL != "" {
				d, err := db.Open(ctx, cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer d.Close()
				if migrateUp {
					if err := migrate.Up(ctx, d); err != nil {
						return err
					}
				}
				history = checkHistory{repo: store.NewRepo(d), provider: cfg.Provider}
			}

			m := &monitor.Monitor{
				Fetcher:  prov,
				Interval: cfg.MonitorInterval,
				Date:     cfg.TargetDate.Format("2006-01-02"),
				Notifier: notifier,
				Metrics:  metrics,
				History:  history,
				Log:      log,
			}

			err = m.Run(ctx)
			saveSession(sessions, cfg, pg, log)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	c.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	return c
}
