package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/example/slot-sniper/internal/config"
	"github.com/example/slot-sniper/internal/db"
	"github.com/example/slot-sniper/internal/domain/booking"
	"github.com/example/slot-sniper/internal/engine"
	"github.com/example/slot-sniper/internal/gate"
	"github.com/example/slot-sniper/internal/lock"
	"github.com/example/slot-sniper/internal/migrate"
	"github.com/example/slot-sniper/internal/store"
)

func newRaceCmd() *cobra.Command {
	var (
		skipGate  bool
		migrateUp bool
	)

	c := &cobra.Command{
		Use:   "race",
		Short: "Wait for the release instant, then race for the configured slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			log := newLogger(verbose)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			date := cfg.TargetDate.Format("2006-01-02")

			if cfg.RedisAddr != "" {
				rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
				defer rdb.Close()

				l := lock.New(rdb, cfg.Provider, date)
				if err := l.Acquire(ctx); err != nil {
					return err
				}
				defer func() {
					if err := l.Release(context.Background()); err != nil {
						log.Warn("releasing race lock failed", "err", err)
					}
				}()
				log.Info("acquired race lock", "provider", cfg.Provider, "date", date)
			}

			prov, pg, err := buildProvider(cfg, log)
			if err != nil {
				return err
			}
			sessions, err := sessionStore(cfg)
			if err != nil {
				return err
			}
			restoreSession(sessions, cfg, pg, log)

			var repo *store.Repo
			var runID uuid.UUID
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
				repo = store.NewRepo(d)
				if runID, err = repo.CreateRun(ctx, cfg.Provider, cfg.TargetDate); err != nil {
					return err
				}
			}

			if !skipGate {
				g := &gate.Gate{Log: log}
				if err := g.Wait(ctx, cfg.Release()); err != nil {
					return err
				}
			}

			loop := &engine.Loop{
				Budget: cfg.MaxDuration,
				Floor:  cfg.RetryFloor,
				Log:    log,
			}

			attemptN := 0
			attempt := func(ctx context.Context) booking.AttemptOutcome {
				outcome := prov.Attempt(ctx)
				attemptN++
				if repo != nil {
					if err := repo.RecordAttempt(ctx, runID, attemptN, outcome); err != nil {
						log.Warn("recording attempt failed", "err", err)
					}
				}
				return outcome
			}

			res, runErr := loop.Run(ctx, attempt, prov.Recover)

			saveSession(sessions, cfg, pg, log)
			if repo != nil {
				if err := repo.FinishRun(context.Background(), runID, res, runErr); err != nil {
					log.Warn("finishing run record failed", "err", err)
				}
			}

			if runErr != nil {
				return runErr
			}
			if !res.Reserved {
				return fmt.Errorf("no reservation after %d attempts in %s", res.Attempts, res.Elapsed.Round(time.Millisecond))
			}
			fmt.Fprintf(os.Stdout, "reserved %s on %s (attempts=%d elapsed=%s)\n",
				cfg.Provider, date, res.Attempts, res.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	c.Flags().BoolVar(&skipGate, "skip-gate", false, "start attempting immediately instead of waiting for the release instant")
	c.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	return c
}
