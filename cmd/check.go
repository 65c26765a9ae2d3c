package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/slot-sniper/internal/config"
	"github.com/example/slot-sniper/internal/monitor"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a single availability check and print the result",
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

			m := &monitor.Monitor{
				Fetcher:  prov,
				Interval: cfg.MonitorInterval,
				Date:     cfg.TargetDate.Format("2006-01-02"),
				Log:      log,
			}
			res := m.CheckOnce(ctx)
			saveSession(sessions, cfg, pg, log)

			if !res.Success {
				return fmt.Errorf("check failed: %w", res.Err)
			}
			if res.Total == 0 {
				fmt.Fprintf(os.Stdout, "no availability for %s\n", res.Date)
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetTitle("Availability for %s", res.Date)
			t.AppendHeader(table.Row{"Time", "Capacity"})
			for _, s := range res.Slots {
				t.AppendRow(table.Row{s.Time.String(), s.Capacity})
			}
			t.Render()
			return nil
		},
	}
}
