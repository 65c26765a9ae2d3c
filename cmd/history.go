package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/slot-sniper/internal/config"
	"github.com/example/slot-sniper/internal/db"
	"github.com/example/slot-sniper/internal/migrate"
	"github.com/example/slot-sniper/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past runs and availability checks",
	}
	cmd.AddCommand(newHistoryRunsCmd())
	cmd.AddCommand(newHistoryChecksCmd())
	return cmd
}

func openRepo(ctx context.Context) (*store.Repo, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("database_url is required for history")
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Up(ctx, d); err != nil {
		d.Close()
		return nil, nil, err
	}
	return store.NewRepo(d), d.Close, nil
}

func newHistoryRunsCmd() *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "runs",
		Short: "List recent race runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			repo, closeDB, err := openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			runs, err := repo.RecentRuns(ctx, limit)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Started", "Provider", "Date", "Reserved", "Attempts", "Elapsed", "Error"})
			for _, r := range runs {
				errText := ""
				if r.LastError != nil {
					errText = *r.LastError
				}
				t.AppendRow(table.Row{
					r.StartedAt.Format(time.RFC3339),
					r.Provider,
					r.TargetDate.Format("2006-01-02"),
					r.Reserved,
					r.Attempts,
					r.Elapsed.Round(time.Millisecond),
					errText,
				})
			}
			t.Render()
			return nil
		},
	}

	c.Flags().IntVar(&limit, "limit", 20, "max rows")
	return c
}

func newHistoryChecksCmd() *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "checks",
		Short: "List recent availability checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			repo, closeDB, err := openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			checks, err := repo.RecentChecks(ctx, limit)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Checked", "Provider", "Date", "OK", "Total", "Times"})
			for _, c := range checks {
				t.AppendRow(table.Row{
					c.CheckedAt.Format(time.RFC3339),
					c.Provider,
					c.Date,
					c.Success,
					c.Total,
					strings.Join(c.Times, " "),
				})
			}
			t.Render()
			return nil
		},
	}

	c.Flags().IntVar(&limit, "limit", 20, "max rows")
	return c
}
