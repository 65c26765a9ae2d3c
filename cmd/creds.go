package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/slot-sniper/internal/config"
)

func newCredsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage booking-site credential files",
	}
	cmd.AddCommand(newCredsSealCmd())
	return cmd
}

func newCredsSealCmd() *cobra.Command {
	var in string

	c := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt a credentials file with the SLOTSNIPE_PASSPHRASE passphrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			passphrase := os.Getenv("SLOTSNIPE_PASSPHRASE")
			if passphrase == "" {
				return fmt.Errorf("SLOTSNIPE_PASSPHRASE is not set")
			}

			plaintext, err := os.ReadFile(in)
			if err != nil {
				return err
			}
			sealed, err := config.Seal(plaintext, passphrase)
			if err != nil {
				return err
			}

			out := in + config.SealedSuffix
			if err := os.WriteFile(out, sealed, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "sealed %s -> %s\n", in, out)
			fmt.Fprintln(os.Stdout, "delete the plaintext file and point credentials.file at the sealed one")
			return nil
		},
	}

	c.Flags().StringVar(&in, "in", "", "plaintext credentials JSON file")
	_ = c.MarkFlagRequired("in")
	return c
}
