package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Logs in without querying anything, to verify the credentials.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		return runCheck(cmd.Context(), cfg, cmd.OutOrStdout())
	},
}

func runCheck(ctx context.Context, cfg Config, out io.Writer) error {
	session, err := newSession(cfg)
	if err != nil {
		return err
	}
	_, err = session.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "logged in as %s\n", cfg.Username)
	return nil
}
