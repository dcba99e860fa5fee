package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sustechcourse-backend/lib/restyutil"
	"sustechcourse-backend/lib/scrapers/sustech"
	"sustechcourse-backend/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	username   string
	password   string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logs and dump http exchanges to dev/.state/resty/sustech.")
	flags.StringVar(&configPath, "config", "config.json5", "Path to the config file.")
	flags.StringVarP(&username, "username", "u", "", "Overrides the username in the config.")
	flags.StringVarP(&password, "password", "p", "", "Overrides the password in the config.")
}

var rootCmd = &cobra.Command{
	Use:           "sustechcourse-cli",
	Short:         "sustechcourse-cli logs into the SUSTech teaching portal and queries grades.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
		err := telemetry.SetupFromEnv(cmd.Context(), "sustechcourse-cli")
		if err != nil {
			slog.Warn("failed to setup telemetry", "err", err)
		}
		if !verbose {
			return
		}
		out, err := restyutil.NewFilesystemOutput("<dev_state>/resty/sustech")
		if err != nil {
			slog.Warn("failed to create resty output, http dumps are disabled", "err", err)
			return
		}
		sustech.SetRestyInstrumentOutput(out)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		telemetry.Shutdown(context.Background())
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
