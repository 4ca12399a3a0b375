package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"labserve/app"
)

var (
	baseDirFlag    string
	configFileFlag string
	hostFlag       string
	logFileFlag    string

	rootCmd = &cobra.Command{
		Use:   "labserve",
		Short: "Serve every prebuilt test lab bundle on its own port",
		Long: `labserve starts one static file server per lab in the lab table.
Labs whose directory has not been built are skipped. Press Ctrl+C to stop.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), options())
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the lab table and which labs are built",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options()
			opts.Out = cmd.OutOrStdout()
			return app.List(opts)
		},
	}
)

func options() app.Options {
	return app.Options{
		BaseDir:    baseDirFlag,
		ConfigFile: configFileFlag,
		Host:       hostFlag,
		LogFile:    logFileFlag,
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&baseDirFlag, "base", "b", "", "directory the lab paths are relative to (default: working directory)")
	rootCmd.PersistentFlags().StringVarP(&configFileFlag, "config", "c", "", "TOML file overriding the built-in lab table")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "interface to bind (default: all interfaces)")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "log file path (default: $TMPDIR/labserve.log)")

	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
