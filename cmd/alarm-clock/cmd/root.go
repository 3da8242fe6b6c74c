package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/server"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// ui selects the terminal presentation.
	ui string
	// httpAddress overrides the browser UI address.
	httpAddress string
	// grpcAddress overrides the control API address.
	grpcAddress string

	// rootCmd represents the base command for running the clock daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock",
		Short: "Run the digital clock with one alarm.",
		Long: `Runs a digital clock with a single alarm.

The clock is shown in the terminal (full-screen UI on a terminal, log lines
otherwise) and in the browser at the HTTP address. Set, stop and snooze the
alarm from either, or remotely with alarm-clockctl over gRPC.

Settings are read from the configuration file when it exists; defaults are used
otherwise. Use --http - to disable the browser UI.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: grpcAddress,
				HTTPAddress:   httpAddress,
				UI:            server.UI(ui),
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-clock CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&ui, "ui", "u", string(server.UIAuto), "terminal presentation: auto, tui or plain")
	rootCmd.Flags().StringVar(&httpAddress, "http", "", "browser UI listen address, - to disable")
	rootCmd.Flags().StringVar(&grpcAddress, "grpc", "", "control API listen address")
}
