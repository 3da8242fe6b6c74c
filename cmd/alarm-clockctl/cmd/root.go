package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/client"
	"github.com/oshokin/alarm-clock/internal/service/watcher"
	"github.com/oshokin/alarm-clock/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// serverAddress overrides the daemon address from the configuration.
	serverAddress string
	// asJSON prints results as JSON.
	asJSON bool
	// includeTicks makes watch print every sample.
	includeTicks bool

	// rootCmd represents the base command for controlling the clock daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-clockctl",
		Short: "Control a running alarm-clock.",
		Long: `Sends commands to a running alarm-clock over gRPC.

The daemon address is taken from the configuration file or --server.
Commands are retried while the daemon is unreachable; rejected input
such as 24:00 fails immediately.`,
	}
)

// Execute runs the alarm-clockctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// actionCommand builds a subcommand running one client action.
func actionCommand(use, short string, action client.Action, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &client.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				Action:        action,
				JSON:          asJSON,
			}

			if len(args) > 0 {
				options.Argument = args[0]
			}

			return client.Run(ctx, options)
		},
	}
}

// watchCommand prints daemon events until interrupted.
func watchCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "watch",
		Short: "Print alarm events as they happen.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &watcher.Options{
				ConfigPath:    configPath,
				ServerAddress: serverAddress,
				IncludeTicks:  includeTicks,
				JSON:          asJSON,
			}

			return watcher.Run(ctx, options)
		},
	}

	command.Flags().BoolVarP(&includeTicks, "ticks", "t", false, "also print every time sample")

	return command
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "daemon gRPC address")
	rootCmd.PersistentFlags().BoolVarP(&asJSON, "json", "j", false, "print JSON instead of text")

	rootCmd.AddCommand(
		actionCommand("state", "Show the clock and alarm state.", client.ActionState, cobra.NoArgs),
		actionCommand("set HH:MM", "Arm the alarm.", client.ActionSetAlarm, cobra.ExactArgs(1)),
		actionCommand("stop", "Stop and clear the alarm.", client.ActionStopAlarm, cobra.NoArgs),
		actionCommand("snooze", "Silence the alarm and re-arm it an hour later.", client.ActionSnoozeAlarm, cobra.NoArgs),
		actionCommand("toggle-format", "Switch between 12-hour and 24-hour display.", client.ActionToggleHourFormat, cobra.NoArgs),
		actionCommand("timezone ZONE", "Display the clock in an IANA time zone.", client.ActionSetTimeZone, cobra.ExactArgs(1)),
		watchCommand(),
	)
}
