package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"google.golang.org/grpc"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
	"github.com/oshokin/alarm-clock/internal/api/rest"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/metrics"
	"github.com/oshokin/alarm-clock/internal/service/engine"
	"github.com/oshokin/alarm-clock/internal/service/render"
	"github.com/oshokin/alarm-clock/internal/service/sound"
	"github.com/oshokin/alarm-clock/internal/tui"
)

// UI selects the terminal presentation.
type UI string

const (
	// UIAuto picks UITUI on a terminal and UIPlain otherwise.
	UIAuto UI = "auto"
	// UITUI runs the full-screen terminal UI.
	UITUI UI = "tui"
	// UIPlain logs events to stdout.
	UIPlain UI = "plain"
)

// Options controls the alarm-clock process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// HTTPAddress overrides the browser UI address; "-" disables it.
	HTTPAddress string
	// UI selects the terminal presentation.
	UI UI
	// Stdout receives the bell, stdout when nil.
	Stdout io.Writer
}

var (
	// ErrNoServerAddress indicates missing server configuration.
	ErrNoServerAddress = errors.New("no server address configured")
	// ErrUnknownUI is returned for a UI outside the UI constants.
	ErrUnknownUI = errors.New("unknown ui")
)

// disabledAddress turns the HTTP server off from the command line.
const disabledAddress = "-"

// Run starts the daemon and blocks until ctx is canceled, the terminal UI quits or a component fails.
//
//nolint:cyclop,funlen // Sequential wiring of the daemon components.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock")

	// A missing settings file means defaults.
	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	ui, err := resolveUI(opts.UI, isTerminal())
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(settings.Log.Level); ok && settings.Log.Level != "" {
		logger.SetLevel(level)
	}

	// The terminal UI owns stdout, so logs go to a file.
	if ui == UITUI {
		logger.SetLogger(logger.NewFile(logger.AtomicLevel(), logger.FileOptions{
			Path:       settings.Log.File,
			MaxSizeMB:  settings.Log.MaxSizeMB,
			MaxBackups: settings.Log.MaxBackups,
		}))
		ctx = logger.WithName(logger.ToContext(ctx, logger.Logger()), "alarm-clock")
	}

	defer logger.Sync()

	listenAddress, err := resolveListenAddress(settings.ServerAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	httpAddress := settings.HTTPAddress
	if opts.HTTPAddress != "" {
		httpAddress = opts.HTTPAddress
	}

	if httpAddress == disabledAddress {
		httpAddress = ""
	}

	stdout := opts.Stdout

	// The bell and the terminal UI share one serialised writer.
	var terminal *tui.Terminal

	if stdout == nil {
		stdout = os.Stdout

		if ui == UITUI {
			terminal = tui.NewTerminal(os.Stdout)
			stdout = terminal
		}
	}

	mode, err := sound.ParseMode(settings.Sound.Mode)
	if err != nil {
		return fmt.Errorf("sound: %w", err)
	}

	player, err := sound.NewPlayer(mode, settings.Sound.File, stdout)
	if err != nil {
		return fmt.Errorf("sound: %w", err)
	}

	clockEngine, err := engine.New(
		engine.WithTimeZone(settings.TimeZone),
		engine.With24Hour(settings.Use24Hour),
		engine.WithTickInterval(settings.TickInterval),
		engine.WithAlertInterval(settings.AlertInterval),
		engine.WithSnoozeDelay(settings.SnoozeDelay),
		engine.WithPlayer(player),
	)
	if err != nil {
		return fmt.Errorf("initialise engine: %w", err)
	}

	defer clockEngine.Close()

	recorder := metrics.NewRecorder()
	defer clockEngine.Subscribe(recorder)()

	// Setup TCP listener for gRPC server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(api.UnaryActorInterceptor),
		grpc.ChainStreamInterceptor(api.StreamActorInterceptor),
	)
	api.RegisterClockServiceServer(grpcServer, api.NewServer(clockEngine))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)

	// Presentations subscribe before the first tick.
	if httpAddress != "" {
		gin.SetMode(gin.ReleaseMode)

		httpServer := rest.NewServer(clockEngine,
			rest.WithAllowedOrigins(settings.AllowedOrigins),
			rest.WithMetrics(recorder.Registry()),
		)
		defer clockEngine.Subscribe(httpServer.Hub())()

		group.Go(func() error {
			return httpServer.Serve(groupCtx, httpAddress)
		})
	}

	switch ui {
	case UITUI:
		bridge := tui.NewBridge(tui.DefaultBridgeBuffer)
		defer clockEngine.Subscribe(bridge)()

		group.Go(func() error {
			// Quitting the terminal UI stops the daemon.
			defer cancel()
			defer bridge.Close()

			var programOptions []tea.ProgramOption
			if terminal != nil {
				programOptions = append(programOptions, terminal.Option())
			}

			return tui.Run(groupCtx, clockEngine, bridge, programOptions...)
		})
	case UIAuto, UIPlain:
		defer clockEngine.Subscribe(render.Plain{})()
	}

	group.Go(func() error {
		return serveGRPC(groupCtx, grpcServer, lis)
	})

	logger.InfoKV(ctx, "Alarm clock running",
		"grpc_address", listenAddress,
		"http_address", httpAddress,
		"ui", ui,
		"sound", mode,
		"time_zone", settings.TimeZone)

	group.Go(func() error {
		return clockEngine.Run(groupCtx)
	})

	return group.Wait()
}

// serveGRPC serves until ctx is canceled and then stops gracefully.
func serveGRPC(ctx context.Context, grpcServer *grpc.Server, lis net.Listener) error {
	logger.InfoKV(ctx, "gRPC server listening", "listen_address", lis.Addr().String())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "gRPC server stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// If override is provided, uses it directly. Otherwise the configured address is used as is.
func resolveListenAddress(configAddr, override string) (string, error) {
	// Use override address if provided (e.g., ":9090", "0.0.0.0:8080").
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoServerAddress
	}

	// Validate the address format.
	if _, _, err := net.SplitHostPort(configAddr); err != nil {
		return "", fmt.Errorf("invalid server address format %q: %w", configAddr, err)
	}

	return configAddr, nil
}

// resolveUI maps UIAuto to a concrete presentation.
func resolveUI(ui UI, terminal bool) (UI, error) {
	switch ui {
	case "", UIAuto:
		if terminal {
			return UITUI, nil
		}

		return UIPlain, nil
	case UITUI, UIPlain:
		return ui, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUI, ui)
	}
}

// isTerminal reports whether both stdin and stdout are terminals.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // Fd fits in int.
}
