// Command wordsearch runs the word search round server.
//
// Commands:
//  1. "serve" (default) – HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" – MCP stdio server backed by an external API, or an internal one when none is running
//  3. "generate", "validate", "analyze" – puzzle config tooling
//
// Flags and environment variables control host/port, config directory,
// logging, the round clock and optional ngrok tunneling.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/wordsearch/game/config"
	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/service"
	"github.com/wricardo/mcp-training/wordsearch/game/session"
	"github.com/wricardo/mcp-training/wordsearch/telemetry"
	"github.com/wricardo/mcp-training/wordsearch/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Word Search Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("wordsearch failed")
	}
}

// newApp builds the command tree. Flags declared on the root are visible
// to every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "wordsearch",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing puzzle configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Log level (debug, info, warn, error)", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.BoolFlag{Name: "debug", Usage: "Shorthand for --log-level debug"},
			&cli.DurationFlag{Name: "tick", Value: engine.DefaultTickInterval, Usage: "Round clock tick interval", Sources: cli.EnvVars("TICK_INTERVAL")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "Remove sessions idle for longer than this", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.Int64Flag{Name: "seed", Usage: "Seed board generation for reproducible rounds (0 = random)", Sources: cli.EnvVars("SEED")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := cmd.String("log-level")
			if cmd.Bool("debug") {
				level = "debug"
			}
			return ctx, setupLogging(level)
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run the HTTP server with REST API, WebSocket and MCP endpoint",
				Action:  serveAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server",
				Action:  mcpAction,
			},
			{
				Name:      "generate",
				Usage:     "Generate and print one board for a puzzle config",
				ArgsUsage: "[config]",
				Action:    generateAction,
			},
			{
				Name:   "validate",
				Usage:  "Validate every puzzle config file and report all problems",
				Action: validateAction,
			},
			{
				Name:  "analyze",
				Usage: "Generate every config repeatedly and report how hard its boards are to build",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "runs", Value: 200, Usage: "Boards to generate per config"},
				},
				Action: analyzeAction,
			},
		},
	}
}

// setupLogging configures the global zerolog logger. Logs go to stderr so
// the MCP stdio transport keeps stdout to itself.
func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}

// services holds the wired application components.
type services struct {
	game    service.GameService
	configs *config.Manager
	hub     *websocket.Hub
}

// initializeServices wires config and session managers, the WebSocket hub
// and the game service.
func initializeServices(configDir string, seed int64) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	opts := []session.Option{session.WithRoundObserver(service.LogObserver)}
	if seed != 0 {
		opts = append(opts, session.WithSeed(seed))
	}
	sessionManager := session.NewManager(opts...)

	hub := websocket.NewHub()
	gameService := service.NewGameService(sessionManager, configManager, service.WithNotifier(hub))

	return &services{
		game:    gameService,
		configs: configManager,
		hub:     hub,
	}, nil
}

// startBackground runs the hub, the round clock and session expiry until
// ctx is done.
func (s *services) startBackground(ctx context.Context, tick, ttl time.Duration) {
	go s.hub.Run(ctx)
	go service.RunClock(ctx, s.game, tick)
	go sessionCleanupRoutine(ctx, s.game, ttl)
}

// sessionCleanupRoutine periodically expires sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, svc service.GameService, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	interval := ttl / 24
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := svc.ExpireSessions(ctx, ttl); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// withTelemetry installs tracing for the duration of fn.
func withTelemetry(ctx context.Context, fn func() error) error {
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
		return fn()
	}
	if telemetry.Enabled() {
		log.Info().Msg("OpenTelemetry tracing enabled")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()
	return fn()
}
