package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jpillora/backoff"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/wordsearch/api"
	"github.com/wricardo/mcp-training/wordsearch/transport/mcp"
)

// mcpAction runs an MCP stdio server. It reuses an API already listening on
// host:port; otherwise it starts an internal API on a random loopback port.
func mcpAction(ctx context.Context, cmd *cli.Command) error {
	return withTelemetry(ctx, func() error {
		externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
		baseURL := externalURL

		log.Info().Str("url", externalURL).Msg("checking for external API server")
		if !apiReachable(ctx, externalURL, 2*time.Second) {
			log.Info().Msg("no external API server found, starting internal HTTP server")

			svcs, err := initializeServices(cmd.String("config-dir"), cmd.Int64("seed"))
			if err != nil {
				return err
			}
			svcs.startBackground(ctx, cmd.Duration("tick"), cmd.Duration("session-ttl"))

			internalURL, shutdown, err := startInternalServer(ctx, api.NewServer(svcs.game, svcs.hub))
			if err != nil {
				return err
			}
			defer shutdown()

			if err := waitForAPI(ctx, internalURL, 5*time.Second); err != nil {
				return err
			}
			baseURL = internalURL
		}

		mcpClient := mcp.NewClient(baseURL)
		log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

		if err := mcpserver.ServeStdio(mcpClient.GetMCPServer()); err != nil {
			return fmt.Errorf("MCP stdio server error: %w", err)
		}
		return nil
	})
}

// startInternalServer serves handler on a random loopback port.
func startInternalServer(ctx context.Context, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	addr := listener.Addr().String()
	httpServer := &http.Server{Handler: handler}

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("internal HTTP server error")
		}
	}()
	log.Info().Str("addr", addr).Msg("internal HTTP server started for MCP stdio")

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}
	return "http://" + addr, shutdown, nil
}

// apiReachable reports whether the health endpoint at baseURL answers.
func apiReachable(ctx context.Context, baseURL string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// waitForAPI polls the health endpoint with exponential backoff until it
// answers or timeout elapses.
func waitForAPI(ctx context.Context, baseURL string, timeout time.Duration) error {
	b := &backoff.Backoff{
		Min:    10 * time.Millisecond,
		Max:    500 * time.Millisecond,
		Factor: 2,
		Jitter: true,
	}
	deadline := time.Now().Add(timeout)

	for {
		if apiReachable(ctx, baseURL, time.Second) {
			log.Debug().Float64("attempts", b.Attempt()+1).Msg("internal API ready")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("API at %s not ready after %s", baseURL, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
}
