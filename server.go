package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/wordsearch/api"
	"github.com/wricardo/mcp-training/wordsearch/transport/mcp"
)

// serveAction runs the HTTP server with REST API, WebSocket hub and an /mcp
// proxy endpoint until the context is cancelled. If ngrok is enabled it also
// provisions a public tunnel.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	return withTelemetry(ctx, func() error {
		svcs, err := initializeServices(cmd.String("config-dir"), cmd.Int64("seed"))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		svcs.startBackground(ctx, cmd.Duration("tick"), cmd.Duration("session-ttl"))

		addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
		handler := newRootHandler(api.NewServer(svcs.game, svcs.hub), mcp.NewClient("http://"+addr))

		httpServer := &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		var wg sync.WaitGroup
		errCh := make(chan error, 1)

		wg.Add(1)
		go func() {
			defer wg.Done()

			log.Info().Str("addr", addr).Str("version", Version).Msg("HTTP server listening")
			log.Info().Msgf("REST API: http://%s/api", addr)
			log.Info().Msgf("WebSocket: ws://%s/ws?session=<session_id>", addr)
			log.Info().Msgf("MCP endpoint: http://%s/mcp", addr)

			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("HTTP server failed: %w", err)
				cancel()
			}
		}()

		if cmd.Bool("ngrok") {
			wg.Add(1)
			go func() {
				defer wg.Done()
				runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
			}()
		}

		<-ctx.Done()
		log.Info().Msg("shutting down")

		// Graceful shutdown with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}

		wg.Wait()
		log.Info().Msg("server stopped")

		select {
		case err := <-errCh:
			return err
		default:
			return nil
		}
	})
}

// newRootHandler mounts the API server at the root and the MCP bridge at /mcp.
func newRootHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.Handle("/mcp", mcpHTTPHandler(mcpClient.GetMCPServer()))
	return mux
}

// mcpHTTPHandler serves single JSON-RPC messages over plain HTTP POST.
func mcpHTTPHandler(srv *mcpserver.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := srv.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done.
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Info().Str("url", ngrokURL).Msg("ngrok tunnel established")
	log.Info().Msgf("  REST API (ngrok): %s/api", ngrokURL)
	log.Info().Msgf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Info().Msgf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}
