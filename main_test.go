package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/wordsearch/api"
	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/service"
	"github.com/wricardo/mcp-training/wordsearch/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Word Search Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestNewApp(t *testing.T) {
	app := newApp()

	commands := map[string]bool{}
	for _, c := range app.Commands {
		commands[c.Name] = true
	}
	for _, name := range []string{"serve", "mcp", "generate", "validate", "analyze"} {
		if !commands[name] {
			t.Errorf("Missing command %s", name)
		}
	}

	flags := map[string]bool{}
	for _, f := range app.Flags {
		for _, n := range f.Names() {
			flags[n] = true
		}
	}
	for _, name := range []string{"port", "host", "config-dir", "log-level", "tick", "session-ttl", "seed", "ngrok", "ngrok-auth", "ngrok-domain"} {
		if !flags[name] {
			t.Errorf("Missing flag --%s", name)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := setupLogging("debug"); err != nil {
		t.Fatalf("setupLogging(debug) failed: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %s", zerolog.GlobalLevel())
	}

	if err := setupLogging("WARN"); err != nil || zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("Expected warn level, got %s (%v)", zerolog.GlobalLevel(), err)
	}

	if err := setupLogging("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestInitializeServices(t *testing.T) {
	svcs, err := initializeServices("configs", 42)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	info, err := svcs.game.CreateSession(context.Background(), "quick")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.RoundState == nil || info.RoundState.Phase != engine.PhaseActive {
		t.Errorf("Expected an active round, got %+v", info.RoundState)
	}
	if list, _ := svcs.game.ListSessions(context.Background()); len(list) != 1 {
		t.Errorf("Expected 1 session, got %d", len(list))
	}

	// Expiry goes through the service so the round is exited and published.
	if n := svcs.game.ExpireSessions(context.Background(), -time.Hour); n != 1 {
		t.Errorf("Expected 1 expired session, got %d", n)
	}
	if _, err := svcs.game.GetSession(context.Background(), info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected expired session to be gone, got %v", err)
	}
}

func TestInitializeServices_MissingConfigDir(t *testing.T) {
	// A missing directory falls back to the built-in puzzle
	svcs, err := initializeServices(filepath.Join(t.TempDir(), "missing"), 0)
	if err != nil {
		t.Fatalf("Expected missing config dir to be tolerated: %v", err)
	}
	if svcs.configs.GetDefault().Name != "animals" {
		t.Errorf("Expected built-in animals default, got %s", svcs.configs.GetDefault().Name)
	}

	file := filepath.Join(t.TempDir(), "not-a-dir")
	os.WriteFile(file, []byte("x"), 0644)
	if _, err := initializeServices(file, 0); err == nil {
		t.Error("Expected error when config dir is a file")
	}
}

func TestRootHandler(t *testing.T) {
	svcs, err := initializeServices("configs", 1)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	handler := newRootHandler(api.NewServer(svcs.game, svcs.hub), mcp.NewClient("http://127.0.0.1:0"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected /health to be served by the API, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected GET /mcp to be rejected, got %d", w.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"game_instructions","arguments":{}}}`
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /mcp, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "diagonally down-right") {
		t.Errorf("Expected instructions in MCP response, got %s", w.Body.String())
	}
}

func TestWaitForAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	if err := waitForAPI(context.Background(), server.URL, time.Second); err != nil {
		t.Errorf("Expected API to be ready: %v", err)
	}

	url := server.URL
	server.Close()
	if err := waitForAPI(context.Background(), url, 200*time.Millisecond); err == nil {
		t.Error("Expected error for a closed server")
	}
}

func TestPrintBoard(t *testing.T) {
	var buf bytes.Buffer
	result := printBoard(&buf, engine.DefaultPuzzleConfig(), 7)

	if result.Failed {
		t.Fatal("Expected the default puzzle to generate")
	}
	out := buf.String()
	for _, word := range engine.DefaultPuzzleConfig().Words {
		if !strings.Contains(out, word) {
			t.Errorf("Expected %s in output:\n%s", word, out)
		}
	}
	if !strings.Contains(out, "seed 7") {
		t.Errorf("Expected seed in header:\n%s", out)
	}
}

func TestValidateConfigs(t *testing.T) {
	var buf bytes.Buffer
	invalid, err := validateConfigs(&buf, "configs")
	if err != nil {
		t.Fatalf("validateConfigs failed: %v", err)
	}
	if invalid != 0 {
		t.Errorf("Expected shipped configs to be valid:\n%s", buf.String())
	}

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: bad\ngrid_size: 2\nwords: [ABC, abc]\nround_seconds: 1\n"), 0644)

	buf.Reset()
	invalid, err = validateConfigs(&buf, dir)
	if err != nil {
		t.Fatalf("validateConfigs failed: %v", err)
	}
	if invalid != 1 {
		t.Errorf("Expected 1 invalid config, got %d", invalid)
	}
	// Every problem is reported, not just the first
	if n := strings.Count(buf.String(), "   - "); n < 3 {
		t.Errorf("Expected at least 3 reported problems, got %d:\n%s", n, buf.String())
	}
}

func TestAnalyzeConfig(t *testing.T) {
	a := analyzeConfig(engine.DefaultPuzzleConfig(), 20, 1)
	if a.Failures != 0 || a.SuccessRate() != 1 {
		t.Errorf("Expected every default board to generate, got %+v", a)
	}
	if a.AvgAttempts < 1 || a.MaxAttempts < 1 {
		t.Errorf("Expected at least one attempt per board, got %+v", a)
	}

	crowded := &engine.PuzzleConfig{
		Name:         "crowded",
		GridSize:     3,
		Words:        []string{"ABC", "DEF", "GHI", "JKL"},
		RoundSeconds: 60,
		MaxAttempts:  3,
		MaxWordTries: 5,
	}
	a = analyzeConfig(crowded, 5, 1)
	if a.Failures != 5 || a.SuccessRate() != 0 {
		t.Errorf("Expected every crowded board to fail, got %+v", a)
	}
}

func TestAnalyzeConfigs(t *testing.T) {
	var buf bytes.Buffer
	if err := analyzeConfigs(&buf, "configs", 10, 3); err != nil {
		t.Fatalf("analyzeConfigs failed: %v", err)
	}
	for _, name := range []string{"=== animals ===", "=== quick ===", "Success rate"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("Expected %q in report", name)
		}
	}

	if err := analyzeConfigs(&buf, "configs", 0, 3); err == nil {
		t.Error("Expected error for zero runs")
	}
}

func TestApp_Generate(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	err := app.Run(context.Background(), []string{"wordsearch", "--config-dir", "configs", "--seed", "5", "--log-level", "error", "generate", "quick"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "quick (6x6, seed 5)") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
}
