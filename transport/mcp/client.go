package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/puzzle"
	"github.com/wricardo/mcp-training/wordsearch/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Word Search",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Word Search - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every hidden word on the letter board before the clock runs out. Words run
in a straight line: across, down or diagonally down-right, and are selected from
their first letter to their last.

AVAILABLE TOOLS:
- create_session: Start a new round with an optional puzzle config
- round_state: Show the board, word list, clock and current selection
- select_cell: Tap one cell (row, col)
- select_path: Tap a whole line of cells at once
- get_hint: First letter of a word you have not found yet
- pause_round / resume_round: Hold and continue the clock
- restart_round: New board, clock reset
- force_game_over / exit_round: End the round
- list_sessions, get_session, list_configs, game_instructions`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{"session_id": sessionProperty()},
		Required:   []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new word search session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Puzzle config to use (see list_configs). Defaults to animals",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	// Play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "round_state",
		Description: "Show the board, the word list, the clock and the current selection",
		InputSchema: sessionOnlySchema(),
	}, c.handleRoundState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_cell",
		Description: "Tap one cell. Cells extend the current selection while they stay on a straight line",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row index, 0 at the top",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column index, 0 at the left",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of which word you are tracing",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleSelectCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_path",
		Description: "Tap a sequence of cells in order, e.g. every letter of one word",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"cells": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"row": map[string]interface{}{"type": "integer"},
							"col": map[string]interface{}{"type": "integer"},
						},
					},
					"description": "Cells as [{\"row\":0,\"col\":1}, ...]; [row, col] pairs are accepted too",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of which word you are tracing",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Restart the round before tapping",
				},
			},
			Required: []string{"session_id", "cells"},
		},
	}, c.handleSelectPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_hint",
		Description: "Show the first cell of a word not found yet",
		InputSchema: sessionOnlySchema(),
	}, c.handleHint)

	// Host commands
	c.addCommandTool("pause_round", "Pause the clock; taps are ignored until resumed", "pause")
	c.addCommandTool("resume_round", "Resume a paused round", "resume")
	c.addCommandTool("restart_round", "Start over with a new board and a full clock", "restart")
	c.addCommandTool("force_game_over", "End the round now as if time ran out", "force-game-over")
	c.addCommandTool("exit_round", "Abandon the round", "exit")

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available puzzle configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and tips for playing through this interface",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

func (c *Client) addCommandTool(name, description, route string) {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: sessionOnlySchema(),
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return c.handleCommand(ctx, request, route)
	})
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionArg(args map[string]interface{}) (string, error) {
	sessionID := strings.TrimSpace(cast.ToString(args["session_id"]))
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return sessionID, nil
}

// parseCells accepts [{"row":r,"col":c}, ...] and [[r,c], ...].
func parseCells(raw interface{}) ([]puzzle.Cell, error) {
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("cells must be an array")
	}

	cells := make([]puzzle.Cell, 0, len(items))
	for i, item := range items {
		if pair, err := cast.ToSliceE(item); err == nil {
			if len(pair) != 2 {
				return nil, fmt.Errorf("cell %d: expected [row, col]", i+1)
			}
			row, rerr := cast.ToIntE(pair[0])
			col, cerr := cast.ToIntE(pair[1])
			if rerr != nil || cerr != nil {
				return nil, fmt.Errorf("cell %d: row and col must be integers", i+1)
			}
			cells = append(cells, puzzle.Cell{Row: row, Col: col})
			continue
		}

		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, fmt.Errorf("cell %d: expected {\"row\": r, \"col\": c}", i+1)
		}
		row, rerr := cast.ToIntE(m["row"])
		col, cerr := cast.ToIntE(m["col"])
		if rerr != nil || cerr != nil || m["row"] == nil || m["col"] == nil {
			return nil, fmt.Errorf("cell %d: row and col must be integers", i+1)
		}
		cells = append(cells, puzzle.Cell{Row: row, Col: col})
	}
	return cells, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	configID := cast.ToString(args["config_id"])

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatRoundState(session.RoundState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		phase, found := "unknown", ""
		if s.RoundState != nil {
			phase = string(s.RoundState.Phase)
			found = fmt.Sprintf(", Found: %d/%d", s.RoundState.Score, s.RoundState.Total)
		}
		fmt.Fprintf(&result, "- %s (Config: %s, Phase: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, phase, found, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := sessionArg(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleRoundState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := sessionArg(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.RoundState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoundState(&state)), nil
}

func (c *Client) handleSelectCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, err := sessionArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, rerr := cast.ToIntE(args["row"])
	col, cerr := cast.ToIntE(args["col"])
	if rerr != nil || cerr != nil || args["row"] == nil || args["col"] == nil {
		return mcp.NewToolResultError("row and col must be integers"), nil
	}

	body := map[string]int{"row": row, "col": col}

	var result service.SelectResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/select", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSelectResult(&result)), nil
}

func (c *Client) handleSelectPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, err := sessionArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cells, err := parseCells(args["cells"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"cells": cells,
		"reset": cast.ToBool(args["reset"]),
	}

	var result service.PathResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/select-path", sessionID), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPathResult(&result)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := sessionArg(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var hint service.HintResult
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/hint", sessionID), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s starts at (row %d, col %d). Words left: %d",
		hint.Word, hint.Cell.Row, hint.Cell.Col, hint.Remaining)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCommand(ctx context.Context, request mcp.CallToolRequest, route string) (*mcp.CallToolResult, error) {
	sessionID, err := sessionArg(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/%s", sessionID, route), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", result.Message, formatRoundState(result.RoundState))), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&result, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Words: %d, Clock: %s\n\n",
			config.Name, config.ConfigID, config.Description, config.GridSize, config.GridSize,
			config.WordCount, engine.FormatClock(time.Duration(config.RoundSeconds)*time.Second))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Word Search - Instructions

OBJECTIVE:
Find every word in the list before the clock reaches 00:00.

HOW WORDS ARE HIDDEN:
• Each word lies on a straight line of adjacent cells
• Across, down or diagonally down-right, read from the first letter to the last
• Words may cross and share letters
• Every other cell holds a random filler letter

SELECTING:
• Tap cells one at a time with select_cell, or a whole word with select_path
• The first two cells set the direction; later cells must continue the same line
• A cell that leaves the line clears the selection
• When the selected letters can no longer start any word left to find, the selection is cleared
• When they spell a word on the list, the word is marked found and the selection clears

COORDINATES:
• (row, col) with (0, 0) at the top left
• round_state prints column numbers above the board and row numbers on the left

CLOCK:
• The clock counts down once per second while the round is active
• pause_round holds it; resume_round continues from the same time
• Finding the last word ends the round as solved, even on the final tick

TIPS:
• Look for rare letters of a word first, then check all 8 neighbours for the second letter
• Use select_path with the full list of cells once you have spotted a word
• get_hint shows where a remaining word starts`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatRoundState(session.RoundState))
}

func formatRoundState(state *engine.RoundState) string {
	if state == nil {
		return "No round state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Phase: %s | Found: %d/%d | Clock: %s", state.Phase, state.Score, state.Total, state.Clock)
	if state.Paused {
		result.WriteString(" | PAUSED")
	}
	result.WriteString("\n\n")

	result.WriteString(formatGrid(state.Grid, state.Selection))

	found := make(map[string]bool, len(state.FoundWords))
	for _, w := range state.FoundWords {
		found[w] = true
	}
	result.WriteString("\nWords:")
	for _, w := range state.Words {
		if found[w] {
			fmt.Fprintf(&result, " [✓%s]", w)
		} else {
			fmt.Fprintf(&result, " %s", w)
		}
	}
	result.WriteString("\n")

	if len(state.Selection) > 0 {
		fmt.Fprintf(&result, "Selection: %s %s\n", state.Candidate, formatCells(state.Selection))
	}

	switch state.Phase {
	case engine.PhaseSolved:
		result.WriteString("\n🎉 PUZZLE COMPLETE!")
	case engine.PhaseTimedOut:
		result.WriteString("\n⏰ TIME'S UP")
	case engine.PhaseExited:
		result.WriteString("\nRound exited")
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

// formatGrid prints the board with row and column indexes. Selected cells
// are shown in lowercase.
func formatGrid(grid puzzle.Grid, selection []puzzle.Cell) string {
	if grid.Size() == 0 {
		return ""
	}

	selected := make(map[puzzle.Cell]bool, len(selection))
	for _, c := range selection {
		selected[c] = true
	}

	var result strings.Builder
	result.WriteString("   ")
	for col := 0; col < grid.Size(); col++ {
		fmt.Fprintf(&result, "%2d", col%100)
	}
	result.WriteString("\n")

	for row := 0; row < grid.Size(); row++ {
		fmt.Fprintf(&result, "%2d ", row)
		for col := 0; col < grid.Size(); col++ {
			cell := puzzle.Cell{Row: row, Col: col}
			letter := "."
			if r, ok := grid.At(cell); ok && r != 0 && r != puzzle.Placeholder {
				letter = string(r)
			}
			if selected[cell] {
				letter = strings.ToLower(letter)
			}
			fmt.Fprintf(&result, " %s", letter)
		}
		result.WriteString("\n")
	}
	return result.String()
}

func formatCells(cells []puzzle.Cell) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return strings.Join(parts, " ")
}

func formatSelectResult(result *service.SelectResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tap (%d,%d): %s", result.Cell.Row, result.Cell.Col, result.Status)
	if result.Word != "" {
		fmt.Fprintf(&b, " %s", result.Word)
	} else if result.Candidate != "" {
		fmt.Fprintf(&b, " [%s]", result.Candidate)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "\n%s", result.Message)
	}
	fmt.Fprintf(&b, "\n\n%s", formatRoundState(result.RoundState))
	return b.String()
}

func formatPathResult(result *service.PathResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Taps: %d/%d executed", result.SelectsExecuted, result.RequestedSelects)
	if result.Truncated {
		fmt.Fprintf(&b, " (truncated to %d)", result.Limit)
	}
	b.WriteString("\n")

	for _, step := range result.Steps {
		fmt.Fprintf(&b, "%d. (%d,%d) %s -> %s", step.Idx, step.Cell.Row, step.Cell.Col, step.Letter, step.Status)
		if step.Word != "" {
			fmt.Fprintf(&b, " %s", step.Word)
		} else if step.Candidate != "" {
			fmt.Fprintf(&b, " [%s]", step.Candidate)
		}
		b.WriteString("\n")
	}

	if len(result.WordsFound) > 0 {
		fmt.Fprintf(&b, "Found: %s (+%d)\n", strings.Join(result.WordsFound, ", "), result.ScoreDelta)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped at tap %d: %s\n", result.StoppedOnSelect, result.StoppedReason)
	}

	fmt.Fprintf(&b, "\n%s", formatRoundState(result.RoundState))
	return b.String()
}
