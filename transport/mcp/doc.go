// Package mcp lets AI agents play word search through the Model Context
// Protocol.
//
// Client is a thin proxy: every tool call becomes a request to the REST
// API and the JSON response is rendered as text an agent can read, with
// the board printed as a grid with row and column numbers.
//
// Tools: create_session, list_sessions, get_session, round_state,
// select_cell, select_path, get_hint, pause_round, resume_round,
// restart_round, force_game_over, exit_round, list_configs and
// game_instructions.
//
// Arguments are coerced with spf13/cast, so agents may send numbers as
// strings and cells either as objects or as [row, col] pairs.
//
// The server runs over stdio (wordsearch mcp) or is mounted on the HTTP
// server at /mcp through GetMCPServer().HandleMessage.
package mcp
