// Package api exposes word search sessions over a JSON REST API.
//
// Sessions:
//   - POST   /api/sessions                     create, body {"config_id": "animals"} (optional)
//   - GET    /api/sessions                     list, ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /api/sessions/{id}                session info with round state
//   - DELETE /api/sessions/{id}
//
// Play:
//   - GET  /api/sessions/{id}/state            current round state
//   - POST /api/sessions/{id}/select           tap one cell, body {"row": 0, "col": 3}
//   - POST /api/sessions/{id}/select-path      tap a sequence, body {"cells": [...], "reset": false}
//   - GET  /api/sessions/{id}/hint             first cell of a word not found yet
//
// Host commands (all POST, no body):
//   - /api/sessions/{id}/pause, /resume, /restart, /force-game-over, /exit
//
// Configuration:
//   - GET  /api/configs, GET /api/configs/{name}, POST /api/configs
//
// Live updates are served on /ws?session={id}; see package websocket.
//
// Errors are returned as {"error": "..."}. Unknown sessions and configs are
// 404, invalid puzzle definitions are 400 and a hint request on a round
// with nothing left to find is 409.
package api
