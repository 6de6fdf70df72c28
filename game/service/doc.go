// Package service is the host layer between the transports (HTTP,
// WebSocket, MCP) and the word search engine.
//
// GameService creates sessions, each owning one engine.Round, and exposes
// play (Select, SelectPath, Hint), the host pause-modal commands (Pause,
// Resume, Restart, ForceGameOver, Exit) and the shared clock (Tick). A
// single service mutex serializes access to rounds.
//
// Events produced by an operation are returned to the caller and, when a
// Notifier is configured, published with the resulting round state so that
// WebSocket clients see timer ticks and game over without polling.
//
// Usage:
//
//	sessionMgr := session.NewManager(session.WithRoundObserver(service.LogObserver))
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessionMgr, configMgr, service.WithNotifier(hub))
//	go service.RunClock(ctx, svc, time.Second)
//
//	info, err := svc.CreateSession(ctx, "animals")
//	res, err := svc.Select(ctx, info.ID, 0, 0)
package service
