// Package websocket pushes word search rounds to browsers in real time.
//
// A central Hub owns every connection. Clients subscribe to one session
// with /ws?session=<id>; the first message they receive is the current
// round state, and after that every batch of round events is delivered as
//
//	{"session_id": "a1b2", "event": "word_found", "events": [...], "round_state": {...}}
//
// where event names the last event in the batch. Clock ticks arrive the
// same way, so clients never poll.
//
// Hub implements the game service Notifier. Publish never blocks the
// caller: updates go through a buffered queue and a slow client is
// dropped rather than holding up the round.
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, configs, service.WithNotifier(hub))
package websocket
