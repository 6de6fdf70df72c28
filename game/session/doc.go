// Package session keeps word search sessions in memory.
//
// Each session owns one engine.Round built from a puzzle config. Sessions
// are addressed by short IDs (4 hex characters when generated) and looked
// up case-insensitively. Nothing is persisted: a restart of the process
// drops every session.
//
// The manager is safe for concurrent use. It guards the session map only;
// the rounds themselves are serialized by the service layer.
//
// Usage:
//
//	manager := session.NewManager(session.WithSeed(42))
//
//	sess, err := manager.Create("", "animals", engine.DefaultPuzzleConfig())
//	if err != nil {
//		return err
//	}
//	sess, err = manager.Get(sess.ID)
//
// Idle sessions are expired by the game service, which exits their rounds
// under its own lock before deleting them here.
package session
