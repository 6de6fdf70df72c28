package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
	"github.com/wricardo/mcp-training/wordsearch/game/service"
)

func createTestConfig() *engine.PuzzleConfig {
	return &engine.PuzzleConfig{
		Name:         "Test Config",
		Description:  "Test configuration",
		GridSize:     6,
		Words:        []string{"GATO", "OSO"},
		RoundSeconds: 60,
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", "test", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.ConfigID != "test" {
			t.Errorf("Expected config ID 'test', got '%s'", session.ConfigID)
		}
		if session.Round == nil {
			t.Fatal("Expected round to be initialized")
		}
		if session.Round.Phase() != engine.PhaseActive {
			t.Errorf("Expected an active round, got %s", session.Round.Phase())
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", "test", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %q", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", "test", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", "test", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Words = nil
		_, err := manager.Create("invalid-test", "test", invalidConfig)
		if err == nil {
			t.Error("Expected error for invalid config")
		}
	})

	t.Run("nil config", func(t *testing.T) {
		if _, err := manager.Create("nil-test", "test", nil); err == nil {
			t.Error("Expected error for nil config")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager()
	created, _ := manager.Create("get-test", "test", createTestConfig())

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session.ID != created.ID {
			t.Errorf("Expected session ID '%s', got '%s'", created.ID, session.ID)
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session != created {
			t.Errorf("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()
	manager.Create("delete-test", "test", config)

	t.Run("delete existing session", func(t *testing.T) {
		if err := manager.Delete("delete-test"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if _, err := manager.Get("delete-test"); err != ErrSessionNotFound {
			t.Error("Expected session to be deleted")
		}
	})

	t.Run("delete non-existent session", func(t *testing.T) {
		if err := manager.Delete("non-existent"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("case-insensitive delete", func(t *testing.T) {
		manager.Create("case-test", "test", config)
		if err := manager.Delete("CASE-TEST"); err != nil {
			t.Fatalf("Failed to delete with different case: %v", err)
		}
		if _, err := manager.Get("case-test"); err != ErrSessionNotFound {
			t.Error("Expected session to be deleted regardless of case")
		}
	})
}

func TestManager_ListOldestFirst(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	first, _ := manager.Create("list-1", "test", config)
	second, _ := manager.Create("list-2", "test", config)
	first.CreatedAt = time.Now().Add(-time.Minute)

	sessions := manager.List()
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0] != first || sessions[1] != second {
		t.Errorf("Expected sessions ordered by creation, got %s, %s", sessions[0].ID, sessions[1].ID)
	}
}

func TestManager_NotFoundIsServiceSentinel(t *testing.T) {
	manager := NewManager()
	if _, err := manager.Get("none"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected service.ErrSessionNotFound, got %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager()
	session, _ := manager.Create("access-test", "test", createTestConfig())
	session.LastAccessedAt = time.Now().Add(-time.Minute)
	originalTime := session.LastAccessedAt

	if err := manager.UpdateLastAccessed("ACCESS-TEST"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}
	if err := manager.UpdateLastAccessed("missing"); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_SeededBoardsAreReproducible(t *testing.T) {
	config := createTestConfig()

	a := NewManager(WithSeed(99))
	b := NewManager(WithSeed(99))

	for i := 0; i < 3; i++ {
		sa, err := a.Create("", "test", config)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		sb, _ := b.Create("", "test", config)

		ga, gb := sa.Round.Grid().Rows(), sb.Round.Grid().Rows()
		for r := range ga {
			if ga[r] != gb[r] {
				t.Fatalf("Session %d row %d differs: %q vs %q", i, r, ga[r], gb[r])
			}
		}
	}
}

func TestManager_RoundObserver(t *testing.T) {
	var mu sync.Mutex
	seen := map[string][]engine.EventType{}

	manager := NewManager(WithRoundObserver(func(id string) engine.Observer {
		return engine.ObserverFunc(func(e engine.Event) {
			mu.Lock()
			defer mu.Unlock()
			seen[id] = append(seen[id], e.Type)
		})
	}))

	session, _ := manager.Create("obs", "test", createTestConfig())
	session.Round.ForceGameOver()

	mu.Lock()
	defer mu.Unlock()
	if !containsType(seen["obs"], engine.EventRoundStarted) {
		t.Errorf("Expected round_started, got %v", seen["obs"])
	}
	if !containsType(seen["obs"], engine.EventGameOver) {
		t.Errorf("Expected game_over, got %v", seen["obs"])
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.Create(fmt.Sprintf("s-%d", id%50), "test", config); err != nil && err != ErrSessionAlreadyExists {
				errs <- err
			}
			manager.Get(fmt.Sprintf("s-%d", id%50))
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", "test", config)
	session2, _ := manager.Create("iso-2", "test", config)

	session1.Round.Exit()

	if session2.Round.Phase() != engine.PhaseActive {
		t.Error("Session 2 should not be affected by session 1")
	}
	if session1.Round.ID() == session2.Round.ID() {
		t.Error("Sessions should have independent rounds")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager()
	config := createTestConfig()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", "test", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true
	}
}

func containsType(types []engine.EventType, want engine.EventType) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
