package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/wricardo/foxandgeese/api"
	"github.com/wricardo/foxandgeese/game/config"
	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/service"
	"github.com/wricardo/foxandgeese/game/session"
)

const missionYAML = `missions:
  sitting_duck:
    name: Sitting Duck
    map width: 5
    map height: 2
    fox:
      position: {x: 2, y: 0}
    geese:
      - position: {x: 0, y: 0}
        ai: wait
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "missions.yaml"), []byte(missionYAML), 0o644); err != nil {
		t.Fatalf("Failed to write mission file: %v", err)
	}

	missions, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create mission manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), missions)

	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)
	return server
}

func entities(fox engine.Position, geese ...engine.Position) []engine.EntityState {
	states := []engine.EntityState{{ID: engine.FoxID, Type: engine.Fox, Position: fox}}
	for _, g := range geese {
		states = append(states, engine.EntityState{ID: "goose", Type: engine.Goose, Position: g})
	}
	return states
}

func TestHuntStrategy_NextMove(t *testing.T) {
	grid := engine.Grid{Width: 5, Height: 3}

	t.Run("eats an adjacent goose", func(t *testing.T) {
		s := NewHuntStrategy(grid, 1)
		move := s.NextMove(entities(engine.Position{X: 1, Y: 1}, engine.Position{X: 2, Y: 2}))
		if move != engine.DirUpRight {
			t.Errorf("Expected UR, got %s", move)
		}
	})

	t.Run("avoids a mob", func(t *testing.T) {
		s := NewHuntStrategy(grid, 1)
		move := s.NextMove(entities(engine.Position{X: 4, Y: 1},
			engine.Position{X: 2, Y: 0},
			engine.Position{X: 2, Y: 1},
			engine.Position{X: 2, Y: 2},
		))
		if move != engine.DirUpLeft && move != engine.DirDownLeft {
			t.Errorf("Expected UL or DL, got %s", move)
		}
	})

	t.Run("waits without geese", func(t *testing.T) {
		s := NewHuntStrategy(grid, 1)
		states := entities(engine.Position{X: 0, Y: 0}, engine.Position{X: 1, Y: 1})
		states[1].IsDead = true
		if move := s.NextMove(states); move != engine.WaitCode {
			t.Errorf("Expected W, got %s", move)
		}
	})

	t.Run("waits without fox", func(t *testing.T) {
		s := NewHuntStrategy(grid, 1)
		states := []engine.EntityState{{ID: "goose", Type: engine.Goose}}
		if move := s.NextMove(states); move != engine.WaitCode {
			t.Errorf("Expected W, got %s", move)
		}
	})
}

func TestStepFrom(t *testing.T) {
	origin := engine.Position{X: 1, Y: 1}
	tests := []struct {
		code string
		want engine.Position
	}{
		{engine.DirUp, engine.Position{X: 1, Y: 2}},
		{engine.DirDown, engine.Position{X: 1, Y: 0}},
		{engine.DirLeft, engine.Position{X: 0, Y: 1}},
		{engine.DirRight, engine.Position{X: 2, Y: 1}},
		{engine.DirUpLeft, engine.Position{X: 0, Y: 2}},
		{engine.DirDownRight, engine.Position{X: 2, Y: 0}},
		{engine.WaitCode, origin},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := stepFrom(origin, tt.code); got != tt.want {
				t.Errorf("stepFrom(%v, %s) = %v, want %v", origin, tt.code, got, tt.want)
			}
		})
	}
}

func TestRunAttempt(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)

	result, err := runAttempt(context.Background(), client, "sitting_duck", 1, 20, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("runAttempt failed: %v", err)
	}

	if result.MissionStatus != engine.PlayerWin {
		t.Errorf("Expected the fox to win, got %s after %d rounds", result.MissionStatus, result.Rounds)
	}
	if result.Rounds != 2 {
		t.Errorf("Expected 2 rounds, got %d", result.Rounds)
	}
	if result.GeeseLeft != 0 {
		t.Errorf("Expected no geese left, got %d", result.GeeseLeft)
	}
}

func TestClient_Errors(t *testing.T) {
	server := newTestServer(t)
	client := NewClient(server.URL)
	ctx := context.Background()

	if _, err := client.CreateSession(ctx, "missing"); err == nil {
		t.Error("Expected error for unknown mission")
	}
	if _, err := client.Play(ctx, "nope", []string{"w"}); err == nil {
		t.Error("Expected error for unknown session")
	}

	info, err := client.CreateSession(ctx, "sitting_duck")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := client.DeleteSession(ctx, info.ID); err != nil {
		t.Errorf("DeleteSession failed: %v", err)
	}
	if err := client.DeleteSession(ctx, info.ID); err == nil {
		t.Error("Expected error deleting a deleted session")
	}
}
