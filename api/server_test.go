package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/wricardo/foxandgeese/game/config"
	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/service"
	"github.com/wricardo/foxandgeese/game/session"
	"github.com/wricardo/foxandgeese/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, missionID string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Round Operations
	PlayerInputFunc  func(ctx context.Context, sessionID, direction string) (*service.ActionResult, error)
	TickFunc         func(ctx context.Context, sessionID string) (*service.ActionResult, error)
	FinishMovingFunc func(ctx context.Context, sessionID string) (*service.ActionResult, error)
	EndRoundFunc     func(ctx context.Context, sessionID string) (*service.ActionResult, error)
	PlayFunc         func(ctx context.Context, sessionID string, moves []string) (*service.PlayResult, error)

	// Game State
	GetStatusFunc       func(ctx context.Context, sessionID string) (*service.SessionStatus, error)
	GetRoundHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)

	// Missions
	ListMissionsFunc func(ctx context.Context) ([]*service.MissionInfo, error)
	LoadMissionFunc  func(ctx context.Context, missionID string) (*engine.MissionDefinition, error)
	SaveMissionFunc  func(ctx context.Context, missionID string, def *engine.MissionDefinition) error
}

// Session Management
func (m *MockGameService) CreateSession(ctx context.Context, missionID string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, missionID)
	}
	return &service.SessionInfo{
		ID:        "test-session",
		MissionID: missionID,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:        sessionID,
		MissionID: "classic",
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

// Round Operations
func (m *MockGameService) PlayerInput(ctx context.Context, sessionID, direction string) (*service.ActionResult, error) {
	if m.PlayerInputFunc != nil {
		return m.PlayerInputFunc(ctx, sessionID, direction)
	}
	return &service.ActionResult{Accepted: true, Status: &service.SessionStatus{SessionID: sessionID}}, nil
}

func (m *MockGameService) Tick(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	if m.TickFunc != nil {
		return m.TickFunc(ctx, sessionID)
	}
	return &service.ActionResult{Accepted: true, Status: &service.SessionStatus{SessionID: sessionID}}, nil
}

func (m *MockGameService) FinishMoving(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	if m.FinishMovingFunc != nil {
		return m.FinishMovingFunc(ctx, sessionID)
	}
	return &service.ActionResult{Accepted: true, Status: &service.SessionStatus{SessionID: sessionID}}, nil
}

func (m *MockGameService) EndRound(ctx context.Context, sessionID string) (*service.ActionResult, error) {
	if m.EndRoundFunc != nil {
		return m.EndRoundFunc(ctx, sessionID)
	}
	return &service.ActionResult{Accepted: true, Status: &service.SessionStatus{SessionID: sessionID}}, nil
}

func (m *MockGameService) Play(ctx context.Context, sessionID string, moves []string) (*service.PlayResult, error) {
	if m.PlayFunc != nil {
		return m.PlayFunc(ctx, sessionID, moves)
	}
	return &service.PlayResult{RequestedMoves: len(moves), RoundsPlayed: len(moves)}, nil
}

// Game State
func (m *MockGameService) GetStatus(ctx context.Context, sessionID string) (*service.SessionStatus, error) {
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx, sessionID)
	}
	return &service.SessionStatus{SessionID: sessionID}, nil
}

func (m *MockGameService) GetRoundHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetRoundHistoryFunc != nil {
		return m.GetRoundHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Rounds:     []service.RoundRecord{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

// Missions
func (m *MockGameService) ListMissions(ctx context.Context) ([]*service.MissionInfo, error) {
	if m.ListMissionsFunc != nil {
		return m.ListMissionsFunc(ctx)
	}
	return []*service.MissionInfo{}, nil
}

func (m *MockGameService) LoadMission(ctx context.Context, missionID string) (*engine.MissionDefinition, error) {
	if m.LoadMissionFunc != nil {
		return m.LoadMissionFunc(ctx, missionID)
	}
	return &engine.MissionDefinition{ID: missionID, Name: "Test mission"}, nil
}

func (m *MockGameService) SaveMission(ctx context.Context, missionID string, def *engine.MissionDefinition) error {
	if m.SaveMissionFunc != nil {
		return m.SaveMissionFunc(ctx, missionID, def)
	}
	return nil
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	return NewServer(mockService, nil)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	var resp map[string]string
	parseResponse(t, w, &resp)
	return resp["error"]
}

var errSessionMissing = fmt.Errorf("session not found: %w", session.ErrSessionNotFound)

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default mission",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, missionID string) (*service.SessionInfo, error) {
					if missionID != "" {
						t.Errorf("Expected empty mission id, got %q", missionID)
					}
					return &service.SessionInfo{ID: "ab12", MissionID: "classic"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" || resp.MissionID != "classic" {
					t.Errorf("Unexpected session %+v", resp)
				}
			},
		},
		{
			name:        "Create session with mission id",
			requestBody: map[string]string{"mission_id": "patrol"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, missionID string) (*service.SessionInfo, error) {
					return &service.SessionInfo{ID: "cd34", MissionID: missionID}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.MissionID != "patrol" {
					t.Errorf("Expected mission patrol, got %s", resp.MissionID)
				}
			},
		},
		{
			name:        "Unknown mission",
			requestBody: map[string]string{"mission_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, missionID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("failed to load mission %q: %w", missionID, config.ErrMissionNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				if msg := errorMessage(t, w); msg == "" {
					t.Error("Expected an error message")
				}
			},
		},
		{
			name:        "Unexpected failure",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, missionID string) (*service.SessionInfo, error) {
					return nil, errors.New("boom")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				if msg := errorMessage(t, w); msg != "boom" {
					t.Errorf("Expected error boom, got %q", msg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			tt.setupMock(mockService)
			server := setupTestServer(mockService)

			var req *http.Request
			if tt.requestBody == nil {
				req = makeRequest("POST", "/api/sessions", nil)
			} else {
				req = makeRequest("POST", "/api/sessions", tt.requestBody)
			}
			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			tt.validateResp(t, w)
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "mid", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now, LastAccessedAt: now},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name     string
		query    string
		expected []string
		total    int
	}{
		{"default sort by access desc", "", []string{"new", "old", "mid"}, 3},
		{"created ascending", "?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"limit", "?sort=created&limit=2", []string{"new", "mid"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.total || resp.Count != len(tt.expected) {
				t.Errorf("Expected count %d total %d, got %d/%d", len(tt.expected), tt.total, resp.Count, resp.Total)
			}
			for i, id := range tt.expected {
				if resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s, got %s", i, id, resp.Sessions[i].ID)
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "ab12" {
				return &service.SessionInfo{ID: "ab12"}, nil
			}
			return nil, errSessionMissing
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "ab12" {
				return nil
			}
			return fmt.Errorf("failed to delete session %s: %w", sessionID, session.ErrSessionNotFound)
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/sessions/ab12", http.StatusOK},
		{"GET", "/api/sessions/zz99", http.StatusNotFound},
		{"DELETE", "/api/sessions/ab12", http.StatusOK},
		{"DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

// Round Operation Tests

func TestPlayerInput(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		inputErr       error
		expectedStatus int
	}{
		{"accepted", map[string]string{"direction": "ul"}, nil, http.StatusOK},
		{"invalid direction", map[string]string{"direction": "north"}, fmt.Errorf("%w: %q", service.ErrInvalidDirection, "north"), http.StatusBadRequest},
		{"unknown session", map[string]string{"direction": "u"}, errSessionMissing, http.StatusNotFound},
		{"invalid body", "not an object", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotDirection string
			mockService := &MockGameService{
				PlayerInputFunc: func(ctx context.Context, sessionID, direction string) (*service.ActionResult, error) {
					gotDirection = direction
					if tt.inputErr != nil {
						return nil, tt.inputErr
					}
					return &service.ActionResult{Accepted: true, Status: &service.SessionStatus{SessionID: sessionID}}, nil
				},
			}
			server := setupTestServer(mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/input", tt.body))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code == http.StatusOK {
				var resp service.ActionResult
				parseResponse(t, w, &resp)
				if !resp.Accepted || gotDirection != "ul" {
					t.Errorf("Unexpected result %+v for direction %q", resp, gotDirection)
				}
			}
		})
	}
}

func TestRoundSteps(t *testing.T) {
	var calls []string
	record := func(name string) func(ctx context.Context, id string) (*service.ActionResult, error) {
		return func(ctx context.Context, id string) (*service.ActionResult, error) {
			calls = append(calls, name+":"+id)
			return &service.ActionResult{Accepted: true, Status: &service.SessionStatus{SessionID: id}}, nil
		}
	}
	mockService := &MockGameService{
		TickFunc:         record("tick"),
		FinishMovingFunc: record("finish"),
		EndRoundFunc:     record("end"),
	}
	server := setupTestServer(mockService)

	for _, path := range []string{"tick", "finish-moving", "end-round"} {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/"+path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, w.Code)
		}
	}

	expected := []string{"tick:ab12", "finish:ab12", "end:ab12"}
	if len(calls) != len(expected) {
		t.Fatalf("Expected calls %v, got %v", expected, calls)
	}
	for i := range expected {
		if calls[i] != expected[i] {
			t.Errorf("Call %d: expected %s, got %s", i, expected[i], calls[i])
		}
	}

	t.Run("wrong method", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/tick", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", w.Code)
		}
	})
}

func TestPlay(t *testing.T) {
	mockService := &MockGameService{
		PlayFunc: func(ctx context.Context, sessionID string, moves []string) (*service.PlayResult, error) {
			return &service.PlayResult{
				RequestedMoves: len(moves),
				RoundsPlayed:   2,
				StopReasonCode: service.StopMissionComplete,
				StoppedOnMove:  2,
				MissionStatus:  engine.PlayerWin,
			}, nil
		},
	}
	server := setupTestServer(mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/play", map[string][]string{"moves": {"w", "l", "r"}}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.PlayResult
	parseResponse(t, w, &resp)
	if resp.RequestedMoves != 3 || resp.RoundsPlayed != 2 || resp.MissionStatus != engine.PlayerWin {
		t.Errorf("Unexpected play result %+v", resp)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		query    string
		expected service.HistoryOptions
	}{
		{"", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetRoundHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Page: opts.Page}, nil
				},
			}
			server := setupTestServer(mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, got)
			}
		})
	}
}

// Mission Tests

func TestMissions(t *testing.T) {
	var saved *engine.MissionDefinition
	mockService := &MockGameService{
		ListMissionsFunc: func(ctx context.Context) ([]*service.MissionInfo, error) {
			return []*service.MissionInfo{{MissionID: "classic", Geese: 3}}, nil
		},
		LoadMissionFunc: func(ctx context.Context, missionID string) (*engine.MissionDefinition, error) {
			if missionID != "classic" {
				return nil, fmt.Errorf("%w: %s", config.ErrMissionNotFound, missionID)
			}
			return &engine.MissionDefinition{ID: "classic", Width: 5, Height: 3}, nil
		},
		SaveMissionFunc: func(ctx context.Context, missionID string, def *engine.MissionDefinition) error {
			if def.Width == 0 {
				return fmt.Errorf("failed to save mission %q: %w", missionID, config.ErrInvalidMission)
			}
			saved = def
			return nil
		},
	}
	server := setupTestServer(mockService)

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/missions", nil))
		var resp []service.MissionInfo
		parseResponse(t, w, &resp)
		if len(resp) != 1 || resp[0].MissionID != "classic" {
			t.Errorf("Unexpected missions %+v", resp)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/missions/classic", nil))
		var resp engine.MissionDefinition
		parseResponse(t, w, &resp)
		if resp.Width != 5 || resp.Height != 3 {
			t.Errorf("Unexpected mission %+v", resp)
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/missions/unknown", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		body := map[string]interface{}{
			"id": "custom", "width": 3, "height": 3,
			"fox":   map[string]int{"x": 1, "y": 1},
			"geese": []map[string]interface{}{{"position": map[string]int{"x": 0, "y": 0}}},
		}
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/missions", body))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}
		if saved == nil || saved.ID != "custom" || saved.Fox == nil || saved.Fox.X != 1 {
			t.Errorf("Unexpected saved mission %+v", saved)
		}
	})

	t.Run("create without id", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/missions", map[string]int{"width": 3}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/missions", map[string]interface{}{"id": "bad"}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

// Infrastructure Tests

func TestHealthAndRequestID(t *testing.T) {
	server := setupTestServer(&MockGameService{})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/healthz", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if len(w.Header().Get(RequestIDHeader)) != 36 {
			t.Errorf("Expected a uuid request id, got %q", w.Header().Get(RequestIDHeader))
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := makeRequest("GET", "/healthz", nil)
		req.Header.Set(RequestIDHeader, "trace-1")
		w := httptest.NewRecorder()
		server.ServeHTTP(w, req)
		if got := w.Header().Get(RequestIDHeader); got != "trace-1" {
			t.Errorf("Expected trace-1, got %q", got)
		}
	})
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errSessionMissing, http.StatusNotFound},
		{fmt.Errorf("x: %w", config.ErrMissionNotFound), http.StatusNotFound},
		{session.ErrSessionAlreadyExists, http.StatusConflict},
		{fmt.Errorf("x: %w", service.ErrInvalidDirection), http.StatusBadRequest},
		{fmt.Errorf("x: %w", engine.ErrInvalidDefinition), http.StatusBadRequest},
		{config.ErrInvalidMission, http.StatusBadRequest},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := StatusForError(tt.err); got != tt.status {
			t.Errorf("StatusForError(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}

func TestWebSocketEndpoint(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, errSessionMissing
		},
	}
	server := NewServer(mockService, websocket.NewHub(nil))

	tests := []struct {
		path   string
		status int
	}{
		{"/ws", http.StatusBadRequest},
		{"/ws?session=zz99", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", tt.path, nil))
		if w.Code != tt.status {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.status, w.Code)
		}
	}
}

// TestEndToEnd drives a real service through the API
func TestEndToEnd(t *testing.T) {
	dir, err := os.MkdirTemp("", "api-missions-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	missions, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create mission manager: %v", err)
	}
	sessions := session.NewManager(session.WithMissionOptions(engine.WithChooser(func(int) int { return 0 })))
	server := NewServer(service.NewGameService(sessions, missions), nil)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/"+info.ID+"/play", map[string][]string{"moves": {"l"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var play service.PlayResult
	parseResponse(t, w, &play)
	if play.RoundsPlayed != 1 {
		t.Errorf("Expected one round, got %d", play.RoundsPlayed)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/"+info.ID+"/history", nil))
	var history service.HistoryResponse
	parseResponse(t, w, &history)
	if history.TotalRounds != 1 || history.Rounds[0].PlayerInput != "l" {
		t.Errorf("Unexpected history %+v", history)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/"+info.ID+"/input", map[string]string{"direction": "sideways"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid direction, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/nope/status", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", w.Code)
	}
}
