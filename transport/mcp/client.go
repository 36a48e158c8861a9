package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/service"
)

// ServerName and ServerVersion identify the MCP server
const (
	ServerName    = "Fox and Geese"
	ServerVersion = "1.0.0"
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
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Fox and Geese - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
You are the fox (F). Eat every goose (G) before three of them corner you.

AVAILABLE TOOLS:
- create_session: Start a mission (optional mission_id)
- list_sessions / get_session: Inspect sessions
- session_status: Board, entities and round phase
- play: Play whole rounds from a list of directions (preferred)
- player_input, tick, finish_moving, end_round: Step a round by hand
- round_history: Past rounds and what every entity did
- list_missions: Available missions
- game_instructions: Full rules`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{"session_id": sessionIDProperty()},
		Required:   []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new mission session, optionally picking the mission",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"mission_id": map[string]interface{}{
					"type":        "string",
					"description": "Mission to play (optional, see list_missions)",
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

	// Rounds
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "session_status",
		Description: "Get the board, entities and round phase of a session",
		InputSchema: sessionOnlySchema(),
	}, c.handleSessionStatus)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "player_input",
		Description: "Give the fox its direction for this round. The round is not resolved until tick is called.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        engine.AllDirections,
					"description": "Direction code",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handlePlayerInput)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance the round by one presenter step",
		InputSchema: sessionOnlySchema(),
	}, c.stepHandler("tick", "tick"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "finish_moving",
		Description: "Report that entity animations are done",
		InputSchema: sessionOnlySchema(),
	}, c.stepHandler("finish-moving", "finish moving"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_round",
		Description: "Clear the round and wait for the next input",
		InputSchema: sessionOnlySchema(),
	}, c.stepHandler("end-round", "end round"))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play",
		Description: fmt.Sprintf("Play whole rounds, one per direction (max %d). Stops when the mission ends.", engine.MaxPlayMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": engine.AllDirections,
					},
					"description": "Directions, one per round",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handlePlay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "round_history",
		Description: "Get paginated round history of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Rounds per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRoundHistory)

	// Missions
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_missions",
		Description: "List available missions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMissions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of Fox and Geese",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves single JSON-RPC messages posted to /mcp
func (c *Client) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
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

// arguments returns the tool arguments as a map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// toMoves accepts an array of directions or a single string separated by
// commas or spaces
func toMoves(v interface{}) []string {
	if s, ok := v.(string); ok {
		return strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' '
		})
	}
	return cast.ToStringSlice(v)
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	missionID := cast.ToString(arguments(request)["mission_id"])

	body := map[string]string{}
	if missionID != "" {
		body["mission_id"] = missionID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nMission: %s (%s)\n\n%s",
		info.ID, info.MissionName, info.MissionID, service.FormatStatus(info.Status))
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

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.Status != nil {
			status = string(s.Status.MissionStatus)
		}
		fmt.Fprintf(&b, "- %s (Mission: %s, Status: %s, Created: %s)\n",
			s.ID, s.MissionID, status, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Session: %s\nMission: %s (%s)\nCreated: %s\nLast accessed: %s\n\n%s",
		info.ID, info.MissionName, info.MissionID,
		info.CreatedAt.Format(time.RFC3339), info.LastAccessedAt.Format(time.RFC3339),
		service.FormatStatus(info.Status))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSessionStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := cast.ToString(arguments(request)["session_id"])

	var status service.SessionStatus
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/status"), nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(service.FormatStatus(&status)), nil
}

func (c *Client) handlePlayerInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])
	direction := cast.ToString(args["direction"])

	var result service.ActionResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/input"), map[string]string{"direction": direction}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatActionResult("player input "+direction, &result)), nil
}

// stepHandler builds the handler of a round operation that only takes a
// session id
func (c *Client) stepHandler(path, label string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := cast.ToString(arguments(request)["session_id"])

		var result service.ActionResult
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/"+path), nil, &result); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(formatActionResult(label, &result)), nil
	}
}

func (c *Client) handlePlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])
	moves := toMoves(args["moves"])

	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must contain at least one direction"), nil
	}

	var result service.PlayResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/play"), map[string]interface{}{"moves": moves}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPlayResult(sessionID, &result)), nil
}

func (c *Client) handleRoundHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := cast.ToString(args["session_id"])

	params := url.Values{}
	if page := cast.ToInt(args["page"]); page > 0 {
		params.Set("page", cast.ToString(page))
	}
	if limit := cast.ToInt(args["limit"]); limit > 0 {
		params.Set("limit", cast.ToString(limit))
	}
	if order := cast.ToString(args["order"]); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListMissions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var missions []service.MissionInfo
	if err := c.apiCall(ctx, "GET", "/api/missions", nil, &missions); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Missions:\n\n")
	for _, m := range missions {
		fmt.Fprintf(&b, "• %s (%s)\n", m.MissionID, m.Name)
		if m.Description != "" {
			fmt.Fprintf(&b, "  %s\n", m.Description)
		}
		fmt.Fprintf(&b, "  Grid: %dx%d, Geese: %d\n\n", m.Width, m.Height, m.Geese)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := fmt.Sprintf(`Fox and Geese - Complete Instructions

OBJECTIVE:
You control the fox (F). Every goose (G) wants to catch you. You win when
no goose is left alive. You lose when the fox dies.

ROUNDS:
Every round the fox and every goose choose a move at the same time, then
everyone moves together. Nobody can leave the grid; moves into the edge
are clamped.

DIRECTIONS:
  UL U UR
  L  W  R
  DL D DR
U increases y, R increases x. W waits in place. Row 0 is printed last.

COLLISIONS:
Two or more entities on the same cell, or two entities swapping cells,
collide.
• If %d or more geese collide with the fox, the fox dies.
• Otherwise the fox eats every goose in the collision.
• Geese that bump into each other do not all fit: all but one of them
  step back to where they came from. A goose that stood still keeps
  the cell.

BOARD LEGEND:
  .  empty
  F  fox
  G  goose
  *  more than one living entity
  x  only dead entities

PLAYING:
• play is the fastest way: one direction per round, up to %d rounds,
  stopping when the mission ends.
• player_input, tick, finish_moving and end_round step a round by hand,
  the way a graphical view would.

STRATEGY:
• Lone geese are food; groups of three are deadly.
• Waiting (W) lets a chasing goose walk into you.
• Swapping cells with a goose is a collision too.`, engine.GooseMobSize, engine.MaxPlayMoves)

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatActionResult(label string, result *service.ActionResult) string {
	var b strings.Builder
	if result.Accepted {
		fmt.Fprintf(&b, "✓ %s", label)
	} else {
		fmt.Fprintf(&b, "✗ %s rejected", label)
	}
	if result.Step != "" {
		fmt.Fprintf(&b, " (step: %s)", result.Step)
	}
	b.WriteByte('\n')
	if result.Message != "" {
		b.WriteString(result.Message)
		b.WriteByte('\n')
	}
	if len(result.Removed) > 0 {
		fmt.Fprintf(&b, "Removed: %s\n", strings.Join(result.Removed, ", "))
	}
	b.WriteByte('\n')
	b.WriteString(service.FormatStatus(result.Status))
	return b.String()
}

func formatPlayResult(sessionID string, result *service.PlayResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: played %d/%d rounds\n", sessionID, result.RoundsPlayed, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Moves truncated to %d\n", result.Limit)
	}
	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s (%s)\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	}
	for _, round := range result.Rounds {
		b.WriteString(formatRound(round))
	}
	fmt.Fprintf(&b, "Mission status: %s\n\n", result.MissionStatus)
	b.WriteString(service.FormatStatus(result.Status))
	return b.String()
}

func formatRound(round service.RoundRecord) string {
	deaths := []string{}
	for id, r := range round.Results {
		if r.IsDead {
			deaths = append(deaths, id)
		}
	}
	line := fmt.Sprintf("  Round %d: %s -> %s", round.Round, strings.ToUpper(round.PlayerInput), round.MissionStatus)
	if len(deaths) > 0 {
		sort.Strings(deaths)
		line += fmt.Sprintf(" (dead: %s)", strings.Join(deaths, ", "))
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round History (page %d/%d, %d total rounds)\n", history.Page, history.TotalPages, history.TotalRounds)
	for _, round := range history.Rounds {
		b.WriteString(formatRound(round))
	}
	return b.String()
}
