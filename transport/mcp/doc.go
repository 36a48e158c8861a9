// Package mcp exposes Fox and Geese to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API of a running server, and the JSON answer is turned back into
// plain text with the same board rendering the API returns.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - session_status
//   - play: whole rounds from a move list
//   - player_input, tick, finish_moving, end_round: one presenter step each
//   - round_history
//   - list_missions
//   - game_instructions
//
// Transport Modes:
//
//	// Stdio
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP, one JSON-RPC message per POST
//	mux.Handle("/mcp", client.HTTPHandler())
package mcp
