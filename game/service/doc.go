// Package service provides the business logic layer for Fox and Geese.
//
// The service package implements:
//   - Multi-session mission management
//   - Mission definition loading and saving
//   - Round stepping (input, tick, finish-moving, end-round) and batch play
//   - Round history tracking
//   - Text rendering of the board for terminals and MCP clients
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// MissionManager loads, lists and saves mission definitions.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine. Each session owns a round controller and a presenter; every
// operation on a session runs behind the service mutex.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	missionMgr, _ := config.NewManager("missions")
//	gameService := service.NewGameService(sessionMgr, missionMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Play(ctx, info.ID, []string{"ul", "w", "r"})
package service
