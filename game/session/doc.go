// Package session keeps the live Fox and Geese missions of a server.
//
// Manager implements service.SessionManager. Each session owns its own
// mission, round controller and presenter, so sessions never share state.
// Session IDs are case-insensitive; an empty ID on Create yields a random
// 4-character hex ID.
//
// A CollaboratorFactory can be supplied to receive the presenter's stage
// notifications per session, which is how the WebSocket hub learns about
// mission start, entity animation and mission complete events.
//
//	hub := websocket.NewHub(logger)
//	manager := session.NewManager(
//		session.WithLogger(logger),
//		session.WithCollaborators(hub.Collaborator),
//	)
//
// Sessions are in-memory only. CleanupExpiredSessions drops the ones that
// have not been touched for a while.
package session
