// Package websocket pushes Fox and Geese session updates to connected views.
//
// A central Hub owns every connection, grouped by session ID. Clients attach
// with GET /ws?session=<id> and only receive messages for that session.
// The hub never reads commands from clients; moves go through the REST API
// or MCP, and the hub reports what happened.
//
// Message Protocol:
//
//	{"session_id": "ab12", "event": "status_update", "status": {...}}
//	{"session_id": "ab12", "event": "mission_start", "data": {"stage": "in progress"}}
//	{"session_id": "ab12", "event": "animate_entities", "data": {"fox": {"x": 2, "y": 0, "is_dead": false}}}
//	{"session_id": "ab12", "event": "mission_complete", "data": {"stage": "complete", "message_id": "win"}}
//
// Frames are JSON text by default. With encoding=msgpack the same messages
// are sent as msgpack binary frames keyed by the JSON field names.
//
// Presenter Integration:
//
// Hub.Collaborator returns a presenter.Collaborator per session. Handing it
// to session.WithCollaborators turns presenter stage changes into
// mission_start, animate_entities and mission_complete events. Broadcasts
// never block: when the queue is full the message is dropped and logged.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), false)
//	})
package websocket
