// Package api provides the HTTP REST API for Fox and Geese.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions               - Create a session ({"mission_id": "..."}, empty for the default)
//   - GET    /api/sessions               - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}          - Session info with its status
//   - DELETE /api/sessions/{id}          - Delete a session
//
// Rounds:
//   - GET  /api/sessions/{id}/status        - Full status snapshot, including a text board
//   - POST /api/sessions/{id}/input         - Player direction ({"direction": "ul"})
//   - POST /api/sessions/{id}/tick          - One presenter step
//   - POST /api/sessions/{id}/finish-moving - Signal that the view finished animating
//   - POST /api/sessions/{id}/end-round     - Start the next round
//   - POST /api/sessions/{id}/play          - Whole rounds from a move list ({"moves": ["u", "w"]})
//   - GET  /api/sessions/{id}/history       - Round history (?page=&limit=&order=)
//
// Missions:
//   - GET  /api/missions       - Available missions
//   - GET  /api/missions/{id}  - One mission definition
//   - POST /api/missions       - Save a mission definition (JSON body with an id)
//
// Other:
//   - GET /healthz                               - Liveness
//   - GET /ws?session=<id>[&encoding=msgpack]    - WebSocket updates for a session
//
// Errors are returned as {"error": "..."}: unknown sessions and missions map
// to 404, bad directions and invalid missions to 400, anything else to 500.
// Every response carries an X-Request-ID header; an incoming one is kept.
//
// Mutating round operations push a status_update to the session's WebSocket
// clients.
package api
