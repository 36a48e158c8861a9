// Package presenter wraps a round controller for views that animate.
//
// A Presenter walks a round through small observable steps: the
// mission-start banner, the move computation, the entity animation and
// the mission-complete banner. Each banner stage goes not started, in
// progress, complete, one step per Update call. Views learn about each
// step through a Collaborator and report back with
// SetEntitiesFinishedMoving when their animation is done.
package presenter
