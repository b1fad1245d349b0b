package handlers

import (
	"time"

	"photobatch/internal/batch"
	"photobatch/internal/naming"
	"photobatch/internal/session"
	"photobatch/internal/startup"
)

// Handlers carries the wired collaborators for the HTTP surface.
type Handlers struct {
	sess      *session.Session
	orch      *batch.Orchestrator
	registry  *naming.Registry
	startedAt time.Time
}

// New wires the handler set.
func New(sess *session.Session, orch *batch.Orchestrator, registry *naming.Registry, _ *startup.Config) *Handlers {
	return &Handlers{
		sess:      sess,
		orch:      orch,
		registry:  registry,
		startedAt: time.Now(),
	}
}
