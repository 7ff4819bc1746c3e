package service

import "github.com/wonderless/Test-autoestima-sub000/internal/model"

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToAdmins(event model.LiveEvent)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToAdmins(model.LiveEvent) {}
