package sse

import "time"

// ProviderNotifier is the interface services use to emit provider change events.
type ProviderNotifier interface {
	NotifyProviderChanged(event EventType, providerID int64, value string)
}

// HubNotifier implements ProviderNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
	now func() time.Time
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, now: time.Now}
}

func (n *HubNotifier) NotifyProviderChanged(event EventType, providerID int64, value string) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&ProviderEvent{
		Event:      event,
		ProviderID: providerID,
		Value:      value,
		Timestamp:  n.now().UTC(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) NotifyProviderChanged(EventType, int64, string) {}
