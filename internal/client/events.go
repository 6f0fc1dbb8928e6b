package client

import "sync"

type EventType string

const (
	EventInitialized      EventType = "initialized"
	EventArticlesUpdated  EventType = "articlesUpdated"
	EventMagazinesUpdated EventType = "magazinesUpdated"
	EventSettingsUpdated  EventType = "settingsUpdated"
	EventFavoritesUpdated EventType = "favoritesUpdated"
	EventSyncComplete     EventType = "syncComplete"
)

// Event is published by the DataManager on state changes. Success is only
// meaningful for EventSyncComplete.
type Event struct {
	Type    EventType
	Success bool
}

// bus is a minimal in-process publish/subscribe: an observer list owned by
// the DataManager, decoupled from any rendering surface.
type bus struct {
	mu   sync.Mutex
	subs []func(Event)
}

func (b *bus) subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *bus) publish(ev Event) {
	b.mu.Lock()
	subs := make([]func(Event), len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
