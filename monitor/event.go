package monitor

import (
	"strings"

	"github.com/jrsteele09/go-admin-console/internal/errors"
)

// Event is a user activity signal that resets the inactivity deadline.
type Event string

const (
	EventPointerDown Event = "pointerdown"
	EventPointerMove Event = "pointermove"
	EventKeyPress    Event = "keypress"
	EventScroll      Event = "scroll"
	EventTouchStart  Event = "touchstart"
	EventClick       Event = "click"
)

var eventAliases = map[string]Event{
	"pointerdown": EventPointerDown,
	"mousedown":   EventPointerDown,
	"pointermove": EventPointerMove,
	"mousemove":   EventPointerMove,
	"keypress":    EventKeyPress,
	"scroll":      EventScroll,
	"touchstart":  EventTouchStart,
	"click":       EventClick,
}

// ParseEvent maps a DOM event name to an Event. Mouse events are accepted
// as aliases of their pointer equivalents.
func ParseEvent(name string) (Event, error) {
	ev, ok := eventAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "[ParseEvent] unknown activity event %q", name)
	}
	return ev, nil
}
