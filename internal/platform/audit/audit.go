// Package audit defines the lifecycle event trail. Services emit events with
// fire-and-forget semantics: a broker outage must never fail a donation
// operation.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// EventKind names an auditable action.
type EventKind string

const (
	EventUserRegistered       EventKind = "user.registered"
	EventUserLoggedIn         EventKind = "user.logged_in"
	EventUserLoggedOut        EventKind = "user.logged_out"
	EventUserStatusChanged    EventKind = "user.status_changed"
	EventUserRoleChanged      EventKind = "user.role_changed"
	EventRequestCreated       EventKind = "request.created"
	EventRequestEdited        EventKind = "request.edited"
	EventDonationClaimed      EventKind = "request.donation_claimed"
	EventRequestStatusChanged EventKind = "request.status_changed"
	EventRequestDeleted       EventKind = "request.deleted"
	EventFundingRecorded      EventKind = "funding.recorded"
)

// Event is a single audit trail entry.
type Event struct {
	Kind  EventKind      `json:"kind"`
	At    time.Time      `json:"at"`
	Actor string         `json:"actor,omitempty"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Publisher emits audit events. Implementations must not block the business
// operation on delivery.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Log records an event on the logger and forwards it to the publisher when
// one is configured. Attrs come in slog key-value form.
func Log(ctx context.Context, logger *slog.Logger, publisher Publisher, kind EventKind, actor string, attrs ...any) {
	if logger != nil {
		logAttrs := append([]any{"event", string(kind), "actor", actor}, attrs...)
		logger.InfoContext(ctx, "audit", logAttrs...)
	}
	if publisher == nil {
		return
	}
	event := Event{Kind: kind, At: time.Now().UTC(), Actor: actor, Attrs: map[string]any{}}
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		event.Attrs[key] = attrs[i+1]
	}
	publisher.Publish(ctx, event)
}
