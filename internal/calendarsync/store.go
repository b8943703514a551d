// Package calendarsync upserts shift records into a remote calendar.
package calendarsync

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// RemoteEvent is the calendar event shape the syncer works with
type RemoteEvent struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// EventStore is a remote calendar
type EventStore interface {
	// ListDay returns the events overlapping [start, end)
	ListDay(ctx context.Context, start, end time.Time) ([]RemoteEvent, error)
	Insert(ctx context.Context, ev RemoteEvent) (RemoteEvent, error)
	Update(ctx context.Context, ev RemoteEvent) (RemoteEvent, error)
}

// GoogleStore is an EventStore over the Google Calendar v3 API
type GoogleStore struct {
	service    *gcal.Service
	calendarID string
	timeZone   string
}

// NewGoogleStore authenticates with a user access token. Extra client
// options are applied after the token source.
func NewGoogleStore(ctx context.Context, accessToken, calendarID string, loc *time.Location, opts ...option.ClientOption) (*GoogleStore, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("google access token is required")
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	if loc == nil {
		loc = time.UTC
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	clientOpts := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	service, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleStore{service: service, calendarID: calendarID, timeZone: loc.String()}, nil
}

// ListDay implements EventStore
func (s *GoogleStore) ListDay(ctx context.Context, start, end time.Time) ([]RemoteEvent, error) {
	res, err := s.service.Events.List(s.calendarID).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]RemoteEvent, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, fromGoogle(item))
	}
	return events, nil
}

// Insert implements EventStore
func (s *GoogleStore) Insert(ctx context.Context, ev RemoteEvent) (RemoteEvent, error) {
	created, err := s.service.Events.Insert(s.calendarID, s.toGoogle(ev)).Context(ctx).Do()
	if err != nil {
		return RemoteEvent{}, fmt.Errorf("insert event: %w", err)
	}
	return fromGoogle(created), nil
}

// Update implements EventStore
func (s *GoogleStore) Update(ctx context.Context, ev RemoteEvent) (RemoteEvent, error) {
	updated, err := s.service.Events.Update(s.calendarID, ev.ID, s.toGoogle(ev)).Context(ctx).Do()
	if err != nil {
		return RemoteEvent{}, fmt.Errorf("update event %s: %w", ev.ID, err)
	}
	return fromGoogle(updated), nil
}

func (s *GoogleStore) toGoogle(ev RemoteEvent) *gcal.Event {
	return &gcal.Event{
		Id:          ev.ID,
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: s.timeZone},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: s.timeZone},
	}
}

func fromGoogle(item *gcal.Event) RemoteEvent {
	ev := RemoteEvent{ID: item.Id, Summary: item.Summary, Description: item.Description}
	if item.Start != nil {
		ev.Start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
	}
	if item.End != nil {
		ev.End, _ = time.Parse(time.RFC3339, item.End.DateTime)
	}
	return ev
}
