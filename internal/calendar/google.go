package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Google talks to Google Calendar with a service account.
type Google struct {
	svc        *calendar.Service
	calendarID string
	timeZone   string
}

func NewGoogle(ctx context.Context, credentialsJSON, calendarID, timeZone string) (*Google, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsJSON([]byte(credentialsJSON)),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &Google{svc: svc, calendarID: calendarID, timeZone: timeZone}, nil
}

func (g *Google) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error) {
	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(timeMin.UTC().Format(time.RFC3339)).
		TimeMax(timeMax.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]Event, 0, len(res.Items))
	for _, it := range res.Items {
		if it.Id == "" {
			continue
		}
		out = append(out, fromAPI(it))
	}
	return out, nil
}

func (g *Google) GetEvent(ctx context.Context, id string) (*Event, error) {
	it, err := g.svc.Events.Get(g.calendarID, id).Context(ctx).Do()
	if err != nil {
		return nil, mapErr(err)
	}
	ev := fromAPI(it)
	return &ev, nil
}

func (g *Google) InsertEvent(ctx context.Context, in NewEvent) (*Event, error) {
	body := &calendar.Event{Summary: in.Summary}
	if in.Start.IsZero() {
		body.Start = &calendar.EventDateTime{Date: in.Date}
		body.End = &calendar.EventDateTime{Date: in.Date}
	} else {
		end := in.End
		if end.IsZero() || !end.After(in.Start) {
			end = in.Start.Add(time.Hour)
		}
		body.Start = g.dateTime(in.Start)
		body.End = g.dateTime(end)
	}

	it, err := g.svc.Events.Insert(g.calendarID, body).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	ev := fromAPI(it)
	return &ev, nil
}

func (g *Google) PatchEvent(ctx context.Context, id string, p EventPatch) (*Event, error) {
	body := &calendar.Event{}
	if p.Summary != nil {
		body.Summary = *p.Summary
	}
	switch {
	case p.Start != nil:
		body.Start = g.dateTime(*p.Start)
		end := p.Start.Add(time.Hour)
		if p.End != nil && p.End.After(*p.Start) {
			end = *p.End
		}
		body.End = g.dateTime(end)
	case p.Date != nil:
		body.Start = &calendar.EventDateTime{Date: *p.Date}
		body.End = &calendar.EventDateTime{Date: *p.Date}
	}

	it, err := g.svc.Events.Patch(g.calendarID, id, body).Context(ctx).Do()
	if err != nil {
		return nil, mapErr(err)
	}
	ev := fromAPI(it)
	return &ev, nil
}

func (g *Google) DeleteEvent(ctx context.Context, id string) error {
	return mapErr(g.svc.Events.Delete(g.calendarID, id).Context(ctx).Do())
}

func (g *Google) dateTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: g.timeZone}
}

func fromAPI(it *calendar.Event) Event {
	ev := Event{ID: it.Id, Summary: it.Summary}
	if it.Start != nil {
		if it.Start.DateTime != "" {
			ev.Start, _ = time.Parse(time.RFC3339, it.Start.DateTime)
		} else {
			ev.Date = it.Start.Date
		}
	}
	if it.End != nil && it.End.DateTime != "" {
		ev.End, _ = time.Parse(time.RFC3339, it.End.DateTime)
	}
	return ev
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
		return ErrNotFound
	}
	return err
}
