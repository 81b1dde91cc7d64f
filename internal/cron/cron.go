// Package cron runs the externally triggered notification ticks. Every tick
// is stateless: it loads its inputs once, fans out over users in bounded
// batches and reports a per-user summary.
package cron

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/batch"
	"daybook/internal/config"
	"daybook/internal/digest"
	"daybook/internal/logicalday"
	"daybook/internal/metrics"
	"daybook/internal/reminder"
	"daybook/internal/store"
	"daybook/internal/telegram"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Job names, used as metric labels and CLI commands.
const (
	JobHourly        = "hourly"
	JobRemind        = "remind"
	JobRemindMissing = "remind-missing"
	JobBirthdays     = "birthdays"
)

// Hourly actions reported per user.
const (
	ActionDigestSent         = "digest_sent"
	ActionDigestHourFallback = "digest_sent_hour_fallback"
	ActionDigestFailed       = "digest_failed"
	ActionReminderSent       = "reminder_sent"
	ActionReminderSkipped    = "reminder_skipped"
)

type Store interface {
	reminder.DateSource
	ListUsers(ctx context.Context, limit int) ([]store.User, error)
	ListAllBirthdays(ctx context.Context) ([]store.BirthdayOwner, error)
}

type DigestBuilder interface {
	Build(ctx context.Context, now time.Time, tzOffsetMinutes int) (digest.Message, error)
}

// Orchestrator runs the cron jobs. Location decides "today" for birthdays;
// every other job works in each user's own offset.
type Orchestrator struct {
	Store     Store
	Messenger telegram.Messenger
	Digest    DigestBuilder
	Metrics   metrics.Provider
	Log       zerolog.Logger

	Cron      config.Cron
	WebAppURL string
	Location  *time.Location
}

// UserResult is one entry of the hourly summary.
type UserResult struct {
	UserID  uuid.UUID `json:"userId"`
	Actions []string  `json:"actions"`
	Error   string    `json:"error,omitempty"`
}

func (o *Orchestrator) loadUsers(ctx context.Context) ([]store.User, error) {
	users, err := o.Store.ListUsers(ctx, o.Cron.UsersBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func (o *Orchestrator) observe(job string, start time.Time) {
	o.Metrics.ObserveCronDuration(job, time.Since(start))
}

// Hourly sends digests to users whose local hour matches their digest time
// and end-of-day reminders to users at local midnight.
func (o *Orchestrator) Hourly(ctx context.Context, now time.Time) ([]UserResult, error) {
	defer o.observe(JobHourly, time.Now())

	users, err := o.loadUsers(ctx)
	if err != nil {
		return nil, err
	}

	results := batch.Dispatch(ctx, users, o.Cron.ProcessBatchSize, func(ctx context.Context, u store.User) (UserResult, error) {
		return o.hourlyUser(ctx, now, u)
	})

	summary := make([]UserResult, len(users))
	for i, r := range results {
		if !r.OK() {
			o.Log.Error().Err(r.Err).Str("userId", users[i].ID.String()).Msg("hourly tick failed for user")
			summary[i] = UserResult{UserID: users[i].ID, Actions: []string{}, Error: r.Err.Error()}
			continue
		}
		summary[i] = r.Value
		for _, a := range r.Value.Actions {
			o.Metrics.IncCronAction(JobHourly, a)
		}
	}
	return summary, nil
}

func (o *Orchestrator) hourlyUser(ctx context.Context, now time.Time, u store.User) (UserResult, error) {
	res := UserResult{UserID: u.ID, Actions: []string{}}
	local := logicalday.LocalTime(now, u.TZOffsetMinutes)

	digestTime := ""
	if u.DigestTime != nil {
		digestTime = *u.DigestTime
	}
	d := digest.Match(local.Hour(), local.Minute(), digestTime, o.Cron.DefaultDigestTime, o.Cron.MinuteTolerance)
	if d.Fire {
		switch {
		case !o.sendDigest(ctx, now, u):
			res.Actions = append(res.Actions, ActionDigestFailed)
		case d.MatchedExactly:
			res.Actions = append(res.Actions, ActionDigestSent)
		default:
			res.Actions = append(res.Actions, ActionDigestHourFallback)
		}
	}

	if local.Hour() == 0 {
		// the calendar day that just ended, not the logical day
		date := logicalday.AddDays(logicalday.CalendarDate(now, u.TZOffsetMinutes), -1)
		sent, err := o.sendEndOfDay(ctx, u, date)
		switch {
		case err != nil:
			o.Log.Warn().Err(err).Str("userId", u.ID.String()).Msg("end of day reminder check failed")
			res.Actions = append(res.Actions, ActionReminderSkipped)
			res.Error = err.Error()
		case sent:
			res.Actions = append(res.Actions, ActionReminderSent)
		default:
			res.Actions = append(res.Actions, ActionReminderSkipped)
		}
	}
	return res, nil
}

func (o *Orchestrator) sendDigest(ctx context.Context, now time.Time, u store.User) bool {
	msg, err := o.Digest.Build(ctx, now, u.TZOffsetMinutes)
	if err == nil {
		err = o.Messenger.SendMessage(ctx, u.TelegramID, msg.Text, msg.Options)
	}
	if err != nil {
		o.Log.Warn().Err(err).Int64("telegramId", u.TelegramID).Msg("digest not delivered")
		return false
	}
	return true
}

// sendEndOfDay reminds about date when it has no data. It reports false when
// the day already has data or the send failed.
func (o *Orchestrator) sendEndOfDay(ctx context.Context, u store.User, date string) (bool, error) {
	has, err := reminder.HasData(ctx, o.Store, u.ID, date)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}
	if err := o.send(ctx, u.TelegramID, reminder.EndOfDayText(date), reminder.FillDayButton); err != nil {
		o.Log.Warn().Err(err).Int64("telegramId", u.TelegramID).Msg("end of day reminder not delivered")
		return false, nil
	}
	return true, nil
}

func (o *Orchestrator) send(ctx context.Context, chatID int64, text, button string) error {
	var opts *telegram.SendOptions
	if kb := telegram.WebAppKeyboard(button, o.WebAppURL); kb != nil {
		opts = &telegram.SendOptions{Keyboard: kb}
	}
	return o.Messenger.SendMessage(ctx, chatID, text, opts)
}
