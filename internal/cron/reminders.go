package cron

import (
	"context"
	"fmt"
	"time"

	"daybook/internal/batch"
	"daybook/internal/logicalday"
	"daybook/internal/reminder"
	"daybook/internal/store"
)

type YesterdaySummary struct {
	Sent        int `json:"sent"`
	Failed      int `json:"failed"`
	MissingData int `json:"missingData"`
}

// RemindYesterday nudges every user about the previous logical day, with a
// stronger message when that day has no data.
func (o *Orchestrator) RemindYesterday(ctx context.Context, now time.Time) (YesterdaySummary, error) {
	defer o.observe(JobRemind, time.Now())

	users, err := o.loadUsers(ctx)
	if err != nil {
		return YesterdaySummary{}, err
	}

	results := batch.Dispatch(ctx, users, o.Cron.ProcessBatchSize, func(ctx context.Context, u store.User) (bool, error) {
		yesterday := logicalday.AddDays(logicalday.Date(now, u.TZOffsetMinutes), -1)
		has, err := reminder.HasData(ctx, o.Store, u.ID, yesterday)
		if err != nil {
			return false, err
		}
		if err := o.send(ctx, u.TelegramID, reminder.YesterdayText(has, yesterday), reminder.FillDayButton); err != nil {
			return false, fmt.Errorf("send to %d: %w", u.TelegramID, err)
		}
		return has, nil
	})

	var s YesterdaySummary
	for i, r := range results {
		if !r.OK() {
			o.Log.Warn().Err(r.Err).Str("userId", users[i].ID.String()).Msg("yesterday reminder failed")
			o.Metrics.IncCronAction(JobRemind, "failed")
			s.Failed++
			continue
		}
		s.Sent++
		o.Metrics.IncCronAction(JobRemind, "sent")
		if !r.Value {
			s.MissingData++
		}
	}
	return s, nil
}

type MissingSummary struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// RemindMissing sends each user one message listing the days of the lookback
// window that have no data. Users without gaps get nothing.
func (o *Orchestrator) RemindMissing(ctx context.Context, now time.Time) (MissingSummary, error) {
	defer o.observe(JobRemindMissing, time.Now())

	users, err := o.loadUsers(ctx)
	if err != nil {
		return MissingSummary{}, err
	}

	results := batch.Dispatch(ctx, users, o.Cron.ProcessBatchSize, func(ctx context.Context, u store.User) (bool, error) {
		today := logicalday.Date(now, u.TZOffsetMinutes)
		days, err := reminder.FindMissingDays(ctx, o.Store, u.ID, o.Cron.MissingLookbackDays, today)
		if err != nil {
			return false, err
		}
		if len(days) == 0 {
			return false, nil
		}
		if err := o.send(ctx, u.TelegramID, reminder.MissingDaysText(days), reminder.FillMissingButton); err != nil {
			return false, fmt.Errorf("send to %d: %w", u.TelegramID, err)
		}
		return true, nil
	})

	s := MissingSummary{Total: len(results)}
	for i, r := range results {
		switch {
		case !r.OK():
			o.Log.Warn().Err(r.Err).Str("userId", users[i].ID.String()).Msg("missing days reminder failed")
			o.Metrics.IncCronAction(JobRemindMissing, "failed")
			s.Failed++
		case r.Value:
			o.Metrics.IncCronAction(JobRemindMissing, "sent")
			s.Sent++
		}
	}
	return s, nil
}

type BirthdayResult struct {
	Sent  bool   `json:"sent"`
	Name  string `json:"name"`
	User  string `json:"user,omitempty"`
	Error string `json:"error,omitempty"`
}

type BirthdaySummary struct {
	Processed int              `json:"processed"`
	Sent      int              `json:"sent"`
	Details   []BirthdayResult `json:"details"`
}

// Birthdays congratulates owners of every birthday falling on today's month
// and day in the configured zone.
func (o *Orchestrator) Birthdays(ctx context.Context, now time.Time) (BirthdaySummary, error) {
	defer o.observe(JobBirthdays, time.Now())

	rows, err := o.Store.ListAllBirthdays(ctx)
	if err != nil {
		return BirthdaySummary{}, fmt.Errorf("load birthdays: %w", err)
	}

	loc := o.Location
	if loc == nil {
		loc = time.UTC
	}
	today := now.In(loc).Format("01-02")

	var matches []store.BirthdayOwner
	for _, b := range rows {
		if len(b.Date) == len(logicalday.DateFormat) && b.Date[5:] == today {
			matches = append(matches, b)
		}
	}
	o.Log.Info().Str("monthDay", today).Int("matches", len(matches)).Msg("checking birthdays")

	var owned []store.BirthdayOwner
	for _, b := range matches {
		if b.TelegramID != 0 {
			owned = append(owned, b)
		}
	}

	results := batch.Dispatch(ctx, owned, o.Cron.ProcessBatchSize, func(ctx context.Context, b store.BirthdayOwner) (struct{}, error) {
		return struct{}{}, o.Messenger.SendMessage(ctx, b.TelegramID, reminder.BirthdayText(b.Name), nil)
	})

	s := BirthdaySummary{Processed: len(matches), Details: make([]BirthdayResult, 0, len(owned))}
	for i, r := range results {
		b := owned[i]
		if !r.OK() {
			o.Log.Warn().Err(r.Err).Int64("telegramId", b.TelegramID).Msg("birthday message not delivered")
			o.Metrics.IncCronAction(JobBirthdays, "failed")
			s.Details = append(s.Details, BirthdayResult{Name: b.Name, Error: r.Err.Error()})
			continue
		}
		o.Metrics.IncCronAction(JobBirthdays, "sent")
		s.Sent++
		s.Details = append(s.Details, BirthdayResult{Sent: true, Name: b.Name, User: b.UserID.String()})
	}
	return s, nil
}
