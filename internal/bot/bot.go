// Package bot reacts to Telegram updates delivered through the webhook.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daybook/internal/agent"
	"daybook/internal/calendar"
	"daybook/internal/digest"
	"daybook/internal/logicalday"
	"daybook/internal/patch"
	"daybook/internal/store"
	"daybook/internal/telegram"

	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	StartText         = "Открой Mini App и отмечай привычки/оценки дня. Логический день длится до 04:00."
	OpenTrackerButton = "Открыть трекер"
	JournalSavedText  = "Записал в дневник за этот логический день."
	OtherText         = "Не понял. Напиши, что запланировать, перенести или отметить, или просто запиши мысли в дневник."
	CalendarErrorText = "Не получилось обратиться к календарю. Попробуй позже."
)

type Store interface {
	EnsureUser(ctx context.Context, in store.EnsureUserInput) (*store.User, error)
	UpsertDailyLog(ctx context.Context, userID uuid.UUID, date string, p store.DailyLogPatch) (*store.DailyLog, error)
}

// Handler answers bot updates. Event dates and times the user mentions are
// read in Location, the calendar's time zone.
type Handler struct {
	Store      Store
	Messenger  telegram.Messenger
	Calendar   calendar.Client
	Classifier agent.Classifier
	WebAppURL  string
	Location   *time.Location
	Log        zerolog.Logger
	Now        func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) loc() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.UTC
}

// HandleUpdate dispatches one update. Unsupported update kinds are ignored.
func (h *Handler) HandleUpdate(ctx context.Context, u *models.Update) error {
	switch {
	case u.CallbackQuery != nil:
		return h.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.From != nil && u.Message.Text != "":
		if isStart(u.Message.Text) {
			return h.handleStart(ctx, u.Message)
		}
		return h.handleText(ctx, u.Message)
	}
	return nil
}

func isStart(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	cmd := fields[0]
	return cmd == "/start" || strings.HasPrefix(cmd, "/start@")
}

func firstName(m *models.Message) *string {
	if m.From.FirstName == "" {
		return nil
	}
	name := m.From.FirstName
	return &name
}

func (h *Handler) handleStart(ctx context.Context, m *models.Message) error {
	if _, err := h.Store.EnsureUser(ctx, store.EnsureUserInput{TelegramID: m.From.ID, FirstName: firstName(m)}); err != nil {
		return err
	}
	var opts *telegram.SendOptions
	if kb := telegram.WebAppKeyboard(OpenTrackerButton, h.WebAppURL); kb != nil {
		opts = &telegram.SendOptions{Keyboard: kb}
	}
	return h.Messenger.SendMessage(ctx, m.Chat.ID, StartText, opts)
}

func (h *Handler) handleText(ctx context.Context, m *models.Message) error {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return nil
	}
	user, err := h.Store.EnsureUser(ctx, store.EnsureUserInput{TelegramID: m.From.ID, FirstName: firstName(m)})
	if err != nil {
		return err
	}

	today := h.now().In(h.loc()).Format(logicalday.DateFormat)
	c, err := h.Classifier.Classify(ctx, text, today)
	if err != nil {
		h.Log.Warn().Err(err).Int64("telegramId", m.From.ID).Msg("classification failed, saving as journal")
		c = agent.Classification{Intent: agent.IntentJournal}
	}

	var reply string
	switch c.Intent {
	case agent.IntentSchedule:
		reply, err = h.schedule(ctx, c.ScheduleDetails, text, today)
	case agent.IntentGetEvents:
		reply, err = h.listEvents(ctx, detailsDate(c.ScheduleDetails, today))
	case agent.IntentDelete:
		reply, err = h.deleteEvents(ctx, text, detailsDate(c.ScheduleDetails, today))
	case agent.IntentReschedule:
		reply, err = h.reschedule(ctx, text, c.RescheduleDetails, today)
	case agent.IntentMarkDone:
		reply, err = h.markDone(ctx, text, detailsDate(c.ScheduleDetails, today))
	case agent.IntentOther:
		reply = OtherText
	default:
		return h.saveJournal(ctx, m.Chat.ID, user, text)
	}

	if err != nil {
		h.Log.Error().Err(err).Str("intent", string(c.Intent)).Msg("calendar intent failed")
		reply = CalendarErrorText
	}
	return h.Messenger.SendMessage(ctx, m.Chat.ID, reply, nil)
}

func (h *Handler) saveJournal(ctx context.Context, chatID int64, user *store.User, text string) error {
	date := logicalday.Date(h.now(), user.TZOffsetMinutes)
	if _, err := h.Store.UpsertDailyLog(ctx, user.ID, date, store.DailyLogPatch{JournalText: patch.Value(text)}); err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	return h.Messenger.SendMessage(ctx, chatID, JournalSavedText, nil)
}

func detailsDate(d *agent.ScheduleDetails, fallback string) string {
	if d != nil && logicalday.Valid(d.Date) {
		return d.Date
	}
	return fallback
}

// dayEvents lists events of a calendar date in the calendar's zone.
func (h *Handler) dayEvents(ctx context.Context, date string) ([]calendar.Event, error) {
	start, err := time.ParseInLocation(logicalday.DateFormat, date, h.loc())
	if err != nil {
		return nil, err
	}
	return h.Calendar.ListEvents(ctx, start, start.AddDate(0, 0, 1))
}

func (h *Handler) at(date, clock string) (time.Time, bool) {
	if !digest.ValidTime(clock) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(logicalday.DateFormat+" 15:04", date+" "+clock, h.loc())
	return t, err == nil
}

func (h *Handler) schedule(ctx context.Context, d *agent.ScheduleDetails, text, today string) (string, error) {
	ev := calendar.NewEvent{Summary: text, Date: detailsDate(d, today)}
	if d != nil {
		if s := strings.TrimSpace(d.Description); s != "" {
			ev.Summary = s
		}
		if d.StartTime != nil {
			if start, ok := h.at(ev.Date, *d.StartTime); ok {
				ev.Start = start
				if d.EndTime != nil {
					if end, ok := h.at(ev.Date, *d.EndTime); ok {
						ev.End = end
					}
				}
			}
		}
	}

	created, err := h.Calendar.InsertEvent(ctx, ev)
	if err != nil {
		return "", err
	}
	when := ev.Date
	if !ev.Start.IsZero() {
		when += " " + ev.Start.Format("15:04")
	}
	return fmt.Sprintf("📅 Добавил: %s (%s)", created.Summary, when), nil
}

func (h *Handler) listEvents(ctx context.Context, date string) (string, error) {
	events, err := h.dayEvents(ctx, date)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return fmt.Sprintf("На %s задач нет.", date), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Задачи на %s:", date)
	for _, e := range events {
		b.WriteString("\n• ")
		if !e.AllDay() {
			b.WriteString(e.Start.In(h.loc()).Format("15:04"))
			b.WriteByte(' ')
		}
		b.WriteString(e.Summary)
	}
	return b.String(), nil
}

func (h *Handler) deleteEvents(ctx context.Context, query, date string) (string, error) {
	events, err := h.dayEvents(ctx, date)
	if err != nil {
		return "", err
	}
	ids := h.Classifier.PickEventsToDelete(ctx, query, events)
	known := make(map[string]string, len(events))
	for _, e := range events {
		known[e.ID] = e.Summary
	}

	var removed []string
	for _, id := range ids {
		summary, ok := known[id]
		if !ok {
			continue
		}
		if err := h.Calendar.DeleteEvent(ctx, id); err != nil && !errors.Is(err, calendar.ErrNotFound) {
			return "", err
		}
		removed = append(removed, summary)
	}
	if len(removed) == 0 {
		return "Не нашёл подходящих задач для удаления.", nil
	}
	return "🗑 Удалил: " + strings.Join(removed, ", "), nil
}

func (h *Handler) reschedule(ctx context.Context, query string, d *agent.RescheduleDetails, today string) (string, error) {
	if d == nil || !logicalday.Valid(d.TargetDate) {
		return "Не понял, на какую дату перенести.", nil
	}
	search := d.SearchDate
	if !logicalday.Valid(search) {
		search = today
	}
	events, err := h.dayEvents(ctx, search)
	if err != nil {
		return "", err
	}
	id := h.Classifier.PickEventToModify(ctx, query, events)
	var target *calendar.Event
	for i := range events {
		if events[i].ID == id {
			target = &events[i]
		}
	}
	if target == nil {
		return "Не нашёл такую задачу.", nil
	}

	var p calendar.EventPatch
	clock := ""
	if d.TargetTime != nil {
		clock = *d.TargetTime
	} else if !target.AllDay() {
		clock = target.Start.In(h.loc()).Format("15:04")
	}
	if start, ok := h.at(d.TargetDate, clock); ok {
		p.Start = &start
		if !target.AllDay() && target.End.After(target.Start) {
			end := start.Add(target.End.Sub(target.Start))
			p.End = &end
		}
	} else {
		p.Date = &d.TargetDate
	}

	if _, err := h.Calendar.PatchEvent(ctx, target.ID, p); err != nil {
		return "", err
	}
	when := d.TargetDate
	if p.Start != nil {
		when += " " + p.Start.Format("15:04")
	}
	return fmt.Sprintf("🔁 Перенёс «%s» на %s", target.Summary, when), nil
}

func (h *Handler) markDone(ctx context.Context, query, date string) (string, error) {
	events, err := h.dayEvents(ctx, date)
	if err != nil {
		return "", err
	}
	id := h.Classifier.PickEventToModify(ctx, query, events)
	for _, e := range events {
		if e.ID != id {
			continue
		}
		if e.Done() {
			return fmt.Sprintf("Уже отмечено: %s", e.Summary), nil
		}
		summary := markDone(e.Summary)
		if _, err := h.Calendar.PatchEvent(ctx, e.ID, calendar.EventPatch{Summary: &summary}); err != nil {
			return "", err
		}
		return "Отметил: " + summary, nil
	}
	return "Не нашёл такую задачу.", nil
}

func markDone(summary string) string { return calendar.DonePrefix + " " + summary }

func unmarkDone(summary string) string {
	return strings.TrimSpace(strings.TrimPrefix(summary, calendar.DonePrefix))
}

func (h *Handler) handleCallback(ctx context.Context, q *models.CallbackQuery) error {
	id, ok := strings.CutPrefix(q.Data, digest.ToggleEventPrefix)
	if !ok || id == "" {
		return h.Messenger.AnswerCallback(ctx, q.ID, "")
	}

	ev, err := h.Calendar.GetEvent(ctx, id)
	if err != nil {
		h.Log.Error().Err(err).Str("eventId", id).Msg("toggle event: get")
		return h.Messenger.AnswerCallback(ctx, q.ID, "Задача не найдена")
	}

	summary, answer := markDone(ev.Summary), "Выполнено ✅"
	if ev.Done() {
		summary, answer = unmarkDone(ev.Summary), "Отметка снята"
	}
	if _, err := h.Calendar.PatchEvent(ctx, id, calendar.EventPatch{Summary: &summary}); err != nil {
		h.Log.Error().Err(err).Str("eventId", id).Msg("toggle event: patch")
		return h.Messenger.AnswerCallback(ctx, q.ID, "Не получилось обновить задачу")
	}
	return h.Messenger.AnswerCallback(ctx, q.ID, answer)
}
