package digest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"daybook/internal/calendar"
	"daybook/internal/logicalday"
	"daybook/internal/telegram"
)

// ToggleEventPrefix prefixes callback data of digest buttons.
const ToggleEventPrefix = "toggle_event:"

const untitled = "Без названия"

// Message is a rendered digest ready to send.
type Message struct {
	Text    string
	Options *telegram.SendOptions
}

// Builder renders the daily plan from the calendar.
type Builder struct {
	Calendar   calendar.Client
	TextLimit  int
	TruncateTo int
}

// Build lists the events of the user's local calendar day at now and renders
// one toggle button per event.
func (b *Builder) Build(ctx context.Context, now time.Time, tzOffsetMinutes int) (Message, error) {
	from, to := calendar.DayBounds(now, tzOffsetMinutes)
	events, err := b.Calendar.ListEvents(ctx, from, to)
	if err != nil {
		return Message{}, fmt.Errorf("list events: %w", err)
	}

	local := logicalday.LocalTime(now, tzOffsetMinutes)
	if len(events) == 0 {
		return Message{Text: fmt.Sprintf("📅 На сегодня (%s) задач нет! Отдыхай.", local.Format("2006-01-02"))}, nil
	}

	kb := telegram.Keyboard{}
	for _, e := range order(events) {
		if e.ID == "" {
			continue
		}
		kb = append(kb, []telegram.Button{{
			Text:         b.truncate(buttonText(e, tzOffsetMinutes)),
			CallbackData: ToggleEventPrefix + e.ID,
		}})
	}

	text := fmt.Sprintf("📅 *План на сегодня* (%s)\n👇 Нажимай на кнопки, чтобы отметить выполненным.", local.Format("02.01.2006"))
	return Message{
		Text:    text,
		Options: &telegram.SendOptions{ParseMode: telegram.ParseModeMarkdown, Keyboard: kb},
	}, nil
}

// order puts timed events first by start, then all-day events in input order.
func order(events []calendar.Event) []calendar.Event {
	var timed, allDay []calendar.Event
	for _, e := range events {
		if e.AllDay() {
			allDay = append(allDay, e)
		} else {
			timed = append(timed, e)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool { return timed[i].Start.Before(timed[j].Start) })
	return append(timed, allDay...)
}

func buttonText(e calendar.Event, tzOffsetMinutes int) string {
	title := e.Summary
	if title == "" {
		title = untitled
	}
	if e.Done() {
		return title
	}
	if !e.AllDay() {
		at := logicalday.LocalTime(e.Start, tzOffsetMinutes)
		title = at.Format("15:04") + " " + title
	}
	return "⬜ " + title
}

func (b *Builder) truncate(s string) string {
	r := []rune(s)
	if b.TextLimit <= 0 || len(r) <= b.TextLimit {
		return s
	}
	n := b.TruncateTo
	if n <= 0 || n > len(r) {
		n = len(r)
	}
	return string(r[:n]) + "..."
}
