package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"daybook/internal/calendar"
	"daybook/internal/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCalendar struct {
	calendar.Disabled
	events         []calendar.Event
	err            error
	gotMin, gotMax time.Time
}

func (f *fakeCalendar) ListEvents(_ context.Context, timeMin, timeMax time.Time) ([]calendar.Event, error) {
	f.gotMin, f.gotMax = timeMin, timeMax
	return f.events, f.err
}

func TestBuilder_OrderAndLabels(t *testing.T) {
	cal := &fakeCalendar{events: []calendar.Event{
		{ID: "allday", Summary: "Pay bills", Date: "2024-03-10"},
		{ID: "late", Summary: "Read", Start: time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC)},
		{ID: "done", Summary: "✅ Gym", Start: time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)},
		{ID: "", Summary: "no id", Start: time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC)},
		{ID: "early", Summary: "Standup", Start: time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)},
	}}
	b := &Builder{Calendar: cal, TextLimit: 40, TruncateTo: 37}

	now := time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)
	msg, err := b.Build(context.Background(), now, 180)
	require.NoError(t, err)

	assert.Equal(t, "📅 *План на сегодня* (10.03.2024)\n👇 Нажимай на кнопки, чтобы отметить выполненным.", msg.Text)
	require.NotNil(t, msg.Options)
	assert.Equal(t, telegram.ParseModeMarkdown, msg.Options.ParseMode)

	want := telegram.Keyboard{
		{{Text: "✅ Gym", CallbackData: "toggle_event:done"}},
		{{Text: "⬜ 10:30 Standup", CallbackData: "toggle_event:early"}},
		{{Text: "⬜ 20:00 Read", CallbackData: "toggle_event:late"}},
		{{Text: "⬜ Pay bills", CallbackData: "toggle_event:allday"}},
	}
	assert.Equal(t, want, msg.Options.Keyboard)

	assert.Equal(t, time.Date(2024, 3, 9, 21, 0, 0, 0, time.UTC), cal.gotMin)
	assert.Equal(t, time.Date(2024, 3, 10, 21, 0, 0, 0, time.UTC), cal.gotMax)
}

func TestBuilder_Truncates(t *testing.T) {
	long := strings.Repeat("я", 50)
	cal := &fakeCalendar{events: []calendar.Event{{ID: "x", Summary: long, Date: "2024-03-10"}}}
	b := &Builder{Calendar: cal, TextLimit: 40, TruncateTo: 37}

	msg, err := b.Build(context.Background(), time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC), 0)
	require.NoError(t, err)

	text := msg.Options.Keyboard[0][0].Text
	assert.Equal(t, "⬜ "+strings.Repeat("я", 35)+"...", text)
	assert.Len(t, []rune(text), 40)
}

func TestBuilder_NoEvents(t *testing.T) {
	b := &Builder{Calendar: &fakeCalendar{}, TextLimit: 40, TruncateTo: 37}

	msg, err := b.Build(context.Background(), time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC), 180)
	require.NoError(t, err)
	assert.Equal(t, "📅 На сегодня (2024-03-11) задач нет! Отдыхай.", msg.Text)
	assert.Nil(t, msg.Options)
}

func TestBuilder_CalendarError(t *testing.T) {
	b := &Builder{Calendar: &fakeCalendar{err: errors.New("quota")}}
	_, err := b.Build(context.Background(), time.Now(), 0)
	assert.Error(t, err)

	b = &Builder{Calendar: calendar.Disabled{}}
	_, err = b.Build(context.Background(), time.Now(), 0)
	assert.ErrorIs(t, err, calendar.ErrDisabled)
}
