package reminder

import (
	"fmt"
	"strings"
)

// Button captions for the web-app link attached to reminders.
const (
	FillDayButton     = "Заполнить день"
	FillMissingButton = "Заполнить пропущенные дни"
)

// EndOfDayText is sent at local midnight for a calendar day without data.
func EndOfDayText(date string) string {
	return fmt.Sprintf("День подошел к концу (%s). 🌙\nНе забудь записать итоги и отметить привычки!", date)
}

// YesterdayText is the daily reminder about the previous logical day.
func YesterdayText(hasData bool, date string) string {
	if hasData {
		return "День почти закончился. Запиши итоги и отметь привычки."
	}
	return fmt.Sprintf("Бро, ты забыл заполнить данные за вчера (%s)! 📊\n\nЗаполни пропущенные дни, чтобы не терять прогресс.", date)
}

// MissingDaysText lists every missing day as a bullet.
func MissingDaysText(days []string) string {
	var b strings.Builder
	b.WriteString("Бро, ты забыл заполнить данные за эти даты:\n\n")
	for i, d := range days {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(d)
	}
	b.WriteString("\n\nЗаполни их, чтобы не терять прогресс! 📊")
	return b.String()
}

// BirthdayText tells the owner that one of their contacts has a birthday.
func BirthdayText(name string) string {
	return fmt.Sprintf("Йоу! У %s сегодня День Рождения! Поздравь его! 🎉", name)
}
