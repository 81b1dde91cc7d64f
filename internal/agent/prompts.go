package agent

import (
	"fmt"
	"strings"

	"daybook/internal/calendar"
)

func classifierPrompt(today, text string) string {
	return fmt.Sprintf(`
You are a personal assistant.
Classify the user message into one of these intents:

1. "schedule_event": Create a NEW event/task.
2. "get_events": List tasks (e.g. "What's for today?").
3. "delete_event": Remove/delete a task.
4. "reschedule_event": Move/Reschedule an EXISTING task to a different date/time. (Keywords: "перенеси", "move", "change date", "reschedule").
5. "mark_done": The user says they completed a task. (Keywords: "сделал", "решил", "готово", "done", "finished").
6. "journal": Diary entry.
7. "other": Irrelevant.

Current Date: %s (YYYY-MM-DD).

User message: %q

Return purely JSON.

If intent is "mark_done":
{
  "intent": "mark_done",
  "scheduleDetails": {
    "date": "YYYY-MM-DD",
    "description": "Keywords to find the task"
  }
}

If intent is "reschedule_event":
{
  "intent": "reschedule_event",
  "rescheduleDetails": {
    "searchDate": "YYYY-MM-DD",
    "targetDate": "YYYY-MM-DD",
    "targetTime": "HH:mm" | null,
    "description": "Keywords to find the task"
  }
}

If intent is "schedule_event":
{
  "intent": "schedule_event",
  "scheduleDetails": {
    "date": "YYYY-MM-DD",
    "startTime": "HH:mm" | null,
    "endTime": "HH:mm" | null,
    "description": "Event description"
  }
}

For date parsing:
- "tomorrow" -> next day.
- "after tomorrow" (послезавтра) -> day after next day.

IMPORTANT: Return ONLY valid JSON.
`, today, text)
}

func modifyPrompt(query, events string) string {
	return fmt.Sprintf(`
You are a smart calendar assistant.
The user wants to RESCHEDULE (move) a specific event.

User Query: %q

Available events:
%s

Identify which event matches the user's description best.
Return a JSON object with a single "id".
If no event matches clearly, return null id.

Example: { "id": "eventId123" }

IMPORTANT: Return ONLY valid JSON.
`, query, events)
}

func deletePrompt(query, events string) string {
	return fmt.Sprintf(`
You are a smart calendar assistant.
The user wants to delete specific events from their schedule.

User Query: %q

Here are the existing events for that day:
%s

Analyze the User Query and match it against the events.
Return a JSON object containing an array of "ids" for the events that should be deleted.
If no events match the user's intent, return an empty array.

Example Response:
{ "ids": ["eventId123", "eventId456"] }

IMPORTANT: Return ONLY valid JSON.
`, query, events)
}

// eventList renders events as numbered lines with their ids.
func eventList(events []calendar.Event) string {
	lines := make([]string, 0, len(events))
	for i, e := range events {
		start := e.Date
		if !e.AllDay() {
			start = e.Start.Format("2006-01-02T15:04:05Z07:00")
		}
		lines = append(lines, fmt.Sprintf("%d. [ID: %s] %q (Time: %s)", i+1, e.ID, e.Summary, start))
	}
	return strings.Join(lines, "\n")
}
