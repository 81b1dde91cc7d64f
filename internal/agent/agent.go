// Package agent turns free-form bot messages into calendar or journal
// intents with an OpenAI-compatible chat model.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"daybook/internal/calendar"
	"daybook/internal/config"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

type Intent string

const (
	IntentSchedule   Intent = "schedule_event"
	IntentGetEvents  Intent = "get_events"
	IntentDelete     Intent = "delete_event"
	IntentReschedule Intent = "reschedule_event"
	IntentMarkDone   Intent = "mark_done"
	IntentJournal    Intent = "journal"
	IntentOther      Intent = "other"
)

var ErrEmptyResponse = errors.New("empty model response")

type ScheduleDetails struct {
	Date        string  `json:"date"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Description string  `json:"description"`
}

type RescheduleDetails struct {
	SearchDate  string  `json:"searchDate"`
	TargetDate  string  `json:"targetDate"`
	TargetTime  *string `json:"targetTime"`
	Description string  `json:"description"`
}

type Classification struct {
	Intent            Intent             `json:"intent"`
	ScheduleDetails   *ScheduleDetails   `json:"scheduleDetails,omitempty"`
	RescheduleDetails *RescheduleDetails `json:"rescheduleDetails,omitempty"`
}

// Classifier is what the bot needs from the model.
type Classifier interface {
	Classify(ctx context.Context, text, today string) (Classification, error)
	PickEventsToDelete(ctx context.Context, query string, events []calendar.Event) []string
	PickEventToModify(ctx context.Context, query string, events []calendar.Event) string
}

type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Agent struct {
	api   completer
	model string
	cfg   config.LLM
	log   zerolog.Logger
}

// New returns an OpenAI-compatible classifier, or Disabled when no endpoint
// is configured.
func New(cfg *config.Config, log zerolog.Logger) Classifier {
	if !cfg.LLM.Enabled() {
		return Disabled{}
	}
	oc := openai.DefaultConfig(cfg.LLM.APIKey)
	if cfg.LLM.BaseURL != "" {
		oc.BaseURL = cfg.LLM.BaseURL
	}
	return newAgent(openai.NewClientWithConfig(oc), cfg.LLM, log)
}

func newAgent(api completer, cfg config.LLM, log zerolog.Logger) *Agent {
	return &Agent{api: api, model: cfg.Model, cfg: cfg, log: log.With().Str("component", "agent").Logger()}
}

func (a *Agent) complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	resp, err := a.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Classify asks the model for the intent of text. An empty answer is a
// journal entry.
func (a *Agent) Classify(ctx context.Context, text, today string) (Classification, error) {
	content, err := a.complete(ctx, classifierPrompt(today, text), a.cfg.ClassifierMaxTokens, a.cfg.ClassifierTemperature)
	if err != nil {
		return Classification{}, err
	}
	if content == "" {
		return Classification{Intent: IntentJournal}, nil
	}
	return parseClassification(content)
}

func parseClassification(content string) (Classification, error) {
	var c Classification
	if err := json.Unmarshal([]byte(stripFences(content)), &c); err != nil {
		return Classification{}, fmt.Errorf("decode classification: %w", err)
	}
	if c.Intent == "" {
		c.Intent = IntentJournal
	}
	return c, nil
}

// PickEventsToDelete returns ids of events matching query. Model failures
// yield an empty result.
func (a *Agent) PickEventsToDelete(ctx context.Context, query string, events []calendar.Event) []string {
	content, err := a.complete(ctx, deletePrompt(query, eventList(events)), a.cfg.AgentMaxTokens, a.cfg.AgentTemperature)
	if err != nil {
		a.log.Error().Err(err).Msg("pick events to delete")
		return nil
	}
	if content == "" {
		return nil
	}
	var out struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &out); err != nil {
		a.log.Error().Err(err).Msg("decode delete selection")
		return nil
	}
	return out.IDs
}

// PickEventToModify returns the id of the best match, or "".
func (a *Agent) PickEventToModify(ctx context.Context, query string, events []calendar.Event) string {
	content, err := a.complete(ctx, modifyPrompt(query, eventList(events)), a.cfg.AgentMaxTokens, a.cfg.AgentTemperature)
	if err != nil {
		a.log.Error().Err(err).Msg("pick event to modify")
		return ""
	}
	if content == "" {
		return ""
	}
	var out struct {
		ID *string `json:"id"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &out); err != nil {
		a.log.Error().Err(err).Msg("decode modify selection")
		return ""
	}
	if out.ID == nil {
		return ""
	}
	return *out.ID
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Disabled treats every message as a journal entry.
type Disabled struct{}

func (Disabled) Classify(context.Context, string, string) (Classification, error) {
	return Classification{Intent: IntentJournal}, nil
}

func (Disabled) PickEventsToDelete(context.Context, string, []calendar.Event) []string { return nil }
func (Disabled) PickEventToModify(context.Context, string, []calendar.Event) string    { return "" }
