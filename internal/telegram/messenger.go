// Package telegram wraps the Bot API behind a small messaging interface.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

var ErrNoToken = errors.New("telegram bot token is not configured")

const ParseModeMarkdown = "Markdown"

// Button is either a callback button or a web-app launcher.
type Button struct {
	Text         string
	CallbackData string
	WebAppURL    string
}

// Keyboard is an inline keyboard, one slice per row.
type Keyboard [][]Button

type SendOptions struct {
	ParseMode string
	Keyboard  Keyboard
}

type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// WebAppKeyboard returns a one-button keyboard opening url, or nil when url
// is empty.
func WebAppKeyboard(caption, url string) Keyboard {
	if url == "" {
		return nil
	}
	return Keyboard{{{Text: caption, WebAppURL: url}}}
}

// Client is constructed once and shared. The underlying Bot API handle is
// created on first use and kept for the life of the process.
type Client struct {
	token string
	log   zerolog.Logger

	once sync.Once
	api  *bot.Bot
	err  error
}

func NewClient(token string, log zerolog.Logger) *Client {
	return &Client{token: token, log: log.With().Str("component", "telegram").Logger()}
}

func (c *Client) handle() (*bot.Bot, error) {
	c.once.Do(func() {
		if c.token == "" {
			c.err = ErrNoToken
			return
		}
		// updates arrive through the webhook; the client only sends
		c.api, c.err = bot.New(c.token, bot.WithSkipGetMe())
		if c.err == nil {
			c.log.Debug().Msg("bot client initialised")
		}
	})
	return c.api, c.err
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts *SendOptions) error {
	b, err := c.handle()
	if err != nil {
		return err
	}

	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if opts != nil {
		if opts.ParseMode != "" {
			params.ParseMode = models.ParseMode(opts.ParseMode)
		}
		if len(opts.Keyboard) > 0 {
			params.ReplyMarkup = inlineMarkup(opts.Keyboard)
		}
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send message to %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	b, err := c.handle()
	if err != nil {
		return err
	}
	_, err = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	return err
}

func inlineMarkup(kb Keyboard) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			b := models.InlineKeyboardButton{Text: btn.Text}
			if btn.WebAppURL != "" {
				b.WebApp = &models.WebAppInfo{URL: btn.WebAppURL}
			} else {
				b.CallbackData = btn.CallbackData
			}
			buttons = append(buttons, b)
		}
		rows = append(rows, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
