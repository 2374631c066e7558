// Package telegram feeds Telegram chats into the chat engine using
// long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
)

const (
	baseDelay = time.Second
	maxDelay  = 15 * time.Second
	idleDelay = 200 * time.Millisecond

	// Telegram rejects longer messages
	maxMessageLength = 4096
)

// Bot is the subset of *tgbotapi.BotAPI the poller uses
type Bot interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Chat answers user input for a session
type Chat interface {
	HandleUserInput(ctx context.Context, sessionID, text string) string
	PersistentSettings(ctx context.Context) (domain.Settings, error)
}

// Poller long-polls Telegram for updates and answers text messages
type Poller struct {
	bot         Bot
	chat        Chat
	pollTimeout int
	logger      *slog.Logger
}

// Option configures a Poller
type Option func(*Poller)

// WithPollTimeout sets the long polling timeout in seconds
func WithPollTimeout(seconds int) Option {
	return func(p *Poller) {
		if seconds >= 0 {
			p.pollTimeout = seconds
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) { p.logger = l }
}

// NewPoller creates a poller for the given bot and chat engine
func NewPoller(bot Bot, chat Chat, opts ...Option) *Poller {
	p := &Poller{
		bot:         bot,
		chat:        chat,
		pollTimeout: 30,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SessionID maps a Telegram chat to an engine session
func SessionID(chatID int64) string {
	return fmt.Sprintf("tg:%d", chatID)
}

// Run polls until ctx is cancelled. Polling errors are retried with backoff.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("telegram polling started", "timeout_s", p.pollTimeout)
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("telegram polling stopped")
			return nil
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = p.pollTimeout

		updates, err := p.bot.GetUpdates(u)
		if err != nil {
			d := min(max(retryDelay(err), baseDelay), maxDelay)
			p.logger.Warn("telegram polling error", "error", err, "retry_in", d)
			if !sleep(ctx, d) {
				return nil
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			p.HandleUpdate(ctx, upd)
		}

		if len(updates) == 0 && !sleep(ctx, idleDelay) {
			return nil
		}
	}
}

// HandleUpdate answers a single update. Non-text updates are ignored.
func (p *Poller) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}

	sessionID := SessionID(msg.Chat.ID)
	reply := p.reply(ctx, sessionID, msg)
	if reply == "" {
		return
	}

	for _, part := range splitMessage(reply, maxMessageLength) {
		if _, err := p.bot.Send(tgbotapi.NewMessage(msg.Chat.ID, part)); err != nil {
			p.logger.Error("telegram send", "session_id", sessionID, "error", err)
			return
		}
	}
}

func (p *Poller) reply(ctx context.Context, sessionID string, msg *tgbotapi.Message) string {
	if !msg.IsCommand() {
		return p.chat.HandleUserInput(ctx, sessionID, msg.Text)
	}

	switch msg.Command() {
	case "start":
		persistent, err := p.chat.PersistentSettings(ctx)
		if err != nil {
			p.logger.Warn("start menu without standards", "error", err)
		}
		return engine.StartMenu(persistent)
	case "reset":
		return p.chat.HandleUserInput(ctx, sessionID, engine.ResetPhrase)
	case "demo":
		return p.chat.HandleUserInput(ctx, sessionID, "demo")
	default:
		// unknown commands are treated as ordinary input without the slash
		return p.chat.HandleUserInput(ctx, sessionID, strings.TrimPrefix(msg.Text, "/"))
	}
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

// retryDelay derives a backoff from a polling error; Telegram reports
// flood control as "Too Many Requests: retry after N".
func retryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return baseDelay
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// splitMessage cuts text into parts of at most limit runes, preferring
// line breaks.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
