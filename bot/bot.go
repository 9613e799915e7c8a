// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/poiesic/shoplore/assistant"
	"github.com/poiesic/shoplore/sheets"
)

const (
	// pollTimeoutSeconds is the long-poll timeout passed to getUpdates.
	pollTimeoutSeconds = 60

	// pollRetryDelay is how long the update loop waits after a
	// transient polling error.
	pollRetryDelay = 3 * time.Second
)

// Config holds the Telegram-side settings of the bot.
type Config struct {
	// Token authenticates the bot with the Telegram Bot API.
	Token string

	// GroupID is the chat that receives consultation and order
	// notifications. Zero disables them.
	GroupID int64
}

// Bot connects Telegram chats to the shop assistant. It answers product
// questions, collects consultation and order requests, forwards them to
// the managers' group and records everything in Google Sheets.
type Bot struct {
	api       *tgbotapi.BotAPI
	sender    sender
	assistant *assistant.Assistant
	sheet     *sheets.Service
	groupID   int64
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

// Option is a function that configures a Bot.
type Option func(*Bot) error

// WithLogger sets a custom logger for the bot.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger.With("component", "bot")
		return nil
	}
}

// New authorizes with Telegram and creates the bot. The sheets service
// may be nil, in which case request and dialog logging is disabled.
func New(cfg Config, assist *assistant.Assistant, sheet *sheets.Service, opts ...Option) (*Bot, error) {
	if cfg.Token == "" {
		return nil, ErrTokenRequired
	}
	if assist == nil {
		return nil, ErrAssistantRequired
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization: %w", err)
	}

	b := &Bot{
		api:       api,
		sender:    api,
		assistant: assist,
		sheet:     sheet,
		groupID:   cfg.GroupID,
		logger:    slog.Default().With("component", "bot"),
		sessions:  make(map[int64]*session),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	b.logger.Info("authorized with Telegram", "username", api.Self.UserName)
	if b.sheet == nil {
		b.logger.Warn("sheets service not configured, request and dialog logging disabled")
	}
	return b, nil
}

// Run long-polls Telegram for updates until ctx is cancelled. Updates
// are dispatched to per-chat sessions so a slow model call in one chat
// never delays another. Run returns a wrapped ErrConflict when another
// bot instance is polling with the same token.
func (b *Bot) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.logger.Info("bot started")

	poll := tgbotapi.NewUpdate(0)
	poll.Timeout = pollTimeoutSeconds

	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := b.api.GetUpdates(poll)
		if err != nil {
			if isConflict(err) {
				b.logConflictHint()
				return fmt.Errorf("%w: %s", ErrConflict, err)
			}
			b.logger.Warn("get updates", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= poll.Offset {
				poll.Offset = update.UpdateID + 1
			}
			msg := update.Message
			if msg == nil || msg.Chat == nil || msg.Text == "" {
				continue
			}
			s := b.sessionFor(ctx, msg.Chat.ID)
			select {
			case s.updates <- msg:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// sessionFor returns the session for a chat, starting its worker
// goroutine on first contact.
func (b *Bot) sessionFor(ctx context.Context, chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[chatID]
	if !ok {
		s = newSession()
		b.sessions[chatID] = s
		go b.runSession(ctx, chatID, s)
	}
	return s
}

// runSession consumes one chat's updates in order.
func (b *Bot) runSession(ctx context.Context, chatID int64, s *session) {
	b.logger.Debug("session started", "chat_id", chatID)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.updates:
			b.handleMessage(ctx, s, msg)
		}
	}
}

// handleMessage routes one incoming message through the command,
// collection-state and free-question logic.
func (b *Bot) handleMessage(ctx context.Context, s *session, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("message handler panic", "chat_id", chatID, "panic", r)
			b.reply(ctx, chatID, errorFatalText, "", mainKeyboard())
		}
	}()

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, s, msg)
		case "cancel":
			b.handleCancel(ctx, s, chatID)
		default:
			b.logger.Debug("ignoring command", "chat_id", chatID, "command", msg.Command())
		}
		return
	}

	if s.state != stateIdle && msg.Text == buttonCancel {
		b.handleCancel(ctx, s, chatID)
		return
	}

	switch s.state {
	case stateAwaitingName:
		b.handleName(ctx, s, msg)
	case stateAwaitingPhone:
		b.handlePhone(ctx, s, msg)
	case stateAwaitingOrderDetails:
		b.handleOrderDetails(ctx, s, msg)
	default:
		switch msg.Text {
		case buttonContactManager:
			b.startCollection(ctx, s, msg, requestConsultation)
		case buttonMakeOrder:
			b.startCollection(ctx, s, msg, requestOrder)
		default:
			b.handleQuestion(ctx, msg)
		}
	}
}

// isConflict reports whether a getUpdates error means another instance
// is polling with the same token.
func isConflict(err error) bool {
	if err == nil {
		return false
	}
	text := err.Error()
	return strings.Contains(text, "Conflict") ||
		strings.Contains(text, "terminated by other getUpdates")
}

// logConflictHint spells out for the operator how to recover from a
// duplicate-instance conflict.
func (b *Bot) logConflictHint() {
	sep := strings.Repeat("=", 60)
	b.logger.Error(sep)
	b.logger.Error("several bot instances are running with the same token")
	b.logger.Error("1. stop all other instances of the bot")
	b.logger.Error("2. wait a few seconds for Telegram to drop the stale session")
	b.logger.Error("3. start the bot again")
	b.logger.Error(sep)
}

// userRefFrom extracts the chat and sender identity from a message.
func userRefFrom(msg *tgbotapi.Message) assistant.UserRef {
	ref := assistant.UserRef{ChatID: msg.Chat.ID}
	if msg.From != nil {
		ref.UserID = msg.From.ID
		ref.Username = msg.From.UserName
		ref.FirstName = msg.From.FirstName
		ref.LastName = msg.From.LastName
	}
	return ref
}
