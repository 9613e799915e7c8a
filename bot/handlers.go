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

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/poiesic/shoplore/assistant"
	"github.com/poiesic/shoplore/sheets"
)

// notificationTimeLayout formats the request time in group
// notifications.
const notificationTimeLayout = "2006-01-02 15:04:05"

// handleStart greets the user and resets any collection flow in
// progress.
func (b *Bot) handleStart(ctx context.Context, s *session, msg *tgbotapi.Message) {
	user := userRefFrom(msg)
	s.reset()

	reply, err := b.assistant.Greet(ctx, user)
	if err != nil {
		b.logger.Error("greeting failed", "chat_id", user.ChatID, "error", err)
		b.reply(ctx, user.ChatID, errorProcessingText, "", mainKeyboard())
		return
	}

	b.logDialog(ctx, user, "/start", reply)
	b.reply(ctx, user.ChatID, reply, tgbotapi.ModeMarkdown, mainKeyboard())
}

// handleCancel aborts a collection flow and restores the main keyboard.
func (b *Bot) handleCancel(ctx context.Context, s *session, chatID int64) {
	s.reset()
	b.reply(ctx, chatID, cancelledText, "", mainKeyboard())
}

// startCollection begins the name/phone(/details) flow for a
// consultation or an order.
func (b *Bot) startCollection(ctx context.Context, s *session, msg *tgbotapi.Message, kind requestKind) {
	user := userRefFrom(msg)
	s.state = stateAwaitingName
	s.pending = &pendingRequest{kind: kind, user: user}

	header := consultationHeader
	started := dialogConsultationStarted
	button := buttonContactManager
	if kind == requestOrder {
		header = orderHeader
		started = dialogOrderStarted
		button = buttonMakeOrder
	}

	b.logDialog(ctx, user, button, started)
	b.reply(ctx, user.ChatID, header, tgbotapi.ModeMarkdown, removeKeyboard())
}

func (b *Bot) handleName(ctx context.Context, s *session, msg *tgbotapi.Message) {
	if s.pending == nil {
		b.restartCollection(ctx, s, msg.Chat.ID)
		return
	}
	s.pending.name = msg.Text
	s.state = stateAwaitingPhone
	b.reply(ctx, msg.Chat.ID, askPhoneText, "", removeKeyboard())
}

func (b *Bot) handlePhone(ctx context.Context, s *session, msg *tgbotapi.Message) {
	if s.pending == nil {
		b.restartCollection(ctx, s, msg.Chat.ID)
		return
	}
	s.pending.phone = msg.Text

	if s.pending.kind == requestOrder {
		s.state = stateAwaitingOrderDetails
		b.reply(ctx, msg.Chat.ID, askOrderDetailsText, "", removeKeyboard())
		return
	}
	b.finishConsultation(ctx, s, msg)
}

func (b *Bot) handleOrderDetails(ctx context.Context, s *session, msg *tgbotapi.Message) {
	if s.pending == nil {
		b.restartCollection(ctx, s, msg.Chat.ID)
		return
	}
	s.pending.details = msg.Text
	b.finishOrder(ctx, s, msg)
}

// restartCollection recovers a collection state that has no pending
// data, which happens after a bot restart mid-flow.
func (b *Bot) restartCollection(ctx context.Context, s *session, chatID int64) {
	s.reset()
	b.reply(ctx, chatID, restartText, "", mainKeyboard())
}

// finishConsultation submits a completed consultation request: group
// notification, spreadsheet row, dialog record, confirmation.
func (b *Bot) finishConsultation(ctx context.Context, s *session, msg *tgbotapi.Message) {
	p := s.pending
	when := msg.Time().Format(notificationTimeLayout)

	b.notifyGroup(ctx, fmt.Sprintf(groupConsultationTemplate,
		p.name, p.phone, p.user.UserID, usernameOrPlaceholder(p.user.Username), when))

	if b.sheet != nil {
		err := b.sheet.LogConsultation(ctx, sheets.ConsultationEntry{
			UserID:   p.user.UserID,
			Username: p.user.Username,
			Name:     p.name,
			Phone:    p.phone,
		})
		if err != nil {
			b.logger.Warn("log consultation", "chat_id", p.user.ChatID, "error", err)
		}
	}

	b.logDialog(ctx, p.user,
		fmt.Sprintf(dialogConsultationSummary, p.name, p.phone),
		dialogConsultationAccepted)

	b.logger.Info("consultation request accepted", "chat_id", p.user.ChatID, "user_id", p.user.UserID)
	b.reply(ctx, p.user.ChatID, consultationDoneText, tgbotapi.ModeMarkdown, mainKeyboard())
	s.reset()
}

// finishOrder submits a completed order request.
func (b *Bot) finishOrder(ctx context.Context, s *session, msg *tgbotapi.Message) {
	p := s.pending
	when := msg.Time().Format(notificationTimeLayout)

	b.notifyGroup(ctx, fmt.Sprintf(groupOrderTemplate,
		p.name, p.phone, p.details, p.user.UserID, usernameOrPlaceholder(p.user.Username), when))

	if b.sheet != nil {
		err := b.sheet.LogOrder(ctx, sheets.OrderEntry{
			UserID:   p.user.UserID,
			Username: p.user.Username,
			Info:     fmt.Sprintf("Имя: %s, Телефон: %s, Заказ: %s", p.name, p.phone, p.details),
		})
		if err != nil {
			b.logger.Warn("log order", "chat_id", p.user.ChatID, "error", err)
		}
	}

	b.logDialog(ctx, p.user,
		fmt.Sprintf(dialogOrderSummary, p.name, p.phone, p.details),
		dialogOrderAccepted)

	b.logger.Info("order request accepted", "chat_id", p.user.ChatID, "user_id", p.user.UserID)
	b.reply(ctx, p.user.ChatID, orderDoneText, tgbotapi.ModeMarkdown, mainKeyboard())
	s.reset()
}

// handleQuestion runs a free-form question through the assistant.
func (b *Bot) handleQuestion(ctx context.Context, msg *tgbotapi.Message) {
	user := userRefFrom(msg)

	answer, err := b.assistant.Answer(ctx, user, msg.Text)
	if err != nil {
		b.logger.Error("answer failed", "chat_id", user.ChatID, "error", err)
		b.reply(ctx, user.ChatID, errorProcessingText, "", mainKeyboard())
		return
	}

	b.logDialog(ctx, user, msg.Text, answer)
	b.reply(ctx, user.ChatID, answer, tgbotapi.ModeMarkdown, mainKeyboard())
}

// notifyGroup posts a notification to the managers' group chat.
func (b *Bot) notifyGroup(ctx context.Context, text string) {
	if b.groupID == 0 {
		b.logger.Warn("group chat not configured, notification not sent")
		return
	}
	msg := tgbotapi.NewMessage(b.groupID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if err := b.send(ctx, msg); err != nil {
		b.logger.Error("send group notification", "group_id", b.groupID, "error", err)
	}
}

// logDialog appends an exchange to the dialogs worksheet. Failures are
// logged and swallowed so spreadsheet trouble never breaks a
// conversation.
func (b *Bot) logDialog(ctx context.Context, user assistant.UserRef, message, response string) {
	if b.sheet == nil {
		return
	}
	err := b.sheet.LogDialog(ctx, sheets.DialogEntry{
		UserID:    user.UserID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Message:   message,
		Response:  response,
	})
	if err != nil {
		b.logger.Warn("log dialog", "chat_id", user.ChatID, "error", err)
	}
}
