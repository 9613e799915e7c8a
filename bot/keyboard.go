package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// mainKeyboard is the persistent reply keyboard shown under the input
// field in every chat.
func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonContactManager),
			tgbotapi.NewKeyboardButton(buttonMakeOrder),
		),
	)
	keyboard.InputFieldPlaceholder = keyboardPlaceholder
	return keyboard
}

// removeKeyboard hides the reply keyboard while the bot collects
// free-form request data.
func removeKeyboard() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.NewRemoveKeyboard(false)
}
