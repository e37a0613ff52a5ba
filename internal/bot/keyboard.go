package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

const (
	cbOpenMenu = "OPEN_MENU"
	cbOpenInfo = "OPEN_INFO"
)

func mainKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 MENU", cbOpenMenu),
			tgbotapi.NewInlineKeyboardButtonData("📲 CONTACTS & INFO", cbOpenInfo),
		),
	)
}
