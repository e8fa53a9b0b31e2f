package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/relaybot/sheetmail/internal/domain"
)

// TriggerFromUpdate interprets an update envelope as a processing trigger.
// A message or an edited message counts; any other update kind is not
// actionable and reports ok=false, which the intake treats as a no-op.
func TriggerFromUpdate(u tgbotapi.Update) (domain.Trigger, bool) {
	msg := u.Message
	if msg == nil {
		msg = u.EditedMessage
	}
	if msg == nil || msg.Chat == nil {
		return domain.Trigger{}, false
	}
	return domain.Trigger{ChatID: msg.Chat.ID, UpdateID: u.UpdateID}, true
}
