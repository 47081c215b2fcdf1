package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier delivers events as Telegram messages. The user id doubles
// as the chat id for direct messages; withdrawal resolutions are also copied
// to the admin chat when one is configured.
type TelegramNotifier struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

func NewTelegramNotifier(token string, adminChatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, adminChatID: adminChatID}, nil
}

func (n *TelegramNotifier) Notify(e Event) {
	text := n.render(e)
	if text == "" {
		return
	}
	n.send(e.UserID, text)
	if n.adminChatID != 0 && e.Kind == KindWithdrawalResolved {
		n.send(n.adminChatID, fmt.Sprintf("user %d: %s", e.UserID, text))
	}
}

func (n *TelegramNotifier) render(e Event) string {
	amount := float64(e.AmountCents) / 100
	switch e.Kind {
	case KindReferralBonusPaid:
		return fmt.Sprintf("You earned a %.2f USD referral bonus!", amount)
	case KindWithdrawalResolved:
		return fmt.Sprintf("Withdrawal %s for %.2f USD: %s", e.Reference, amount, e.Status)
	default:
		return ""
	}
}

func (n *TelegramNotifier) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		// Delivery is at-most-once; the state change already committed.
		log.Printf("[notify] telegram send to %d failed: %v", chatID, err)
	}
}
