package notify

import "log"

const (
	KindReferralBonusPaid  = "REFERRAL_BONUS_PAID"
	KindWithdrawalResolved = "WITHDRAWAL_RESOLVED"
)

// Event is a one-way message emitted after a state transition has committed.
// Delivery is best-effort; a failed send never affects ledger state.
type Event struct {
	Kind        string
	UserID      int64
	AmountCents int64
	Status      string
	Reference   string
}

type Notifier interface {
	Notify(e Event)
}

// LogNotifier writes events to the process log. It is the default sink when
// no Telegram token is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(e Event) {
	log.Printf("[notify] %s user=%d amount=%d status=%s ref=%s",
		e.Kind, e.UserID, e.AmountCents, e.Status, e.Reference)
}
