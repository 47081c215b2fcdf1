package domain

const RoleAdmin = "ADMIN"

const (
	WithdrawalPending  = "PENDING"
	WithdrawalApproved = "APPROVED"
	WithdrawalRejected = "REJECTED"
)

// Ledger entry types. Positive amounts are credits, negative are debits.
const (
	EntryTaskReward       = "TASK_REWARD"
	EntryReferralBonus    = "REFERRAL_BONUS"
	EntryWithdrawal       = "WITHDRAWAL"
	EntryWithdrawalRefund = "WITHDRAWAL_REFUND"
	EntryAdminAdjust      = "ADMIN_ADJUST"
)

// Setting keys. Seeded on boot, editable through the admin API.
const (
	SettingMinWithdrawalCents = "min_withdrawal_cents"
	SettingReferralBonusCents = "referral_bonus_cents"
	SettingPaymentChannel     = "payment_channel"
)

// Default task keys seeded into the catalog.
const (
	TaskWatchVideo   = "watch"
	TaskVisitSite    = "visit"
	TaskClaimAirdrop = "airdrop"
)
