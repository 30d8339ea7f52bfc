package model

import "time"

// TransactionType classifies a wallet movement
type TransactionType string

const (
	TransactionDeposit     TransactionType = "deposit"
	TransactionOrder       TransactionType = "order"
	TransactionTransferIn  TransactionType = "transfer_in"
	TransactionTransferOut TransactionType = "transfer_out"
	TransactionReferral    TransactionType = "referral_bonus"
	TransactionLottery     TransactionType = "lottery"
	TransactionAdjustment  TransactionType = "adjustment"
)

// Transaction represents a backend-confirmed wallet movement.
// Points carries the sign: credits are positive, debits negative.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Points      int64           `json:"points"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsCredit reports whether the transaction added points
func (t Transaction) IsCredit() bool {
	return t.Points > 0
}

// Balance represents the authoritative points balance
type Balance struct {
	Points int64 `json:"points"`
}
