package model

// PaymentMethod identifies a mobile-money provider
type PaymentMethod string

const (
	// PaymentMethodMoMo is MTN Mobile Money
	PaymentMethodMoMo PaymentMethod = "momo"
	// PaymentMethodOM is Orange Money
	PaymentMethodOM PaymentMethod = "om"
)

// Label returns the provider's display name
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodMoMo:
		return "MTN Mobile Money"
	case PaymentMethodOM:
		return "Orange Money"
	default:
		return string(m)
	}
}

// DepositRequest represents POST /wallet/deposit
type DepositRequest struct {
	Amount        int64         `json:"amount_fcfa" validate:"required,gt=0"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=momo om"`
	PhoneNumber   string        `json:"phone_number" validate:"required,numeric,len=12"`
}

// PaymentHandle is returned when a deposit is initiated.
// ExternalID is the only correlation key for status polling.
type PaymentHandle struct {
	ExternalID string `json:"external_id"`
}

// PaymentStatus is the state of a mobile-money payment attempt
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// Valid reports whether s is one of the documented statuses
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentSuccess, PaymentFailed:
		return true
	}
	return false
}

// Terminal reports whether s ends polling
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

// PaymentStatusResponse represents GET /wallet/payment/{externalId}/status
type PaymentStatusResponse struct {
	Status PaymentStatus `json:"status"`
}

// Recipient is the resolved identity behind a phone number
type Recipient struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// TransferRequest represents POST /wallet/transfer
type TransferRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Points      int64  `json:"points" validate:"required,gt=0"`
	PIN         string `json:"pin" validate:"required,numeric,len=4"`
}

// TransferResult is returned by a successful transfer
type TransferResult struct {
	TransactionID string `json:"transaction_id"`
}
