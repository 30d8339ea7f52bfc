// Package transfer implements the points transfer form: a recipient is
// resolved from a phone number and any edit of that number invalidates it.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"

	"whatsapp-boost/internal/api"
	"whatsapp-boost/internal/deposit"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/pkg/logger"
)

var (
	// ErrRecipientNotFound is returned when no account matches the phone number
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrRecipientNotResolved is returned when submitting before a successful lookup
	ErrRecipientNotResolved = errors.New("recipient not resolved")
	// ErrInvalidTransfer is returned when points or PIN are malformed
	ErrInvalidTransfer = errors.New("invalid transfer")
)

var validate = validator.New()

// Backend is the part of the API a transfer needs
type Backend interface {
	LookupRecipient(ctx context.Context, token, phone string) (*model.Recipient, error)
	Transfer(ctx context.Context, token string, req model.TransferRequest) (*model.TransferResult, error)
	Balance(ctx context.Context, token string) (*model.Balance, error)
}

// Form holds one chat's in-progress transfer
type Form struct {
	backend Backend
	token   string
	logger  *logger.Logger

	mu        sync.Mutex
	phone     string
	recipient *model.Recipient
}

// NewForm creates an empty form bound to a session token
func NewForm(backend Backend, token string, log *logger.Logger) *Form {
	return &Form{backend: backend, token: token, logger: log}
}

// Token returns the session token the form was created for
func (f *Form) Token() string {
	return f.token
}

// SetPhone edits the phone field. A different number drops the resolved recipient.
func (f *Form) SetPhone(phone string) {
	phone = deposit.NormalizePhone(phone)

	f.mu.Lock()
	defer f.mu.Unlock()

	if phone != f.phone {
		f.recipient = nil
	}
	f.phone = phone
}

// Phone returns the current phone field
func (f *Form) Phone() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phone
}

// Recipient returns the resolved recipient, nil if none
func (f *Form) Recipient() *model.Recipient {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipient
}

// Lookup resolves the current phone number
func (f *Form) Lookup(ctx context.Context) (*model.Recipient, error) {
	phone := f.Phone()
	if phone == "" {
		return nil, ErrRecipientNotFound
	}

	recipient, err := f.backend.LookupRecipient(ctx, f.token, phone)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// The phone may have been edited while the lookup was in flight.
	if f.phone != phone {
		return nil, ErrRecipientNotResolved
	}
	f.recipient = recipient
	return recipient, nil
}

// Submit sends points to the resolved recipient and returns the refreshed balance
func (f *Form) Submit(ctx context.Context, points int64, pin string) (*model.TransferResult, *model.Balance, error) {
	recipient := f.Recipient()
	if recipient == nil {
		return nil, nil, ErrRecipientNotResolved
	}

	req := model.TransferRequest{
		RecipientID: recipient.ID,
		Points:      points,
		PIN:         pin,
	}
	if err := validate.Struct(req); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidTransfer, err)
	}

	result, err := f.backend.Transfer(ctx, f.token, req)
	if err != nil {
		return nil, nil, err
	}

	// The transfer went through; a failed refresh only hides the new balance.
	balance, err := f.backend.Balance(ctx, f.token)
	if err != nil {
		f.logger.Warn("Failed to refresh balance after transfer",
			"transaction_id", result.TransactionID,
			"recipient_id", recipient.ID,
			"error", err,
		)
		return result, nil, nil
	}
	return result, balance, nil
}
