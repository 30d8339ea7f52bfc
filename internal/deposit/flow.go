// Package deposit implements the mobile-money deposit flow: client-side
// validation, initiation and the status-polling task that follows it.
package deposit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"whatsapp-boost/internal/api"
	"whatsapp-boost/internal/config"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/internal/session"
	"whatsapp-boost/pkg/logger"
)

// ErrInitiationRejected is returned when the backend refuses to start a deposit
var ErrInitiationRejected = errors.New("deposit initiation rejected")

// Backend is the part of the API the deposit flow talks to
type Backend interface {
	StatusChecker
	Refresher
	Deposit(ctx context.Context, token string, req model.DepositRequest) (*model.PaymentHandle, error)
}

// Flow initiates deposits and owns their polling tasks
type Flow struct {
	backend   Backend
	validator *Validator
	registry  *Registry
	opts      Options
	logger    *logger.Logger

	baseCtx        context.Context
	stop           context.CancelFunc
	onUnauthorized func(chat, token string)
}

// NewFlow creates a deposit flow controller
func NewFlow(backend Backend, cfg *config.DepositConfig, requestTimeout time.Duration, log *logger.Logger) *Flow {
	ctx, stop := context.WithCancel(context.Background())
	return &Flow{
		backend:   backend,
		validator: NewValidator(cfg.MinAmount),
		registry:  NewRegistry(time.Hour),
		opts: Options{
			Interval:       cfg.PollInterval,
			MaxAttempts:    cfg.MaxAttempts,
			RequestTimeout: requestTimeout,
		},
		logger:  log,
		baseCtx: ctx,
		stop:    stop,
	}
}

// OnUnauthorized registers the hook run when the backend rejects a session's token
func (f *Flow) OnUnauthorized(fn func(chat, token string)) {
	f.onUnauthorized = fn
}

// Validator returns the flow's request validator
func (f *Flow) Validator() *Validator {
	return f.validator
}

// Registry returns the flow's task registry
func (f *Flow) Registry() *Registry {
	return f.registry
}

// Start validates req, initiates the charge and begins polling.
// Validation failures return before any network call. A rejected initiation
// returns ErrInitiationRejected and creates no task.
func (f *Flow) Start(ctx context.Context, sess *session.Session, req model.DepositRequest, notifier Notifier) (*Task, error) {
	req.PhoneNumber = NormalizePhone(req.PhoneNumber)
	if err := f.validator.Validate(req); err != nil {
		return nil, err
	}

	handle, err := f.backend.Deposit(ctx, sess.Token, req)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, err
		}
		f.logger.WithChat(sess.Chat).Warn("Deposit initiation failed",
			"amount", req.Amount,
			"method", req.PaymentMethod,
			"error", err,
		)
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %w", ErrInitiationRejected, err)
		}
		return nil, fmt.Errorf("failed to initiate deposit: %w", err)
	}

	task := newTask(f.baseCtx, sess.Chat, sess.Token, req, *handle, f.opts, f.backend, f.backend, notifier, f.logger)
	task.onUnauthorized = f.onUnauthorized
	f.registry.Add(task)

	f.logger.WithExternalID(handle.ExternalID).Info("Deposit initiated",
		"chat", sess.Chat,
		"amount", req.Amount,
		"method", req.PaymentMethod,
	)

	task.start()
	return task, nil
}

// CancelChat stops all polling owned by a chat
func (f *Flow) CancelChat(chat string) int {
	return f.registry.CancelChat(chat)
}

// Shutdown stops every running task and waits for them to finish
func (f *Flow) Shutdown() {
	f.stop()
	f.registry.CancelAll()
}
