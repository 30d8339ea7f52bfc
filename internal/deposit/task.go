package deposit

import (
	"context"
	"errors"
	"sync"
	"time"

	"whatsapp-boost/internal/api"
	"whatsapp-boost/internal/metrics"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/pkg/logger"
)

// State is the position of a deposit in the polling state machine
type State string

const (
	StateIdle      State = "idle"
	StatePolling   State = "polling"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
	StateCancelled State = "cancelled"
)

// Final reports whether no more status checks will be issued in s
func (s State) Final() bool {
	switch s {
	case StateSucceeded, StateFailed, StateTimedOut, StateCancelled:
		return true
	}
	return false
}

// StatusChecker queries the status of a payment attempt
type StatusChecker interface {
	PaymentStatus(ctx context.Context, token, externalID string) (model.PaymentStatus, error)
}

// Refresher re-reads the authoritative wallet state after a confirmed deposit
type Refresher interface {
	Balance(ctx context.Context, token string) (*model.Balance, error)
	Transactions(ctx context.Context, token string) ([]model.Transaction, error)
}

// Notifier presents deposit progress to the user.
// Calls for one task are sequential and end with exactly one final call
// unless the task is cancelled. Implementations must not call Task.Cancel.
type Notifier interface {
	DepositPending(req model.DepositRequest, handle model.PaymentHandle)
	DepositSucceeded(req model.DepositRequest, handle model.PaymentHandle, balance *model.Balance, recent []model.Transaction)
	DepositFailed(req model.DepositRequest, handle model.PaymentHandle)
	DepositTimedOut(req model.DepositRequest, handle model.PaymentHandle)
}

// Options controls the polling budget
type Options struct {
	Interval       time.Duration
	MaxAttempts    int
	RequestTimeout time.Duration
}

// Snapshot is a read-only view of a task
type Snapshot struct {
	ExternalID string              `json:"external_id"`
	Chat       string              `json:"chat"`
	Amount     int64               `json:"amount_fcfa"`
	Method     model.PaymentMethod `json:"payment_method"`
	State      State               `json:"state"`
	Attempts   int                 `json:"attempts"`
	LastStatus model.PaymentStatus `json:"last_status,omitempty"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}

type pollResult struct {
	seq    int
	status model.PaymentStatus
	err    error
}

// Task polls one payment handle until a terminal status, budget exhaustion or cancellation
type Task struct {
	chat     string
	token    string
	req      model.DepositRequest
	handle   model.PaymentHandle
	opts     Options
	checker  StatusChecker
	refresh  Refresher
	notifier Notifier
	logger   *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	onUnauthorized func(chat, token string)

	mu         sync.Mutex
	state      State
	attempts   int
	lastStatus model.PaymentStatus
	startedAt  time.Time
	finishedAt time.Time
}

func newTask(parent context.Context, chat, token string, req model.DepositRequest, handle model.PaymentHandle,
	opts Options, checker StatusChecker, refresh Refresher, notifier Notifier, log *logger.Logger) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		chat:      chat,
		token:     token,
		req:       req,
		handle:    handle,
		opts:      opts,
		checker:   checker,
		refresh:   refresh,
		notifier:  notifier,
		logger:    log.WithExternalID(handle.ExternalID).WithChat(chat),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     StateIdle,
		startedAt: time.Now(),
	}
}

// Handle returns the payment handle being polled
func (t *Task) Handle() model.PaymentHandle {
	return t.handle
}

// Chat returns the chat that owns the task
func (t *Task) Chat() string {
	return t.chat
}

// Done is closed once the task has stopped polling
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// State returns the current state
func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Snapshot returns a copy of the task's observable state
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		ExternalID: t.handle.ExternalID,
		Chat:       t.chat,
		Amount:     t.req.Amount,
		Method:     t.req.PaymentMethod,
		State:      t.state,
		Attempts:   t.attempts,
		LastStatus: t.lastStatus,
		StartedAt:  t.startedAt,
	}
	if !t.finishedAt.IsZero() {
		finished := t.finishedAt
		snap.FinishedAt = &finished
	}
	return snap
}

// Cancel stops polling and waits until no further status check will be issued.
// It is a no-op on a task that already finished.
func (t *Task) Cancel() {
	t.cancel()
	<-t.done
}

// Wait blocks until the task finishes or ctx ends, and returns the state reached
func (t *Task) Wait(ctx context.Context) (State, error) {
	select {
	case <-t.done:
		return t.State(), nil
	case <-ctx.Done():
		return t.State(), ctx.Err()
	}
}

func (t *Task) start() {
	t.setState(StatePolling)
	metrics.DepositStarted()
	t.notifier.DepositPending(t.req, t.handle)
	go t.run()
}

func (t *Task) run() {
	defer close(t.done)
	defer t.cancel()

	ticker := time.NewTicker(t.opts.Interval)
	defer ticker.Stop()

	// Buffered for the whole budget so late answers never block their goroutine.
	results := make(chan pollResult, t.opts.MaxAttempts)
	issued := 0
	applied := 0

	issue := func() {
		issued++
		t.mu.Lock()
		t.attempts = issued
		t.mu.Unlock()
		go t.check(issued, results)
	}

	issue()

	for {
		select {
		case <-t.ctx.Done():
			t.finish(StateCancelled)
			return

		case <-ticker.C:
			if issued < t.opts.MaxAttempts {
				issue()
			}

		case res := <-results:
			if t.ctx.Err() != nil {
				t.finish(StateCancelled)
				return
			}
			if res.seq <= applied {
				t.logger.Debug("Discarding stale payment status", "seq", res.seq, "applied", applied)
				continue
			}
			applied = res.seq

			if res.err != nil {
				if errors.Is(res.err, api.ErrUnauthorized) {
					t.logger.Warn("Payment status check unauthorized, stopping")
					ticker.Stop()
					t.finish(StateCancelled)
					if t.onUnauthorized != nil {
						// The hook cancels this task again; run it once run has returned.
						go t.onUnauthorized(t.chat, t.token)
					}
					return
				}
				metrics.RecordPoll("error")
				t.logger.Warn("Payment status check failed", "attempt", res.seq, "error", res.err)
			} else {
				metrics.RecordPoll(string(res.status))
				t.mu.Lock()
				t.lastStatus = res.status
				t.mu.Unlock()

				switch res.status {
				case model.PaymentSuccess:
					ticker.Stop()
					t.resolveSuccess()
					return
				case model.PaymentFailed:
					ticker.Stop()
					t.finish(StateFailed)
					t.logger.Info("Deposit failed", "attempt", res.seq)
					t.notifier.DepositFailed(t.req, t.handle)
					return
				}
			}

			if res.seq >= t.opts.MaxAttempts {
				ticker.Stop()
				t.finish(StateTimedOut)
				t.logger.Info("Deposit polling budget exhausted", "attempts", res.seq)
				t.notifier.DepositTimedOut(t.req, t.handle)
				return
			}
		}
	}
}

func (t *Task) check(seq int, results chan<- pollResult) {
	ctx := t.ctx
	if t.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(t.ctx, t.opts.RequestTimeout)
		defer cancel()
	}

	status, err := t.checker.PaymentStatus(ctx, t.token, t.handle.ExternalID)
	results <- pollResult{seq: seq, status: status, err: err}
}

// resolveSuccess refreshes balance and history once, then notifies
func (t *Task) resolveSuccess() {
	ctx := t.ctx
	if t.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(t.ctx, t.opts.RequestTimeout)
		defer cancel()
	}

	balance, err := t.refresh.Balance(ctx, t.token)
	if err != nil {
		t.logger.Warn("Balance refresh after deposit failed", "error", err)
		balance = nil
	}

	txs, err := t.refresh.Transactions(ctx, t.token)
	if err != nil {
		t.logger.Warn("Transactions refresh after deposit failed", "error", err)
		txs = nil
	}

	t.finish(StateSucceeded)
	t.logger.Info("Deposit confirmed", "amount", t.req.Amount)
	t.notifier.DepositSucceeded(t.req, t.handle, balance, txs)
}

func (t *Task) setState(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
}

func (t *Task) finish(state State) {
	t.mu.Lock()
	t.state = state
	t.finishedAt = time.Now()
	t.mu.Unlock()

	metrics.DepositFinished(string(state))
}
