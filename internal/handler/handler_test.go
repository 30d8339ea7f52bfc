package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-boost/internal/config"
	"whatsapp-boost/internal/deposit"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/internal/session"
	"whatsapp-boost/pkg/logger"
)

type pendingBackend struct{}

func (pendingBackend) Deposit(ctx context.Context, token string, req model.DepositRequest) (*model.PaymentHandle, error) {
	return &model.PaymentHandle{ExternalID: "abc123"}, nil
}

func (pendingBackend) PaymentStatus(ctx context.Context, token, externalID string) (model.PaymentStatus, error) {
	return model.PaymentPending, nil
}

func (pendingBackend) Balance(ctx context.Context, token string) (*model.Balance, error) {
	return &model.Balance{}, nil
}

func (pendingBackend) Transactions(ctx context.Context, token string) ([]model.Transaction, error) {
	return nil, nil
}

type silentNotifier struct{}

func (silentNotifier) DepositPending(model.DepositRequest, model.PaymentHandle) {}
func (silentNotifier) DepositSucceeded(model.DepositRequest, model.PaymentHandle, *model.Balance, []model.Transaction) {
}
func (silentNotifier) DepositFailed(model.DepositRequest, model.PaymentHandle)   {}
func (silentNotifier) DepositTimedOut(model.DepositRequest, model.PaymentHandle) {}

func newRunningFlow(t *testing.T) *deposit.Flow {
	t.Helper()
	flow := deposit.NewFlow(pendingBackend{}, &config.DepositConfig{
		MinAmount:    200,
		PollInterval: time.Hour,
		MaxAttempts:  24,
	}, time.Second, logger.Nop())
	t.Cleanup(flow.Shutdown)

	_, err := flow.Start(context.Background(), &session.Session{Chat: "237670000000@s.whatsapp.net", Token: "tok"},
		model.DepositRequest{Amount: 1000, PaymentMethod: model.PaymentMethodMoMo, PhoneNumber: "237670000000"},
		silentNotifier{})
	require.NoError(t, err)
	return flow
}

func newDepositsRouter(flow *deposit.Flow) http.Handler {
	h := NewDepositsHandler(flow.Registry(), logger.Nop())
	r := chi.NewRouter()
	r.Get("/api/v1/deposits", h.ListDeposits)
	r.Get("/api/v1/deposits/{externalID}", h.GetDeposit)
	r.Delete("/api/v1/deposits/{externalID}", h.CancelDeposit)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) model.APIResponse {
	t.Helper()
	var raw struct {
		model.APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.APIResponse
}

func TestListAndGetDeposits(t *testing.T) {
	router := newDepositsRouter(newRunningFlow(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/deposits", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []deposit.Snapshot
	resp := decode(t, rec, &list)
	assert.Equal(t, "success", resp.Status)
	require.Len(t, list, 1)
	assert.Equal(t, "abc123", list[0].ExternalID)
	assert.Equal(t, deposit.StatePolling, list[0].State)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/deposits/abc123", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap deposit.Snapshot
	decode(t, rec, &snap)
	assert.Equal(t, int64(1000), snap.Amount)
}

func TestGetUnknownDeposit(t *testing.T) {
	router := newDepositsRouter(newRunningFlow(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/deposits/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec, nil)
	assert.Equal(t, "ERR_DEPOSIT_NOT_FOUND", resp.Error.Code)
}

func TestCancelDeposit(t *testing.T) {
	flow := newRunningFlow(t)
	router := newDepositsRouter(flow)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/deposits/abc123", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snap deposit.Snapshot
	decode(t, rec, &snap)
	assert.Equal(t, deposit.StateCancelled, snap.State)
	assert.NotNil(t, snap.FinishedAt)
}

type fakeStatus struct{}

func (fakeStatus) GetConnectionStatus() map[string]interface{} {
	return map[string]interface{}{"connected": true}
}

type fakeCounter struct{}

func (fakeCounter) Count() (int64, error) { return 3, nil }

func TestCheckHealth(t *testing.T) {
	flow := newRunningFlow(t)
	cfg := &config.Config{Backend: config.BackendConfig{BaseURL: "https://api.example.test"}}
	h := NewHealthHandler(fakeStatus{}, fakeCounter{}, flow.Registry(), cfg, logger.Nop())

	rec := httptest.NewRecorder()
	h.CheckHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var data map[string]interface{}
	decode(t, rec, &data)
	assert.Equal(t, "healthy", data["status"])
	assert.EqualValues(t, 3, data["sessions"])
	assert.EqualValues(t, 1, data["active_deposits"])
}

type recordingBot struct {
	mu   sync.Mutex
	msgs []model.IncomingMessage
	got  chan struct{}
}

func (b *recordingBot) HandleMessage(ctx context.Context, msg model.IncomingMessage) {
	b.mu.Lock()
	b.msgs = append(b.msgs, msg)
	b.mu.Unlock()
	close(b.got)
}

func TestReceiveMessage(t *testing.T) {
	bot := &recordingBot{got: make(chan struct{})}
	h := NewWebhookHandler(bot, nil, logger.Nop())

	body, _ := json.Marshal(map[string]string{"chat": "237670000000@s.whatsapp.net", "text": "/solde"})
	rec := httptest.NewRecorder()
	h.ReceiveMessage(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhook/message", bytes.NewReader(body)))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case <-bot.got:
	case <-time.After(time.Second):
		t.Fatal("message not delivered to bot")
	}

	bot.mu.Lock()
	defer bot.mu.Unlock()
	assert.Equal(t, "237670000000", bot.msgs[0].From)
	assert.Equal(t, "/solde", bot.msgs[0].Text)
}

func TestReceiveMessageRequiresChatAndText(t *testing.T) {
	h := NewWebhookHandler(&recordingBot{got: make(chan struct{})}, nil, logger.Nop())

	rec := httptest.NewRecorder()
	h.ReceiveMessage(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhook/message", bytes.NewReader([]byte(`{"chat":"x"}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.ReceiveMessage(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhook/message", bytes.NewReader([]byte(`not json`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceiveMessageHonoursAllowList(t *testing.T) {
	bot := &recordingBot{got: make(chan struct{})}
	h := NewWebhookHandler(bot, []string{"237690000000@s.whatsapp.net"}, logger.Nop())

	body, _ := json.Marshal(map[string]string{"chat": "237670000000@s.whatsapp.net", "text": "/admin stats"})
	rec := httptest.NewRecorder()
	h.ReceiveMessage(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhook/message", bytes.NewReader(body)))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ERR_FORBIDDEN", resp.Error.Code)

	body, _ = json.Marshal(map[string]string{"chat": "237690000000@s.whatsapp.net", "text": "/solde"})
	rec = httptest.NewRecorder()
	h.ReceiveMessage(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhook/message", bytes.NewReader(body)))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	select {
	case <-bot.got:
	case <-time.After(time.Second):
		t.Fatal("message not delivered to bot")
	}

	bot.mu.Lock()
	defer bot.mu.Unlock()
	require.Len(t, bot.msgs, 1)
	assert.Equal(t, "237690000000@s.whatsapp.net", bot.msgs[0].Chat)
}
