package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mau.fi/whatsmeow/types"

	"whatsapp-boost/internal/config"
	"whatsapp-boost/internal/deposit"
	"whatsapp-boost/internal/handler"
	"whatsapp-boost/internal/middleware"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/pkg/logger"
)

type stubWhatsApp struct{}

func (stubWhatsApp) GetConnectionStatus() map[string]interface{} {
	return map[string]interface{}{"connected": false}
}

func (stubWhatsApp) GetJoinedGroups(ctx context.Context) ([]*types.GroupInfo, error) {
	return nil, nil
}

type stubCounter struct{}

func (stubCounter) Count() (int64, error) { return 0, nil }

type stubBot struct{}

func (stubBot) HandleMessage(ctx context.Context, msg model.IncomingMessage) {}

func newTestRouter(apiKey string) http.Handler {
	log := logger.Nop()
	flow := deposit.NewFlow(nil, &config.DepositConfig{MinAmount: 200, PollInterval: time.Second, MaxAttempts: 24}, time.Second, log)
	registry := flow.Registry()

	return SetupRoutes(Handlers{
		Health:   handler.NewHealthHandler(stubWhatsApp{}, stubCounter{}, registry, &config.Config{}, log),
		Deposits: handler.NewDepositsHandler(registry, log),
		Groups:   handler.NewGroupsHandler(stubWhatsApp{}, log),
		Webhook:  handler.NewWebhookHandler(stubBot{}, nil, log),
	}, middleware.NewAuthMiddleware(apiKey, log), log)
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter("secret")

	for _, path := range []string{"/health", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAPIRoutesRequireKey(t *testing.T) {
	r := newTestRouter("secret")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/deposits", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/deposits", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWriteRoutesNeedConfiguredKey(t *testing.T) {
	body := `{"chat":"237670000000@s.whatsapp.net","text":"/admin stats"}`

	open := newTestRouter("")

	rec := httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/deposits", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhook/message", strings.NewReader(body)))
	assert.NotEqual(t, http.StatusAccepted, rec.Code)
	assert.GreaterOrEqual(t, rec.Code, 400)

	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/deposits/abc123", nil))
	assert.GreaterOrEqual(t, rec.Code, 400)

	keyed := newTestRouter("secret")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/message", strings.NewReader(body))
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	keyed.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
