package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-boost/internal/config"
	"whatsapp-boost/internal/model"
	"whatsapp-boost/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.BackendConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second}, logger.Nop())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func TestDepositSendsBearerAndBody(t *testing.T) {
	var got model.DepositRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wallet/deposit", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"external_id": "abc123"},
		})
	})

	handle, err := client.Deposit(context.Background(), "tok", model.DepositRequest{
		Amount:        1000,
		PaymentMethod: model.PaymentMethodMoMo,
		PhoneNumber:   "237670000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", handle.ExternalID)
	assert.Equal(t, int64(1000), got.Amount)
	assert.Equal(t, model.PaymentMethodMoMo, got.PaymentMethod)
}

func TestDepositRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"message": "Montant minimum 200 FCFA",
		})
	})

	_, err := client.Deposit(context.Background(), "tok", model.DepositRequest{Amount: 100})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Montant minimum 200 FCFA", Message(err))
}

func TestSuccessFalseOn200IsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "refusé"})
	})

	_, err := client.Balance(context.Background(), "tok")
	assert.Equal(t, "refusé", Message(err))
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Balance(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPaymentStatusWithoutSuccessField(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wallet/payment/abc123/status", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"status": "pending"}})
	})

	status, err := client.PaymentStatus(context.Background(), "tok", "abc123")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, status)
}

func TestPaymentStatusRejectsUnknownShapes(t *testing.T) {
	cases := map[string]any{
		"unknown status": map[string]any{"data": map[string]any{"status": "processing"}},
		"flat status":    map[string]any{"status": "success"},
		"wrong type":     map[string]any{"data": "success"},
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})
			_, err := client.PaymentStatus(context.Background(), "tok", "abc123")
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestNonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	})

	_, err := client.Transactions(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestServerErrorWithoutEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	})

	_, err := client.Transactions(context.Background(), "tok")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestLoginHasNoAuthorizationHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "new-token",
				"user":  map[string]any{"id": "u1", "name": "Awa", "role": "admin"},
			},
		})
	})

	result, err := client.Login(context.Background(), model.LoginRequest{Phone: "237670000000", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "new-token", result.Token)
	assert.True(t, result.User.IsAdmin())
}

func TestLookupRecipientEscapesPhone(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "+237690000000", r.URL.Query().Get("phone"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "u2", "name": "Paul", "phone": "237690000000"},
		})
	})

	recipient, err := client.LookupRecipient(context.Background(), "tok", "+237690000000")
	require.NoError(t, err)
	assert.Equal(t, "Paul", recipient.Name)
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "GET /wallet/payment/:id/status", endpointLabel(http.MethodGet, "/wallet/payment/abc123/status"))
	assert.Equal(t, "GET /wallet/recipient", endpointLabel(http.MethodGet, "/wallet/recipient?phone=1"))
	assert.Equal(t, "PATCH /admin/orders/:id", endpointLabel(http.MethodPatch, "/admin/orders/42"))
	assert.Equal(t, "GET /services", endpointLabel(http.MethodGet, "/services"))
}
