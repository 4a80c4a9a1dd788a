package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		ClientID:      "test-client-id",
		ClientSecret:  "test-client-secret",
		BaseURL:       baseURL,
		ReturnBaseURL: "http://localhost:8080/api/v1",
	}
}

// newTestServer returns an httptest server speaking just enough of the
// PayPal REST API for the client under test, plus counters for how often
// each endpoint was hit.
func newTestServer(t *testing.T, handlePayment, handleExecute http.HandlerFunc) (*httptest.Server, *int64) {
	t.Helper()

	var tokenCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&tokenCalls, 1)

		user, pass, ok := r.BasicAuth()
		if !ok || user != "test-client-id" || pass != "test-client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "test-access-token",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
		})
	})
	if handlePayment != nil {
		mux.HandleFunc("/v1/payments/payment", handlePayment)
	}
	if handleExecute != nil {
		mux.HandleFunc("/v1/payments/payment/", handleExecute)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokenCalls
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "Valid config",
			config:  testConfig("https://api.sandbox.paypal.com"),
			wantErr: false,
		},
		{
			name: "Missing client ID",
			config: Config{
				ClientSecret:  "secret",
				BaseURL:       "https://api.sandbox.paypal.com",
				ReturnBaseURL: "http://localhost:8080",
			},
			wantErr: true,
		},
		{
			name: "Missing client secret",
			config: Config{
				ClientID:      "id",
				BaseURL:       "https://api.sandbox.paypal.com",
				ReturnBaseURL: "http://localhost:8080",
			},
			wantErr: true,
		},
		{
			name: "Missing base URL",
			config: Config{
				ClientID:      "id",
				ClientSecret:  "secret",
				ReturnBaseURL: "http://localhost:8080",
			},
			wantErr: true,
		},
		{
			name: "Missing return base URL",
			config: Config{
				ClientID:     "id",
				ClientSecret: "secret",
				BaseURL:      "https://api.sandbox.paypal.com",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, client)
				assert.Equal(t, tt.config, client.GetConfig())
			}
		})
	}
}

func TestCreatePayment_Success(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-access-token", r.Header.Get("Authorization"))

		var req CreatePaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sale", req.Intent)
		assert.Equal(t, "paypal", req.Payer.PaymentMethod)
		require.Len(t, req.Transactions, 1)
		assert.Equal(t, "25.50", req.Transactions[0].Amount.Total)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Payment{
			ID:    "PAY-123",
			State: "created",
			Links: []Link{
				{Href: "https://paypal.test/self", Rel: "self", Method: "GET"},
				{Href: "https://paypal.test/approve?token=EC-1", Rel: "approval_url", Method: "REDIRECT"},
			},
		})
	}, nil)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	payment, err := client.CreatePayment(context.Background(), CreatePaymentRequest{
		Intent: "sale",
		Payer:  Payer{PaymentMethod: "paypal"},
		RedirectURLs: RedirectURLs{
			ReturnURL: "http://localhost:8080/api/v1/paypal/success",
			CancelURL: "http://localhost:8080/api/v1/paypal/cancel",
		},
		Transactions: []Transaction{
			{
				ItemList: ItemList{Items: []Item{
					{Name: "Laptop", Price: "25.50", Currency: "USD", Quantity: 1},
				}},
				Amount: Amount{Total: "25.50", Currency: "USD"},
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "PAY-123", payment.ID)
	assert.Equal(t, "https://paypal.test/approve?token=EC-1", payment.ApprovalURL())
}

func TestCreatePayment_NoApprovalURL(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Payment{
			ID:    "PAY-123",
			State: "created",
			Links: []Link{{Href: "https://paypal.test/self", Rel: "self", Method: "GET"}},
		})
	}, nil)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	payment, err := client.CreatePayment(context.Background(), CreatePaymentRequest{})

	assert.ErrorIs(t, err, ErrNoApprovalURL)
	assert.Nil(t, payment)
}

func TestCreatePayment_InvalidRequest(t *testing.T) {
	server, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{
			Name:    "VALIDATION_ERROR",
			Message: "Invalid request - see details",
		})
	}, nil)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	payment, err := client.CreatePayment(context.Background(), CreatePaymentRequest{})

	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
	assert.Nil(t, payment)
}

func TestExecutePayment_Success(t *testing.T) {
	server, _ := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/payment/PAY-123/execute", r.URL.Path)

		var req struct {
			PayerID string `json:"payer_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "PAYER-456", req.PayerID)

		json.NewEncoder(w).Encode(Payment{ID: "PAY-123", State: "approved"})
	})

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	payment, err := client.ExecutePayment(context.Background(), "PAY-123", "PAYER-456")

	require.NoError(t, err)
	assert.Equal(t, "PAY-123", payment.ID)
	assert.Equal(t, "approved", payment.State)
}

func TestExecutePayment_NotApproved(t *testing.T) {
	server, _ := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Payment{ID: "PAY-123", State: "failed"})
	})

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	payment, err := client.ExecutePayment(context.Background(), "PAY-123", "PAYER-456")

	assert.ErrorIs(t, err, ErrPaymentNotApproved)
	assert.Nil(t, payment)
}

func TestToken_CachedAcrossRequests(t *testing.T) {
	server, tokenCalls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Payment{
			ID:    "PAY-CACHED",
			State: "created",
			Links: []Link{{Href: "https://paypal.test/approve", Rel: "approval_url", Method: "REDIRECT"}},
		})
	}, nil)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.CreatePayment(context.Background(), CreatePaymentRequest{})
	require.NoError(t, err)
	_, err = client.CreatePayment(context.Background(), CreatePaymentRequest{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(tokenCalls))
}

func TestToken_Unauthorized(t *testing.T) {
	server, _ := newTestServer(t, nil, nil)

	config := testConfig(server.URL)
	config.ClientSecret = "wrong-secret"
	client, err := NewClient(config)
	require.NoError(t, err)

	payment, err := client.CreatePayment(context.Background(), CreatePaymentRequest{})

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, payment)
}
