package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Client represents a PayPal REST API client
type Client struct {
	config     Config
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new PayPal client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// CreatePayment creates a payment resource and returns it, including the
// approval link the payer must be redirected to.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/v1/payments/payment", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment response: %w", err)
	}
	if payment.ApprovalURL() == "" {
		return nil, ErrNoApprovalURL
	}

	return &payment, nil
}

// ExecutePayment captures a previously approved payment on behalf of the
// given payer. The payment must have been approved by the payer first.
func (c *Client) ExecutePayment(ctx context.Context, paymentID, payerID string) (*Payment, error) {
	endpoint := fmt.Sprintf("/v1/payments/payment/%s/execute", url.PathEscape(paymentID))
	body, err := c.doRequest(ctx, http.MethodPost, endpoint, executeRequest{PayerID: payerID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute payment: %w", err)
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal execute response: %w", err)
	}
	if payment.State != "approved" {
		return nil, fmt.Errorf("%w: state %q", ErrPaymentNotApproved, payment.State)
	}

	return &payment, nil
}

// token returns a valid OAuth access token, requesting a new one from
// /v1/oauth2/token when the cached token is missing or about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(c.config.ClientID, c.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token request returned %d", ErrUnauthorized, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w", err)
	}

	c.accessToken = tr.AccessToken
	// Renew one minute early to avoid using a token at its expiry edge
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)

	return c.accessToken, nil
}

// doRequest performs an authenticated HTTP request to the PayPal API
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
		}

		errorMsg := fmt.Sprintf("PayPal API error - Status: %d, Name: %s, Message: %s",
			resp.StatusCode, errResp.Name, errResp.Message)

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMsg)
		case http.StatusBadRequest:
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, errorMsg)
		default:
			return nil, fmt.Errorf("%w: %s", ErrPaymentFailed, errorMsg)
		}
	}

	return body, nil
}
