package paypal

// tokenResponse is the /v1/oauth2/token response
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Payer identifies the funding source of a payment
type Payer struct {
	PaymentMethod string `json:"payment_method"`
}

// RedirectURLs are where PayPal sends the payer after approval/cancel
type RedirectURLs struct {
	ReturnURL string `json:"return_url"`
	CancelURL string `json:"cancel_url"`
}

// Item is a single purchased line inside a transaction
type Item struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Quantity int    `json:"quantity"`
	SKU      string `json:"sku,omitempty"`
}

// ItemList wraps the items of a transaction
type ItemList struct {
	Items []Item `json:"items"`
}

// Amount is the total charged for a transaction
type Amount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// Transaction describes what the payer is charged for
type Transaction struct {
	ItemList    ItemList `json:"item_list"`
	Amount      Amount   `json:"amount"`
	Description string   `json:"description,omitempty"`
}

// CreatePaymentRequest is the /v1/payments/payment request body
type CreatePaymentRequest struct {
	Intent       string        `json:"intent"`
	Payer        Payer         `json:"payer"`
	RedirectURLs RedirectURLs  `json:"redirect_urls"`
	Transactions []Transaction `json:"transactions"`
}

// Link is a HATEOAS link returned on payment resources
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// Payment is a PayPal payment resource
type Payment struct {
	ID           string        `json:"id"`
	Intent       string        `json:"intent"`
	State        string        `json:"state"`
	Transactions []Transaction `json:"transactions,omitempty"`
	Links        []Link        `json:"links,omitempty"`
}

// ApprovalURL returns the redirect target where the payer approves the
// payment, or an empty string if the resource carries none.
func (p *Payment) ApprovalURL() string {
	for _, link := range p.Links {
		if link.Rel == "approval_url" {
			return link.Href
		}
	}
	return ""
}

// executeRequest is the /v1/payments/payment/{id}/execute request body
type executeRequest struct {
	PayerID string `json:"payer_id"`
}

// ErrorResponse is the error body returned by the PayPal API
type ErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
