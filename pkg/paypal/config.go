package paypal

// Config represents the configuration for the PayPal REST client
type Config struct {
	// ClientID is the PayPal application client ID
	ClientID string

	// ClientSecret is the PayPal application secret
	ClientSecret string

	// BaseURL is the PayPal API base URL (sandbox or live)
	BaseURL string

	// ReturnBaseURL is the public base URL of this backend; the
	// success and cancel callback paths are appended to it
	ReturnBaseURL string
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrInvalidRequest
	}
	if c.ClientSecret == "" {
		return ErrInvalidRequest
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	if c.ReturnBaseURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
