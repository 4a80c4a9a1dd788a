package paypal

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPaymentFailed is returned when the provider rejects the payment
	ErrPaymentFailed = errors.New("payment failed")

	// ErrPaymentNotApproved is returned when an executed payment does not
	// reach the approved state
	ErrPaymentNotApproved = errors.New("payment not approved")

	// ErrNoApprovalURL is returned when a created payment carries no
	// approval link to redirect the payer to
	ErrNoApprovalURL = errors.New("payment has no approval url")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the client credentials are invalid
	ErrUnauthorized = errors.New("unauthorized: invalid client credentials")
)
