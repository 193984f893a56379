package services

import "context"

// CheckoutRequest describes a hosted checkout to open for the buyer
type CheckoutRequest struct {
	AmountMinorUnits int64
	Currency         string
	Description      string
	Receipt          string
}

// CheckoutSession is the gateway's handle for an opened checkout. The
// buyer completes payment out of band; the gateway then posts success
// or failure to the callback endpoints carrying its transaction id.
type CheckoutSession struct {
	OrderID     string
	CheckoutURL string
}

// PaymentGateway is the external payment collaborator port. Calls
// must carry their own timeout; a timeout is a retryable failure
// surfaced to the user, never a silent hang.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}
