package model

import (
	"time"

	stripe "github.com/stripe/stripe-go/v82"
)

// Account is a connected account mirrored from Stripe. Records owned by the
// platform itself have no Account.
type Account struct {
	ID           int64     `json:"id"`
	StripeID     string    `json:"stripe_id"`
	BusinessName string    `json:"business_name"`
	Email        string    `json:"email"`
	Country      string    `json:"country"`
	Livemode     bool      `json:"livemode"`
	Created      time.Time `json:"created"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Subscription struct {
	ID                int64                     `json:"id"`
	StripeID          string                    `json:"stripe_id"`
	AccountID         *int64                    `json:"account_id"`
	CustomerID        string                    `json:"customer_id"`
	Plan              string                    `json:"plan"`
	Status            stripe.SubscriptionStatus `json:"status"`
	StartDate         time.Time                 `json:"start_date"`
	CanceledAt        *time.Time                `json:"canceled_at"`
	CurrentPeriodEnd  *time.Time                `json:"current_period_end"`
	CancelAtPeriodEnd bool                      `json:"cancel_at_period_end"`
	Livemode          bool                      `json:"livemode"`
	Created           time.Time                 `json:"created"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

type Transfer struct {
	ID          int64     `json:"id"`
	StripeID    string    `json:"stripe_id"`
	AccountID   *int64    `json:"account_id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Destination string    `json:"destination"`
	Livemode    bool      `json:"livemode"`
	Created     time.Time `json:"created"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Charge struct {
	ID             int64     `json:"id"`
	StripeID       string    `json:"stripe_id"`
	AccountID      *int64    `json:"account_id"`
	CustomerID     string    `json:"customer_id"`
	Amount         int64     `json:"amount"`
	AmountRefunded int64     `json:"amount_refunded"`
	Currency       string    `json:"currency"`
	Paid           bool      `json:"paid"`
	Livemode       bool      `json:"livemode"`
	Created        time.Time `json:"created"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type PaymentIntent struct {
	ID             int64                      `json:"id"`
	StripeID       string                     `json:"stripe_id"`
	AccountID      *int64                     `json:"account_id"`
	CustomerID     string                     `json:"customer_id"`
	Amount         int64                      `json:"amount"`
	AmountReceived int64                      `json:"amount_received"`
	Currency       string                     `json:"currency"`
	Status         stripe.PaymentIntentStatus `json:"status"`
	Livemode       bool                       `json:"livemode"`
	Created        time.Time                  `json:"created"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}
