package store

import (
	"context"
	"database/sql"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/stripe-mirror/internal/model"
	"github.com/dukerupert/stripe-mirror/internal/query"
)

type PaymentIntentStore struct {
	db *sql.DB
}

func NewPaymentIntentStore(db *sql.DB) *PaymentIntentStore {
	return &PaymentIntentStore{db: db}
}

func scanPaymentIntent(s scanner) (*model.PaymentIntent, error) {
	var pi model.PaymentIntent
	var accountID sql.NullInt64
	var status string
	var livemode int
	err := s.Scan(
		&pi.ID, &pi.StripeID, &accountID, &pi.CustomerID, &pi.Amount, &pi.AmountReceived,
		&pi.Currency, &status, &livemode, &pi.Created, &pi.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	pi.AccountID = int64Ptr(accountID)
	pi.Status = stripe.PaymentIntentStatus(status)
	pi.Livemode = livemode != 0
	return &pi, nil
}

const paymentIntentCols = `id, stripe_id, account_id, customer_id, amount, amount_received, currency, status, livemode, created, updated_at`

func (s *PaymentIntentStore) Upsert(ctx context.Context, pi model.PaymentIntent) (*model.PaymentIntent, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_intents (stripe_id, account_id, customer_id, amount, amount_received, currency, status, livemode, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(stripe_id) DO UPDATE SET
		   account_id = excluded.account_id,
		   customer_id = excluded.customer_id,
		   amount = excluded.amount,
		   amount_received = excluded.amount_received,
		   currency = excluded.currency,
		   status = excluded.status,
		   livemode = excluded.livemode,
		   created = excluded.created,
		   updated_at = CURRENT_TIMESTAMP`,
		pi.StripeID, nullInt64(pi.AccountID), pi.CustomerID, pi.Amount, pi.AmountReceived,
		pi.Currency, string(pi.Status), boolToInt(pi.Livemode), pi.Created.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert payment intent: %w", err)
	}
	return s.GetByStripeID(ctx, pi.StripeID)
}

func (s *PaymentIntentStore) GetByStripeID(ctx context.Context, stripeID string) (*model.PaymentIntent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paymentIntentCols+` FROM payment_intents WHERE stripe_id = ?`, stripeID)
	pi, err := scanPaymentIntent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment intent by stripe id: %w", err)
	}
	return pi, nil
}

func (s *PaymentIntentStore) List(ctx context.Context, q *query.Query) ([]model.PaymentIntent, error) {
	return listRows(ctx, q, query.TablePaymentIntents, paymentIntentCols, scanPaymentIntent)
}
