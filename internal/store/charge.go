package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/stripe-mirror/internal/model"
	"github.com/dukerupert/stripe-mirror/internal/query"
)

type ChargeStore struct {
	db *sql.DB
}

func NewChargeStore(db *sql.DB) *ChargeStore {
	return &ChargeStore{db: db}
}

func scanCharge(s scanner) (*model.Charge, error) {
	var c model.Charge
	var accountID sql.NullInt64
	var paid, livemode int
	err := s.Scan(
		&c.ID, &c.StripeID, &accountID, &c.CustomerID, &c.Amount, &c.AmountRefunded,
		&c.Currency, &paid, &livemode, &c.Created, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.AccountID = int64Ptr(accountID)
	c.Paid = paid != 0
	c.Livemode = livemode != 0
	return &c, nil
}

const chargeCols = `id, stripe_id, account_id, customer_id, amount, amount_refunded, currency, paid, livemode, created, updated_at`

func (s *ChargeStore) Upsert(ctx context.Context, c model.Charge) (*model.Charge, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO charges (stripe_id, account_id, customer_id, amount, amount_refunded, currency, paid, livemode, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(stripe_id) DO UPDATE SET
		   account_id = excluded.account_id,
		   customer_id = excluded.customer_id,
		   amount = excluded.amount,
		   amount_refunded = excluded.amount_refunded,
		   currency = excluded.currency,
		   paid = excluded.paid,
		   livemode = excluded.livemode,
		   created = excluded.created,
		   updated_at = CURRENT_TIMESTAMP`,
		c.StripeID, nullInt64(c.AccountID), c.CustomerID, c.Amount, c.AmountRefunded,
		c.Currency, boolToInt(c.Paid), boolToInt(c.Livemode), c.Created.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert charge: %w", err)
	}
	return s.GetByStripeID(ctx, c.StripeID)
}

func (s *ChargeStore) GetByStripeID(ctx context.Context, stripeID string) (*model.Charge, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+chargeCols+` FROM charges WHERE stripe_id = ?`, stripeID)
	c, err := scanCharge(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get charge by stripe id: %w", err)
	}
	return c, nil
}

func (s *ChargeStore) List(ctx context.Context, q *query.Query) ([]model.Charge, error) {
	return listRows(ctx, q, query.TableCharges, chargeCols, scanCharge)
}
