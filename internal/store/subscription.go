package store

import (
	"context"
	"database/sql"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/stripe-mirror/internal/model"
	"github.com/dukerupert/stripe-mirror/internal/query"
)

type SubscriptionStore struct {
	db *sql.DB
}

func NewSubscriptionStore(db *sql.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

func scanSubscription(s scanner) (*model.Subscription, error) {
	var sub model.Subscription
	var accountID sql.NullInt64
	var status string
	var canceledAt, periodEnd sql.NullTime
	var cancelAtPeriodEnd, livemode int
	err := s.Scan(
		&sub.ID, &sub.StripeID, &accountID, &sub.CustomerID, &sub.Plan, &status,
		&sub.StartDate, &canceledAt, &periodEnd, &cancelAtPeriodEnd, &livemode,
		&sub.Created, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.AccountID = int64Ptr(accountID)
	sub.Status = stripe.SubscriptionStatus(status)
	sub.CanceledAt = timePtr(canceledAt)
	sub.CurrentPeriodEnd = timePtr(periodEnd)
	sub.CancelAtPeriodEnd = cancelAtPeriodEnd != 0
	sub.Livemode = livemode != 0
	return &sub, nil
}

const subscriptionCols = `id, stripe_id, account_id, customer_id, plan, status, start_date, canceled_at, current_period_end, cancel_at_period_end, livemode, created, updated_at`

func (s *SubscriptionStore) Upsert(ctx context.Context, sub model.Subscription) (*model.Subscription, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (stripe_id, account_id, customer_id, plan, status, start_date, canceled_at, current_period_end, cancel_at_period_end, livemode, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(stripe_id) DO UPDATE SET
		   account_id = excluded.account_id,
		   customer_id = excluded.customer_id,
		   plan = excluded.plan,
		   status = excluded.status,
		   start_date = excluded.start_date,
		   canceled_at = excluded.canceled_at,
		   current_period_end = excluded.current_period_end,
		   cancel_at_period_end = excluded.cancel_at_period_end,
		   livemode = excluded.livemode,
		   created = excluded.created,
		   updated_at = CURRENT_TIMESTAMP`,
		sub.StripeID, nullInt64(sub.AccountID), sub.CustomerID, sub.Plan, string(sub.Status),
		sub.StartDate.UTC(), nullTime(sub.CanceledAt), nullTime(sub.CurrentPeriodEnd),
		boolToInt(sub.CancelAtPeriodEnd), boolToInt(sub.Livemode), sub.Created.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}
	return s.GetByStripeID(ctx, sub.StripeID)
}

func (s *SubscriptionStore) GetByStripeID(ctx context.Context, stripeID string) (*model.Subscription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subscriptionCols+` FROM subscriptions WHERE stripe_id = ?`, stripeID)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription by stripe id: %w", err)
	}
	return sub, nil
}

// List materializes a subscriptions query.
func (s *SubscriptionStore) List(ctx context.Context, q *query.Query) ([]model.Subscription, error) {
	return listRows(ctx, q, query.TableSubscriptions, subscriptionCols, scanSubscription)
}

func (s *SubscriptionStore) Delete(ctx context.Context, stripeID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE stripe_id = ?`, stripeID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}
