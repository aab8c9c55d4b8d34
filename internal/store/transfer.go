package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/stripe-mirror/internal/model"
	"github.com/dukerupert/stripe-mirror/internal/query"
)

type TransferStore struct {
	db *sql.DB
}

func NewTransferStore(db *sql.DB) *TransferStore {
	return &TransferStore{db: db}
}

func scanTransfer(s scanner) (*model.Transfer, error) {
	var t model.Transfer
	var accountID sql.NullInt64
	var livemode int
	err := s.Scan(&t.ID, &t.StripeID, &accountID, &t.Amount, &t.Currency, &t.Destination, &livemode, &t.Created, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.AccountID = int64Ptr(accountID)
	t.Livemode = livemode != 0
	return &t, nil
}

const transferCols = `id, stripe_id, account_id, amount, currency, destination, livemode, created, updated_at`

func (s *TransferStore) Upsert(ctx context.Context, t model.Transfer) (*model.Transfer, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transfers (stripe_id, account_id, amount, currency, destination, livemode, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(stripe_id) DO UPDATE SET
		   account_id = excluded.account_id,
		   amount = excluded.amount,
		   currency = excluded.currency,
		   destination = excluded.destination,
		   livemode = excluded.livemode,
		   created = excluded.created,
		   updated_at = CURRENT_TIMESTAMP`,
		t.StripeID, nullInt64(t.AccountID), t.Amount, t.Currency, t.Destination, boolToInt(t.Livemode), t.Created.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert transfer: %w", err)
	}
	return s.GetByStripeID(ctx, t.StripeID)
}

func (s *TransferStore) GetByStripeID(ctx context.Context, stripeID string) (*model.Transfer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transferCols+` FROM transfers WHERE stripe_id = ?`, stripeID)
	t, err := scanTransfer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transfer by stripe id: %w", err)
	}
	return t, nil
}

func (s *TransferStore) List(ctx context.Context, q *query.Query) ([]model.Transfer, error) {
	return listRows(ctx, q, query.TableTransfers, transferCols, scanTransfer)
}
