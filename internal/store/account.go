package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/stripe-mirror/internal/model"
)

type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

func scanAccount(s scanner) (*model.Account, error) {
	var a model.Account
	var livemode int
	err := s.Scan(&a.ID, &a.StripeID, &a.BusinessName, &a.Email, &a.Country, &livemode, &a.Created, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Livemode = livemode != 0
	return &a, nil
}

const accountCols = `id, stripe_id, business_name, email, country, livemode, created, updated_at`

// Upsert inserts the account or refreshes the mirrored fields of the row
// with the same stripe_id.
func (s *AccountStore) Upsert(ctx context.Context, a model.Account) (*model.Account, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (stripe_id, business_name, email, country, livemode, created)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(stripe_id) DO UPDATE SET
		   business_name = excluded.business_name,
		   email = excluded.email,
		   country = excluded.country,
		   livemode = excluded.livemode,
		   created = excluded.created,
		   updated_at = CURRENT_TIMESTAMP`,
		a.StripeID, a.BusinessName, a.Email, a.Country, boolToInt(a.Livemode), a.Created.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert account: %w", err)
	}
	return s.GetByStripeID(ctx, a.StripeID)
}

func (s *AccountStore) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountCols+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) GetByStripeID(ctx context.Context, stripeID string) (*model.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountCols+` FROM accounts WHERE stripe_id = ?`, stripeID)
	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by stripe id: %w", err)
	}
	return a, nil
}

func (s *AccountStore) List(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountCols+` FROM accounts ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// Delete removes the account and, through ON DELETE CASCADE, every record
// mirrored for it.
func (s *AccountStore) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
