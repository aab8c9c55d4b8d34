package report

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/stripe-mirror/internal/query"
	"github.com/dukerupert/stripe-mirror/internal/scope"
)

type TransferTotals struct {
	TotalAmount int64 `json:"total_amount"`
}

type ChargeTotals struct {
	TotalAmount   int64 `json:"total_amount"`
	TotalRefunded int64 `json:"total_refunded"`
}

type Transfers struct {
	db query.Querier
}

func NewTransfers(db query.Querier) *Transfers {
	return &Transfers{db: db}
}

func (t *Transfers) All(a scope.Account) *query.Query {
	return query.New(t.db, query.TableTransfers, a)
}

func (t *Transfers) During(a scope.Account, year int, month time.Month) *query.Query {
	return t.All(a).InMonth(`created`, year, month)
}

// PaidTotalsFor sums every transfer created in the month. Transfers have no
// paid flag, so nothing else is filtered.
func (t *Transfers) PaidTotalsFor(ctx context.Context, a scope.Account, year int, month time.Month) (TransferTotals, error) {
	sums, err := t.During(a, year, month).Sum(ctx, `amount`)
	if err != nil {
		return TransferTotals{}, fmt.Errorf("transfer totals: %w", err)
	}
	return TransferTotals{TotalAmount: sums[0]}, nil
}

type Charges struct {
	db query.Querier
}

func NewCharges(db query.Querier) *Charges {
	return &Charges{db: db}
}

func (c *Charges) All(a scope.Account) *query.Query {
	return query.New(c.db, query.TableCharges, a)
}

func (c *Charges) During(a scope.Account, year int, month time.Month) *query.Query {
	return c.All(a).InMonth(`created`, year, month)
}

// PaidTotalsFor sums amount and amount_refunded over the paid charges
// created in the month.
func (c *Charges) PaidTotalsFor(ctx context.Context, a scope.Account, year int, month time.Month) (ChargeTotals, error) {
	sums, err := c.During(a, year, month).Where(`paid = 1`).Sum(ctx, `amount`, `amount_refunded`)
	if err != nil {
		return ChargeTotals{}, fmt.Errorf("charge totals: %w", err)
	}
	return ChargeTotals{TotalAmount: sums[0], TotalRefunded: sums[1]}, nil
}

type PaymentIntents struct {
	db query.Querier
}

func NewPaymentIntents(db query.Querier) *PaymentIntents {
	return &PaymentIntents{db: db}
}

func (p *PaymentIntents) All(a scope.Account) *query.Query {
	return query.New(p.db, query.TablePaymentIntents, a)
}

func (p *PaymentIntents) During(a scope.Account, year int, month time.Month) *query.Query {
	return p.All(a).InMonth(`created`, year, month)
}

func WithStatus(q *query.Query, status stripe.PaymentIntentStatus) *query.Query {
	return q.Where(`status = ?`, string(status))
}
