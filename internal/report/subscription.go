// Package report holds the entity reports over the mirror: subscription
// lifecycle counts and churn, and monthly transfer and charge totals.
// Every entry point takes a scope.Account and builds on query.New, so no
// report can span accounts.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/stripe-mirror/internal/query"
	"github.com/dukerupert/stripe-mirror/internal/scope"
)

// ErrNoActiveSubscriptions is returned by Churn when the ratio is undefined.
var ErrNoActiveSubscriptions = errors.New("churn: no active subscriptions")

// PlanCount is one row of a plan summary.
type PlanCount struct {
	Plan  string `json:"plan"`
	Count int64  `json:"count"`
}

type Subscriptions struct {
	db query.Querier
}

func NewSubscriptions(db query.Querier) *Subscriptions {
	return &Subscriptions{db: db}
}

func (s *Subscriptions) All(a scope.Account) *query.Query {
	return query.New(s.db, query.TableSubscriptions, a)
}

func (s *Subscriptions) Active(a scope.Account) *query.Query {
	return s.All(a).Where(`status = ?`, string(stripe.SubscriptionStatusActive))
}

func (s *Subscriptions) Canceled(a scope.Account) *query.Query {
	return s.All(a).Where(`status = ?`, string(stripe.SubscriptionStatusCanceled))
}

// StartedDuring returns non-trialing subscriptions whose start date falls in
// the given month.
func (s *Subscriptions) StartedDuring(a scope.Account, year int, month time.Month) *query.Query {
	return s.All(a).
		Exclude(`status = ?`, string(stripe.SubscriptionStatusTrialing)).
		InMonth(`start_date`, year, month)
}

// CanceledDuring returns canceled subscriptions whose cancellation falls in
// the given month.
func (s *Subscriptions) CanceledDuring(a scope.Account, year int, month time.Month) *query.Query {
	return s.Canceled(a).InMonth(`canceled_at`, year, month)
}

// PlanSummary counts the subscriptions of q per plan. Order is unspecified.
func PlanSummary(ctx context.Context, q *query.Query) ([]PlanCount, error) {
	if q.Table() != query.TableSubscriptions {
		return nil, fmt.Errorf("plan summary over %s", q.Table())
	}
	groups, err := q.GroupCount(ctx, `plan`)
	if err != nil {
		return nil, fmt.Errorf("plan summary: %w", err)
	}
	out := make([]PlanCount, len(groups))
	for i, g := range groups {
		out[i] = PlanCount{Plan: g.Key, Count: g.Count}
	}
	return out, nil
}

func (s *Subscriptions) ActivePlanSummary(ctx context.Context, a scope.Account) ([]PlanCount, error) {
	return PlanSummary(ctx, s.Active(a))
}

func (s *Subscriptions) StartedPlanSummaryFor(ctx context.Context, a scope.Account, year int, month time.Month) ([]PlanCount, error) {
	return PlanSummary(ctx, s.StartedDuring(a, year, month))
}

func (s *Subscriptions) CanceledPlanSummaryFor(ctx context.Context, a scope.Account, year int, month time.Month) ([]PlanCount, error) {
	return PlanSummary(ctx, s.CanceledDuring(a, year, month))
}

// churnPlaces is the number of decimal places Churn rounds to.
const churnPlaces = 28

// Churn returns canceled / active for the account, rounded half away from
// zero to 28 decimal places.
func (s *Subscriptions) Churn(ctx context.Context, a scope.Account) (decimal.Decimal, error) {
	canceled, err := s.Canceled(a).Count(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("count canceled: %w", err)
	}
	active, err := s.Active(a).Count(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("count active: %w", err)
	}
	if active == 0 {
		return decimal.Zero, ErrNoActiveSubscriptions
	}
	return decimal.NewFromInt(canceled).DivRound(decimal.NewFromInt(active), churnPlaces), nil
}
