package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/stripe-mirror/internal/database"
	"github.com/dukerupert/stripe-mirror/internal/model"
	"github.com/dukerupert/stripe-mirror/internal/report"
	"github.com/dukerupert/stripe-mirror/internal/store"
)

var july2024 = time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)

func setupReportHandler(t *testing.T) (*ReportHandler, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewReportHandler(db, store.NewSubscriptionStore(db), store.NewAccountStore(db), logger)
	return h, db
}

var seq int

func seedSubscriptions(t *testing.T, db *sql.DB, accountID *int64, statuses ...stripe.SubscriptionStatus) {
	t.Helper()
	ss := store.NewSubscriptionStore(db)
	for _, st := range statuses {
		seq++
		sub := model.Subscription{
			StripeID: fmt.Sprintf("sub_%d", seq), AccountID: accountID, Plan: "pro", Status: st,
			StartDate: july2024, Created: july2024,
		}
		if st == stripe.SubscriptionStatusCanceled {
			sub.CanceledAt = &july2024
		}
		if _, err := ss.Upsert(context.Background(), sub); err != nil {
			t.Fatalf("upsert subscription: %v", err)
		}
	}
}

func TestChurnHandler(t *testing.T) {
	h, db := setupReportHandler(t)
	seedSubscriptions(t, db, nil,
		stripe.SubscriptionStatusActive, stripe.SubscriptionStatusActive,
		stripe.SubscriptionStatusActive, stripe.SubscriptionStatusActive,
		stripe.SubscriptionStatusCanceled,
	)

	rec := httptest.NewRecorder()
	h.Churn(rec, httptest.NewRequest("GET", "/reports/subscriptions/churn", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["churn"] != "0.25" {
		t.Errorf("churn = %q, want 0.25", resp["churn"])
	}
	if resp["account"] != "default" {
		t.Errorf("account = %q, want default", resp["account"])
	}
}

func TestChurnHandlerNoActive(t *testing.T) {
	h, _ := setupReportHandler(t)

	rec := httptest.NewRecorder()
	h.Churn(rec, httptest.NewRequest("GET", "/reports/subscriptions/churn?account=acct_none", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestSubscriptionCountsHandlerScoped(t *testing.T) {
	h, db := setupReportHandler(t)
	acct, err := store.NewAccountStore(db).Upsert(context.Background(), model.Account{StripeID: "acct_1", Created: july2024})
	if err != nil {
		t.Fatalf("upsert account: %v", err)
	}
	seedSubscriptions(t, db, nil, stripe.SubscriptionStatusActive)
	seedSubscriptions(t, db, &acct.ID, stripe.SubscriptionStatusActive, stripe.SubscriptionStatusCanceled)

	rec := httptest.NewRecorder()
	h.SubscriptionCounts(rec, httptest.NewRequest("GET", "/reports/subscriptions/counts?account=acct_1", nil))

	var resp countsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Active != 1 || resp.Canceled != 1 || resp.Account != "acct_1" {
		t.Errorf("resp = %+v, want acct_1 active 1 canceled 1", resp)
	}
}

func TestPlanSummaryHandler(t *testing.T) {
	h, db := setupReportHandler(t)
	seedSubscriptions(t, db, nil, stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing)

	rec := httptest.NewRecorder()
	h.PlanSummary(rec, httptest.NewRequest("GET", "/reports/subscriptions/plans?set=started&year=2024&month=7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp []report.PlanCount
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 1 || resp[0].Plan != "pro" || resp[0].Count != 1 {
		t.Errorf("resp = %+v, want [pro:1]", resp)
	}
}

func TestPlanSummaryHandlerEmptyIsArray(t *testing.T) {
	h, _ := setupReportHandler(t)

	rec := httptest.NewRecorder()
	h.PlanSummary(rec, httptest.NewRequest("GET", "/reports/subscriptions/plans?set=active", nil))
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want []", got)
	}
}

func TestPlanSummaryHandlerBadInput(t *testing.T) {
	h, _ := setupReportHandler(t)

	for _, target := range []string{
		"/reports/subscriptions/plans?set=bogus",
		"/reports/subscriptions/plans?set=started&year=2024",
		"/reports/subscriptions/plans?set=canceled_during&year=2024&month=13",
	} {
		rec := httptest.NewRecorder()
		h.PlanSummary(rec, httptest.NewRequest("GET", target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", target, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestSubscriptionsHandler(t *testing.T) {
	h, db := setupReportHandler(t)
	seedSubscriptions(t, db, nil, stripe.SubscriptionStatusActive, stripe.SubscriptionStatusCanceled)

	rec := httptest.NewRecorder()
	h.Subscriptions(rec, httptest.NewRequest("GET", "/reports/subscriptions?set=canceled", nil))
	var subs []model.Subscription
	if err := json.NewDecoder(rec.Body).Decode(&subs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(subs) != 1 || subs[0].Status != stripe.SubscriptionStatusCanceled {
		t.Errorf("subs = %+v, want one canceled", subs)
	}
}

func TestChargeTotalsHandler(t *testing.T) {
	h, db := setupReportHandler(t)
	cs := store.NewChargeStore(db)
	ctx := context.Background()
	cs.Upsert(ctx, model.Charge{StripeID: "ch_1", Paid: true, Amount: 100, AmountRefunded: 20, Created: july2024})
	cs.Upsert(ctx, model.Charge{StripeID: "ch_2", Paid: false, Amount: 50, Created: july2024})

	rec := httptest.NewRecorder()
	h.ChargeTotals(rec, httptest.NewRequest("GET", "/reports/charges/totals?year=2024&month=7", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var totals report.ChargeTotals
	if err := json.NewDecoder(rec.Body).Decode(&totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if totals.TotalAmount != 100 || totals.TotalRefunded != 20 {
		t.Errorf("totals = %+v, want {100 20}", totals)
	}
}

func TestTransferTotalsHandler(t *testing.T) {
	h, db := setupReportHandler(t)
	store.NewTransferStore(db).Upsert(context.Background(), model.Transfer{StripeID: "tr_1", Amount: 42, Created: july2024})

	rec := httptest.NewRecorder()
	h.TransferTotals(rec, httptest.NewRequest("GET", "/reports/transfers/totals?year=2024&month=7", nil))
	var totals report.TransferTotals
	if err := json.NewDecoder(rec.Body).Decode(&totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if totals.TotalAmount != 42 {
		t.Errorf("total_amount = %d, want 42", totals.TotalAmount)
	}

	rec = httptest.NewRecorder()
	h.TransferTotals(rec, httptest.NewRequest("GET", "/reports/transfers/totals?month=7", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing year: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAccountsHandler(t *testing.T) {
	h, db := setupReportHandler(t)

	rec := httptest.NewRecorder()
	h.Accounts(rec, httptest.NewRequest("GET", "/accounts", nil))
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("empty body = %q, want []", got)
	}

	store.NewAccountStore(db).Upsert(context.Background(), model.Account{StripeID: "acct_1", Created: july2024})
	rec = httptest.NewRecorder()
	h.Accounts(rec, httptest.NewRequest("GET", "/accounts", nil))
	var accounts []model.Account
	if err := json.NewDecoder(rec.Body).Decode(&accounts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(accounts) != 1 || accounts[0].StripeID != "acct_1" {
		t.Errorf("accounts = %+v", accounts)
	}
}
