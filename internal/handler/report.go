package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/stripe-mirror/internal/query"
	"github.com/dukerupert/stripe-mirror/internal/report"
	"github.com/dukerupert/stripe-mirror/internal/scope"
	"github.com/dukerupert/stripe-mirror/internal/store"
)

type ReportHandler struct {
	subscriptions     *report.Subscriptions
	transfers         *report.Transfers
	charges           *report.Charges
	subscriptionStore *store.SubscriptionStore
	accountStore      *store.AccountStore
	logger            *slog.Logger
}

func NewReportHandler(
	db query.Querier,
	ss *store.SubscriptionStore,
	as *store.AccountStore,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		subscriptions:     report.NewSubscriptions(db),
		transfers:         report.NewTransfers(db),
		charges:           report.NewCharges(db),
		subscriptionStore: ss,
		accountStore:      as,
		logger:            logger,
	}
}

type churnResponse struct {
	Account string          `json:"account"`
	Churn   decimal.Decimal `json:"churn"`
}

type countsResponse struct {
	Account  string `json:"account"`
	Active   int64  `json:"active"`
	Canceled int64  `json:"canceled"`
}

// Churn serves canceled / active for the selected account.
func (h *ReportHandler) Churn(w http.ResponseWriter, r *http.Request) {
	a := accountFromRequest(r)
	churn, err := h.subscriptions.Churn(r.Context(), a)
	if errors.Is(err, report.ErrNoActiveSubscriptions) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "churn is undefined without active subscriptions"})
		return
	}
	if err != nil {
		h.serverError(w, "churn", a, err)
		return
	}
	writeJSON(w, http.StatusOK, churnResponse{Account: a.String(), Churn: churn})
}

func (h *ReportHandler) SubscriptionCounts(w http.ResponseWriter, r *http.Request) {
	a := accountFromRequest(r)
	active, err := h.subscriptions.Active(a).Count(r.Context())
	if err != nil {
		h.serverError(w, "count active", a, err)
		return
	}
	canceled, err := h.subscriptions.Canceled(a).Count(r.Context())
	if err != nil {
		h.serverError(w, "count canceled", a, err)
		return
	}
	writeJSON(w, http.StatusOK, countsResponse{Account: a.String(), Active: active, Canceled: canceled})
}

// PlanSummary counts subscriptions per plan for the set named by ?set=.
func (h *ReportHandler) PlanSummary(w http.ResponseWriter, r *http.Request) {
	q, err := h.subscriptionSet(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	summary, err := report.PlanSummary(r.Context(), q)
	if err != nil {
		h.serverError(w, "plan summary", q.Scope(), err)
		return
	}
	if summary == nil {
		summary = []report.PlanCount{}
	}
	writeJSON(w, http.StatusOK, summary)
}

// Subscriptions lists the mirrored subscriptions in the set named by ?set=.
func (h *ReportHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	q, err := h.subscriptionSet(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	subs, err := h.subscriptionStore.List(r.Context(), q)
	if err != nil {
		h.serverError(w, "list subscriptions", q.Scope(), err)
		return
	}
	if subs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *ReportHandler) TransferTotals(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a := accountFromRequest(r)
	totals, err := h.transfers.PaidTotalsFor(r.Context(), a, year, month)
	if err != nil {
		h.serverError(w, "transfer totals", a, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *ReportHandler) ChargeTotals(w http.ResponseWriter, r *http.Request) {
	year, month, err := parsePeriod(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a := accountFromRequest(r)
	totals, err := h.charges.PaidTotalsFor(r.Context(), a, year, month)
	if err != nil {
		h.serverError(w, "charge totals", a, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// Accounts lists the connected accounts that can be passed as ?account=.
func (h *ReportHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountStore.List(r.Context())
	if err != nil {
		h.serverError(w, "list accounts", scope.Default(), err)
		return
	}
	if accounts == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *ReportHandler) subscriptionSet(r *http.Request) (*query.Query, error) {
	a := accountFromRequest(r)
	set := r.URL.Query().Get("set")
	switch set {
	case "", "all":
		return h.subscriptions.All(a), nil
	case "active":
		return h.subscriptions.Active(a), nil
	case "canceled":
		return h.subscriptions.Canceled(a), nil
	case "started", "canceled_during":
		year, month, err := parsePeriod(r)
		if err != nil {
			return nil, err
		}
		if set == "started" {
			return h.subscriptions.StartedDuring(a, year, month), nil
		}
		return h.subscriptions.CanceledDuring(a, year, month), nil
	default:
		return nil, fmt.Errorf("unknown set %q", set)
	}
}

func (h *ReportHandler) serverError(w http.ResponseWriter, op string, a scope.Account, err error) {
	h.logger.Error(op, "account", a.String(), "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// accountFromRequest maps ?account=acct_... to a connected scope; absent
// selects the platform account.
func accountFromRequest(r *http.Request) scope.Account {
	return scope.Connected(r.URL.Query().Get("account"))
}

func parsePeriod(r *http.Request) (int, time.Month, error) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, errors.New("year must be between 1 and 9999")
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("month must be between 1 and 12")
	}
	return year, time.Month(month), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
