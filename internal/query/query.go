// Package query composes account-scoped filters and aggregates over the
// mirror tables. A Query is immutable: every narrowing method returns a
// copy, so a base query can be shared by several reports.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/stripe-mirror/internal/scope"
)

// Querier is the subset of *sql.DB (or *sql.Tx) a Query needs.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountColumn is the foreign key every mirror table carries.
const AccountColumn = "account_id"

type Query struct {
	db    Querier
	table string
	scope scope.Account
	conds []string
	args  []any
}

// GroupCount is one row of a GROUP BY ... COUNT(*) result.
type GroupCount struct {
	Key   string
	Count int64
}

// New returns a query over table restricted to the account scope a.
func New(db Querier, table string, a scope.Account) *Query {
	cond, args := a.Where(AccountColumn)
	return &Query{
		db:    db,
		table: table,
		scope: a,
		conds: []string{cond},
		args:  args,
	}
}

func (q *Query) Table() string { return q.table }

func (q *Query) Scope() scope.Account { return q.scope }

// Where returns a copy narrowed by cond.
func (q *Query) Where(cond string, args ...any) *Query {
	n := &Query{
		db:    q.db,
		table: q.table,
		scope: q.scope,
		conds: make([]string, 0, len(q.conds)+1),
		args:  make([]any, 0, len(q.args)+len(args)),
	}
	n.conds = append(append(n.conds, q.conds...), cond)
	n.args = append(append(n.args, q.args...), args...)
	return n
}

// Exclude returns a copy without the rows matching cond.
func (q *Query) Exclude(cond string, args ...any) *Query {
	return q.Where("NOT ("+cond+")", args...)
}

// InMonth keeps rows whose column falls in the given calendar month,
// comparing the stored timestamp's own year and month. Rows with a NULL
// column never match.
func (q *Query) InMonth(column string, year int, month time.Month) *Query {
	return q.Where(
		fmt.Sprintf(`CAST(strftime('%%Y', %[1]s) AS INTEGER) = ? AND CAST(strftime('%%m', %[1]s) AS INTEGER) = ?`, column),
		year, int(month),
	)
}

func (q *Query) where() string {
	return strings.Join(q.conds, " AND ")
}

// SQL renders a SELECT of cols with the accumulated filters.
func (q *Query) SQL(cols string) (string, []any) {
	return `SELECT ` + cols + ` FROM ` + q.table + ` WHERE ` + q.where(), q.args
}

// Select runs the query and returns the rows for cols ordered by id.
func (q *Query) Select(ctx context.Context, cols string) (*sql.Rows, error) {
	stmt, args := q.SQL(cols)
	rows, err := q.db.QueryContext(ctx, stmt+` ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.table, err)
	}
	return rows, nil
}

func (q *Query) Count(ctx context.Context) (int64, error) {
	stmt, args := q.SQL(`COUNT(*)`)
	var n int64
	if err := q.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.table, err)
	}
	return n, nil
}

// GroupCount counts rows per distinct value of column. Order is unspecified.
func (q *Query) GroupCount(ctx context.Context, column string) ([]GroupCount, error) {
	stmt, args := q.SQL(column + `, COUNT(*)`)
	rows, err := q.db.QueryContext(ctx, stmt+` GROUP BY `+column, args...)
	if err != nil {
		return nil, fmt.Errorf("group %s by %s: %w", q.table, column, err)
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, fmt.Errorf("scan group count: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Sum totals each column in a single pass. Empty result sets sum to zero.
func (q *Query) Sum(ctx context.Context, columns ...string) ([]int64, error) {
	if len(columns) == 0 {
		return nil, nil
	}
	exprs := make([]string, len(columns))
	for i, c := range columns {
		exprs[i] = `COALESCE(SUM(` + c + `), 0)`
	}
	stmt, args := q.SQL(strings.Join(exprs, ", "))

	totals := make([]int64, len(columns))
	dest := make([]any, len(columns))
	for i := range totals {
		dest[i] = &totals[i]
	}
	if err := q.db.QueryRowContext(ctx, stmt, args...).Scan(dest...); err != nil {
		return nil, fmt.Errorf("sum %s: %w", q.table, err)
	}
	return totals, nil
}
