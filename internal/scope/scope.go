// Package scope selects which account's mirrored records a query sees.
//
// Records synced for the platform itself carry no account. Records synced
// on behalf of a connected account point at a row in the accounts table.
// Every reporting query is built from exactly one Account value.
package scope

import (
	"fmt"
	"strings"
)

type kind int

const (
	kindDefault kind = iota
	kindConnected
	kindRef
)

// Account is one of Default, Connected or Ref. The zero value is Default.
type Account struct {
	kind     kind
	stripeID string
	ref      int64
}

// Default selects the platform's own records.
func Default() Account {
	return Account{}
}

// Connected selects a connected account by its provider id ("acct_...").
// An empty id selects the platform account.
func Connected(stripeID string) Account {
	stripeID = strings.TrimSpace(stripeID)
	if stripeID == "" {
		return Default()
	}
	return Account{kind: kindConnected, stripeID: stripeID}
}

// Ref selects a connected account by its local accounts.id.
// Zero selects the platform account.
func Ref(accountID int64) Account {
	if accountID == 0 {
		return Default()
	}
	return Account{kind: kindRef, ref: accountID}
}

func (a Account) IsDefault() bool {
	return a.kind == kindDefault
}

// StripeID returns the provider id for Connected scopes, "" otherwise.
func (a Account) StripeID() string {
	return a.stripeID
}

// Where returns the predicate restricting column (a foreign key to
// accounts.id) to this scope.
func (a Account) Where(column string) (string, []any) {
	switch a.kind {
	case kindConnected:
		return column + ` IN (SELECT id FROM accounts WHERE stripe_id = ?)`, []any{a.stripeID}
	case kindRef:
		return column + ` = ?`, []any{a.ref}
	default:
		return column + ` IS NULL`, nil
	}
}

func (a Account) String() string {
	switch a.kind {
	case kindConnected:
		return a.stripeID
	case kindRef:
		return fmt.Sprintf("account#%d", a.ref)
	default:
		return "default"
	}
}
