package query

// Mirror tables. Each carries an account_id foreign key to accounts.id
// that is NULL for records owned by the platform account.
const (
	TableSubscriptions  = "subscriptions"
	TableTransfers      = "transfers"
	TableCharges        = "charges"
	TablePaymentIntents = "payment_intents"
)
