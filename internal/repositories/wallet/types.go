package wallet

type GetBalanceInput struct {
	AccountID string
}

type GetBalanceOutput struct {
	Balance int64
}

type DebitInput struct {
	AccountID string
	Amount    int64
}

// DebitOutput reports whether the debit was applied. When Debited is false
// the account did not hold enough credits and Balance is what it does hold.
type DebitOutput struct {
	Debited bool
	Balance int64
}

type CreditInput struct {
	AccountID string
	Amount    int64
}

type CreditOutput struct {
	Balance int64
}
