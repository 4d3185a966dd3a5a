package wallet

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/tally/internal/repositories/wallet Repository

import (
	"context"
)

// Repository defines the credit balances players spend on rescues
type Repository interface {
	// GetBalance returns the current balance of an account
	GetBalance(ctx context.Context, input *GetBalanceInput) (*GetBalanceOutput, error)

	// Debit removes credits from an account if, and only if, the balance covers
	// the amount at the moment of the debit
	Debit(ctx context.Context, input *DebitInput) (*DebitOutput, error)

	// Credit adds credits to an account, opening it if needed
	Credit(ctx context.Context, input *CreditInput) (*CreditOutput, error)
}
