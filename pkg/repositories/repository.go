package repositories

import (
	"context"

	"github.com/cbodonnell/bearpong/pkg/repositories/models"
)

// DefaultStartingBalance is credited to an account on first sight.
const DefaultStartingBalance int64 = 1000

type Repository interface {
	Close(ctx context.Context) error
	// EnsureAccount creates the account with the starting balance if it
	// does not already exist.
	EnsureAccount(ctx context.Context, userID string, name string) error
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	// ApplyWagerResult credits the winner and debits the loser in one
	// transaction and records the settled wager. A loser's balance never
	// goes below zero.
	ApplyWagerResult(ctx context.Context, result *models.WagerResult) error
}
