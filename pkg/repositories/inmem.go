package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/cbodonnell/bearpong/pkg/repositories/models"
)

// InMemoryRepository keeps accounts in process memory. It is the default
// for development and tests; nothing survives a restart.
type InMemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
	wagers   []*models.WagerResult
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		accounts: make(map[string]*models.Account),
	}
}

func (r *InMemoryRepository) Close(ctx context.Context) error {
	return nil
}

func (r *InMemoryRepository) EnsureAccount(ctx context.Context, userID string, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UnixMilli()
	if account, ok := r.accounts[userID]; ok {
		account.Name = name
		account.UpdatedAt = now
		return nil
	}

	r.accounts[userID] = &models.Account{
		UserID:    userID,
		Name:      name,
		Balance:   DefaultStartingBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *InMemoryRepository) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[userID]
	if !ok {
		return nil, &ErrNotFound{}
	}

	copied := *account
	return &copied, nil
}

func (r *InMemoryRepository) ApplyWagerResult(ctx context.Context, result *models.WagerResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UnixMilli()
	if winner, ok := r.accounts[result.WinnerUserID]; ok {
		winner.Balance += result.Amount
		winner.UpdatedAt = now
	}
	if loser, ok := r.accounts[result.LoserUserID]; ok {
		loser.Balance -= result.Amount
		if loser.Balance < 0 {
			loser.Balance = 0
		}
		loser.UpdatedAt = now
	}

	recorded := *result
	recorded.SettledAt = now
	r.wagers = append(r.wagers, &recorded)
	return nil
}

// SettledWagerCount reports how many wagers have been settled.
func (r *InMemoryRepository) SettledWagerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wagers)
}
