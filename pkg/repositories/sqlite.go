package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cbodonnell/bearpong/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string, migrations string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	dir, err := os.ReadDir(migrations)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range dir {
		if entry.IsDir() {
			continue
		}

		migrationPath := filepath.Join(migrations, entry.Name())
		migration, err := os.ReadFile(migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if _, err := db.ExecContext(ctx, string(migration)); err != nil {
			return nil, fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) EnsureAccount(ctx context.Context, userID string, name string) error {
	now := time.Now().UnixMilli()
	q := `
	INSERT INTO accounts (user_id, name, balance, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at;
	`
	_, err := r.db.ExecContext(ctx, q, userID, name, DefaultStartingBalance, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert account: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	q := `
	SELECT user_id, name, balance, created_at, updated_at FROM accounts WHERE user_id = ?;
	`
	account := &models.Account{}
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&account.UserID, &account.Name, &account.Balance, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan account: %v", err)
	}

	return account, nil
}

func (r *SQLiteRepository) ApplyWagerResult(ctx context.Context, result *models.WagerResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()

	creditQ := `
	UPDATE accounts SET balance = balance + ?, updated_at = ? WHERE user_id = ?;
	`
	if _, err := tx.ExecContext(ctx, creditQ, result.Amount, now, result.WinnerUserID); err != nil {
		return fmt.Errorf("failed to credit winner: %v", err)
	}

	debitQ := `
	UPDATE accounts SET balance = MAX(balance - ?, 0), updated_at = ? WHERE user_id = ?;
	`
	if _, err := tx.ExecContext(ctx, debitQ, result.Amount, now, result.LoserUserID); err != nil {
		return fmt.Errorf("failed to debit loser: %v", err)
	}

	wagerQ := `
	INSERT INTO wagers (session_id, winner_user_id, loser_user_id, amount, winner_score, loser_score, settled_at)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	if _, err := tx.ExecContext(ctx, wagerQ, result.SessionID, result.WinnerUserID, result.LoserUserID, result.Amount, result.WinnerScore, result.LoserScore, now); err != nil {
		return fmt.Errorf("failed to insert wager: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}
