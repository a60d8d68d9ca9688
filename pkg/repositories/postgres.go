package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/bearpong/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository creates a repository backed by a Postgres
// connection. The caller is responsible for calling Close().
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) EnsureAccount(ctx context.Context, userID string, name string) error {
	now := time.Now().UnixMilli()
	q := `
	INSERT INTO accounts (user_id, name, balance, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $4)
	ON CONFLICT (user_id) DO UPDATE SET name = $2, updated_at = $4;
	`
	_, err := r.conn.Exec(ctx, q, userID, name, DefaultStartingBalance, now)
	if err != nil {
		return fmt.Errorf("failed to insert account: %v", err)
	}

	return nil
}

func (r *PostgresRepository) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	q := `
	SELECT user_id, name, balance, created_at, updated_at FROM accounts WHERE user_id = $1;
	`
	account := &models.Account{}
	if err := r.conn.QueryRow(ctx, q, userID).Scan(&account.UserID, &account.Name, &account.Balance, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan account: %v", err)
	}

	return account, nil
}

func (r *PostgresRepository) ApplyWagerResult(ctx context.Context, result *models.WagerResult) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UnixMilli()

	creditQ := `
	UPDATE accounts SET balance = balance + $1, updated_at = $2 WHERE user_id = $3;
	`
	if _, err := tx.Exec(ctx, creditQ, result.Amount, now, result.WinnerUserID); err != nil {
		return fmt.Errorf("failed to credit winner: %v", err)
	}

	debitQ := `
	UPDATE accounts SET balance = GREATEST(balance - $1, 0), updated_at = $2 WHERE user_id = $3;
	`
	if _, err := tx.Exec(ctx, debitQ, result.Amount, now, result.LoserUserID); err != nil {
		return fmt.Errorf("failed to debit loser: %v", err)
	}

	wagerQ := `
	INSERT INTO wagers (session_id, winner_user_id, loser_user_id, amount, winner_score, loser_score, settled_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	if _, err := tx.Exec(ctx, wagerQ, result.SessionID, result.WinnerUserID, result.LoserUserID, result.Amount, result.WinnerScore, result.LoserScore, now); err != nil {
		return fmt.Errorf("failed to insert wager: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}
