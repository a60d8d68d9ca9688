package workers

import (
	"context"

	"github.com/cbodonnell/bearpong/pkg/log"
	"github.com/cbodonnell/bearpong/pkg/repositories"
	"github.com/cbodonnell/bearpong/pkg/repositories/models"
	"github.com/cbodonnell/bearpong/pkg/sessions"
)

type SettlementWorker struct {
	repository repositories.Repository
	resultChan <-chan sessions.Result
}

type NewSettlementWorkerOptions struct {
	Repository repositories.Repository
	ResultChan <-chan sessions.Result
}

// NewSettlementWorker creates a new SettlementWorker.
// The worker settles finished wagers against the repository so the game
// loop never blocks on storage.
func NewSettlementWorker(opts NewSettlementWorkerOptions) *SettlementWorker {
	return &SettlementWorker{
		repository: opts.Repository,
		resultChan: opts.ResultChan,
	}
}

func (w *SettlementWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case result := <-w.resultChan:
			w.settle(ctx, result)
		}
	}
}

func (w *SettlementWorker) settle(ctx context.Context, result sessions.Result) {
	winnerScore := result.Score[0]
	loserScore := result.Score[1]
	if loserScore > winnerScore {
		winnerScore, loserScore = loserScore, winnerScore
	}

	if err := w.repository.ApplyWagerResult(ctx, &models.WagerResult{
		SessionID:    result.SessionID,
		WinnerUserID: result.WinnerUserID,
		LoserUserID:  result.LoserUserID,
		Amount:       result.Amount,
		WinnerScore:  winnerScore,
		LoserScore:   loserScore,
	}); err != nil {
		log.Error("Failed to settle wager for session %s: %v", result.SessionID, err)
		return
	}

	log.Info("Settled wager for session %s: %s wins %d", result.SessionID, result.WinnerUserID, result.Amount)
}
