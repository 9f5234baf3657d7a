package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
	"github.com/radieske/surebet-ledger/internal/surebet-service/fx"
)

type fakeStore struct {
	surebet   domain.Surebet
	bets      []domain.Bet
	committed *domain.SettlementPlan
}

func (f *fakeStore) GetSurebet(_ context.Context, id string) (domain.Surebet, error) {
	return f.surebet, nil
}

func (f *fakeStore) BetsBySurebet(_ context.Context, _ string) ([]domain.Bet, error) {
	return f.bets, nil
}

func (f *fakeStore) CommitSettlement(_ context.Context, plan *domain.SettlementPlan) error {
	f.committed = plan
	return nil
}

type fakeRates struct {
	rates    map[string]decimal.Decimal
	fallback map[string]bool
}

func (f *fakeRates) Rate(_ context.Context, currency string, date time.Time) (fx.Snapshot, error) {
	snap := fx.Snapshot{Currency: currency, Rate: f.rates[currency], Date: date}
	if f.fallback[currency] {
		snap.Fallback = true
		snap.FallbackFrom = date.AddDate(0, 0, -3)
	}
	return snap, nil
}

type fakeAdmin struct{ id string }

func (f fakeAdmin) AdminAssociate(_ context.Context) (domain.Associate, error) {
	return domain.Associate{ID: f.id, Name: "admin", IsAdmin: true}, nil
}

func newTestEngine(store *fakeStore, rates *fakeRates) *Engine {
	return NewEngine(zap.NewNop(), store, rates, fakeAdmin{id: "admin"})
}

func matchedBets() []domain.Bet {
	return []domain.Bet{
		{ID: "bet-a", AssociateID: "admin", Stake: decimal.NewFromInt(100),
			Payout: decimal.RequireFromString("195"), Currency: "EUR", Status: domain.BetMatched},
		{ID: "bet-b", AssociateID: "assoc-b", Stake: decimal.NewFromInt(100),
			Payout: decimal.RequireFromString("210"), Currency: "EUR", Status: domain.BetMatched},
	}
}

func wonLost() map[string]domain.Outcome {
	return map[string]domain.Outcome{"bet-a": domain.OutcomeWon, "bet-b": domain.OutcomeLost}
}

func TestEngine_PreviewDoesNotCommit(t *testing.T) {
	store := &fakeStore{
		surebet: domain.Surebet{ID: "sb-1", Status: domain.SurebetOpen},
		bets:    matchedBets(),
	}
	e := newTestEngine(store, &fakeRates{rates: map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}})

	plan, err := e.Preview(context.Background(), "sb-1", wonLost())
	require.NoError(t, err)
	assert.NotEmpty(t, plan.BatchID)
	assert.Len(t, plan.Entries, 2)
	assert.Nil(t, store.committed, "preview must not write")
}

func TestEngine_ConfirmCommitsAtomically(t *testing.T) {
	store := &fakeStore{
		surebet: domain.Surebet{ID: "sb-1", Status: domain.SurebetOpen},
		bets:    matchedBets(),
	}
	e := newTestEngine(store, &fakeRates{rates: map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}})

	commits := 0
	e.OnCommit = func() { commits++ }

	receipt, err := e.Confirm(context.Background(), "sb-1", wonLost())
	require.NoError(t, err)
	require.NotNil(t, store.committed)
	assert.Equal(t, receipt.BatchID, store.committed.BatchID)
	assert.Equal(t, 2, receipt.Entries)
	assert.Equal(t, 1, commits)
	assert.True(t, receipt.ProfitEUR.Equal(decimal.RequireFromString("-5.00")))
}

func TestEngine_RejectsSettledSurebet(t *testing.T) {
	store := &fakeStore{
		surebet: domain.Surebet{ID: "sb-1", Status: domain.SurebetSettled},
		bets:    matchedBets(),
	}
	e := newTestEngine(store, &fakeRates{rates: map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}})

	_, err := e.Preview(context.Background(), "sb-1", wonLost())
	var cErr *domain.StateConflictError
	require.ErrorAs(t, err, &cErr)
}

func TestEngine_RejectsUnmatchedBets(t *testing.T) {
	bets := matchedBets()
	bets[1].Status = domain.BetVerified
	store := &fakeStore{
		surebet: domain.Surebet{ID: "sb-1", Status: domain.SurebetOpen},
		bets:    bets,
	}
	e := newTestEngine(store, &fakeRates{rates: map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}})

	_, err := e.Preview(context.Background(), "sb-1", wonLost())
	var cErr *domain.StateConflictError
	require.ErrorAs(t, err, &cErr)
}

// Fallback de câmbio entra como warning no plano, nunca como erro
func TestEngine_FXFallbackBecomesWarning(t *testing.T) {
	bets := matchedBets()
	bets[1].Currency = "AUD"
	store := &fakeStore{
		surebet: domain.Surebet{ID: "sb-1", Status: domain.SurebetOpen},
		bets:    bets,
	}
	rates := &fakeRates{
		rates:    map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1), "AUD": decimal.RequireFromString("0.60")},
		fallback: map[string]bool{"AUD": true},
	}
	e := newTestEngine(store, rates)

	plan, err := e.Preview(context.Background(), "sb-1", wonLost())
	require.NoError(t, err)
	require.Len(t, plan.Warnings, 1)
	assert.Contains(t, plan.Warnings[0], "AUD")
}
