package risk

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
	surebet domain.Surebet
	bets    []domain.Bet
	parts   []domain.Participant
}

func (f *fakeStore) GetSurebet(_ context.Context, _ string) (domain.Surebet, error) {
	return f.surebet, nil
}

func (f *fakeStore) BetsBySurebet(_ context.Context, _ string) ([]domain.Bet, error) {
	return f.bets, nil
}

func (f *fakeStore) ParticipantsBySurebet(_ context.Context, _ string) ([]domain.Participant, error) {
	return f.parts, nil
}

type fakeRates struct {
	rates map[string]decimal.Decimal
}

func (f *fakeRates) Rate(_ context.Context, currency string, date time.Time) (fx.Snapshot, error) {
	return fx.Snapshot{Currency: currency, Rate: f.rates[currency], Date: date}, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func twoSidedStore(payoutA, payoutB string) *fakeStore {
	return &fakeStore{
		surebet: domain.Surebet{ID: "sb-1", Status: domain.SurebetOpen},
		bets: []domain.Bet{
			{ID: "bet-a", Stake: d("100"), Payout: d(payoutA), Currency: "EUR", Status: domain.BetMatched},
			{ID: "bet-b", Stake: d("100"), Payout: d(payoutB), Currency: "EUR", Status: domain.BetMatched},
		},
		parts: []domain.Participant{
			domain.NewParticipant("sb-1", "bet-a", domain.SideA),
			domain.NewParticipant("sb-1", "bet-b", domain.SideB),
		},
	}
}

func newTestClassifier(store *fakeStore, rates *fakeRates) *Classifier {
	return NewClassifier(zap.NewNop(), store, rates, nil, time.Minute, d("1"))
}

func eurOnly() *fakeRates {
	return &fakeRates{rates: map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}}
}

func TestClassify_Safe(t *testing.T) {
	// total stake 200; lado A paga 210 (+10), lado B paga 205 (+5)
	c := newTestClassifier(twoSidedStore("210", "205"), eurOnly())

	a, err := c.Classify(context.Background(), "sb-1")
	require.NoError(t, err)
	assert.True(t, a.ProfitIfAWinsEUR.Equal(d("10.00")))
	assert.True(t, a.ProfitIfBWinsEUR.Equal(d("5.00")))
	assert.True(t, a.WorstCaseEUR.Equal(d("5.00")))
	assert.True(t, a.ROIPct.Equal(d("2.5")), "roi = %s", a.ROIPct)
	assert.Equal(t, ClassSafe, a.Class)
}

func TestClassify_LowROI(t *testing.T) {
	// pior caso +0.40 em 200 de stake: 0.2% de ROI, abaixo do threshold de 1%
	c := newTestClassifier(twoSidedStore("201", "200.40"), eurOnly())

	a, err := c.Classify(context.Background(), "sb-1")
	require.NoError(t, err)
	assert.True(t, a.WorstCaseEUR.Equal(d("0.40")))
	assert.Equal(t, ClassLowROI, a.Class)
}

func TestClassify_Unsafe(t *testing.T) {
	// lado B pagando 195 deixa pior caso negativo
	c := newTestClassifier(twoSidedStore("210", "195"), eurOnly())

	a, err := c.Classify(context.Background(), "sb-1")
	require.NoError(t, err)
	assert.True(t, a.WorstCaseEUR.IsNegative())
	assert.Equal(t, ClassUnsafe, a.Class)
}

func TestClassify_MultiCurrency(t *testing.T) {
	store := &fakeStore{
		surebet: domain.Surebet{ID: "sb-1", Status: domain.SurebetOpen},
		bets: []domain.Bet{
			{ID: "bet-a", Stake: d("200"), Payout: d("390"), Currency: "AUD", Status: domain.BetMatched},
			{ID: "bet-b", Stake: d("100"), Payout: d("230"), Currency: "GBP", Status: domain.BetMatched},
		},
		parts: []domain.Participant{
			domain.NewParticipant("sb-1", "bet-a", domain.SideA),
			domain.NewParticipant("sb-1", "bet-b", domain.SideB),
		},
	}
	rates := &fakeRates{rates: map[string]decimal.Decimal{"AUD": d("0.60"), "GBP": d("1.15")}}
	c := newTestClassifier(store, rates)

	a, err := c.Classify(context.Background(), "sb-1")
	require.NoError(t, err)
	// stakes: 120 + 115 = 235; payouts: A 234, B 264.50
	assert.True(t, a.ProfitIfAWinsEUR.Equal(d("-1.00")))
	assert.True(t, a.ProfitIfBWinsEUR.Equal(d("29.50")))
	assert.True(t, a.WorstCaseEUR.Equal(d("-1.00")))
	assert.Equal(t, ClassUnsafe, a.Class)
}

// Risco só se aplica a surebets abertas: SETTLED é erro de validação
func TestClassify_RejectsSettledSurebet(t *testing.T) {
	store := twoSidedStore("210", "205")
	store.surebet.Status = domain.SurebetSettled
	c := newTestClassifier(store, eurOnly())

	_, err := c.Classify(context.Background(), "sb-1")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
}
