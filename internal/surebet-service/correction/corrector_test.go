package correction

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

type fakeLedger struct {
	entries []domain.LedgerEntry
}

func (f *fakeLedger) Append(_ context.Context, e domain.LedgerEntry) (string, error) {
	f.entries = append(f.entries, e)
	return "entry-1", nil
}

type fakeRates struct {
	rate decimal.Decimal
}

func (f *fakeRates) Rate(_ context.Context, currency string, date time.Time) (fx.Snapshot, error) {
	return fx.Snapshot{Currency: currency, Rate: f.rate, Date: date}, nil
}

type fakeRefData struct {
	bookmakers map[string]domain.Bookmaker
}

func (f *fakeRefData) GetAssociate(_ context.Context, id string) (domain.Associate, error) {
	return domain.Associate{ID: id, Name: "assoc"}, nil
}

func (f *fakeRefData) GetBookmaker(_ context.Context, id string) (domain.Bookmaker, error) {
	return f.bookmakers[id], nil
}

func newTestCorrector(ledger *fakeLedger, rate string) *Corrector {
	refdata := &fakeRefData{bookmakers: map[string]domain.Bookmaker{
		"bm-1": {ID: "bm-1", AssociateID: "assoc-a", Currency: "AUD"},
		"bm-2": {ID: "bm-2", AssociateID: "assoc-b", Currency: "EUR"},
	}}
	return NewCorrector(zap.NewNop(), ledger, &fakeRates{rate: decimal.RequireFromString(rate)}, refdata)
}

func TestRecordDeposit_ConvertsWithCurrentRate(t *testing.T) {
	ledger := &fakeLedger{}
	c := newTestCorrector(ledger, "0.60")

	e, fallback, err := c.RecordDeposit(context.Background(), "assoc-a", "bm-1",
		decimal.NewFromInt(200), "AUD", "initial funding", "operator")
	require.NoError(t, err)

	assert.Equal(t, "entry-1", e.ID)
	assert.Equal(t, domain.EntryDeposit, e.EntryType)
	assert.True(t, e.AmountNative.Equal(decimal.NewFromInt(200)))
	assert.True(t, e.AmountEUR.Equal(decimal.RequireFromString("120.00")))
	assert.True(t, e.FXRateSnapshot.Equal(decimal.RequireFromString("0.60")))
	assert.False(t, fallback)
	require.Len(t, ledger.entries, 1)
}

// Retirada entra NEGATIVA no ledger; o chamador informa o valor positivo
func TestRecordWithdrawal_StoredNegative(t *testing.T) {
	ledger := &fakeLedger{}
	c := newTestCorrector(ledger, "1")

	e, _, err := c.RecordWithdrawal(context.Background(), "assoc-a", "bm-1",
		decimal.NewFromInt(50), "EUR", "cashout", "operator")
	require.NoError(t, err)

	assert.True(t, e.AmountNative.Equal(decimal.NewFromInt(-50)))
	assert.True(t, e.AmountEUR.Equal(decimal.RequireFromString("-50.00")))
}

func TestApply_Validation(t *testing.T) {
	c := newTestCorrector(&fakeLedger{}, "1")
	var vErr *domain.ValidationError

	_, _, err := c.Apply(context.Background(), "assoc-a", "", decimal.Zero, "EUR", "note", "op")
	require.ErrorAs(t, err, &vErr, "zero amount")

	_, _, err = c.Apply(context.Background(), "assoc-a", "", decimal.NewFromInt(10), "EUR", "", "op")
	require.ErrorAs(t, err, &vErr, "empty note")

	_, _, err = c.RecordDeposit(context.Background(), "assoc-a", "", decimal.NewFromInt(-5), "EUR", "n", "op")
	require.ErrorAs(t, err, &vErr, "negative deposit")

	_, _, err = c.RecordWithdrawal(context.Background(), "assoc-a", "", decimal.Zero, "EUR", "n", "op")
	require.ErrorAs(t, err, &vErr, "zero withdrawal")
}

// Bookmaker de outro associado é rejeitado antes de qualquer escrita
func TestApply_BookmakerOwnershipCheck(t *testing.T) {
	ledger := &fakeLedger{}
	c := newTestCorrector(ledger, "1")

	_, _, err := c.Apply(context.Background(), "assoc-a", "bm-2",
		decimal.NewFromInt(10), "EUR", "misattributed", "op")
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, ledger.entries)
}

// Correção pode ser negativa: é valor com sinal, nunca edição de linha antiga
func TestApply_SignedCorrection(t *testing.T) {
	ledger := &fakeLedger{}
	c := newTestCorrector(ledger, "1")

	e, _, err := c.Apply(context.Background(), "assoc-a", "bm-1",
		decimal.RequireFromString("-12.34"), "EUR", "duplicated deposit reversal", "op")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryCorrection, e.EntryType)
	assert.True(t, e.AmountEUR.Equal(decimal.RequireFromString("-12.34")))
}
