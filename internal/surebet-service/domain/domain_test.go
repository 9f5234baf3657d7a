package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBetStatus_ForwardOnly(t *testing.T) {
	assert.True(t, BetVerified.CanTransitionTo(BetMatched))
	assert.True(t, BetMatched.CanTransitionTo(BetSettled))

	// Nunca pra trás, nunca pulando etapa
	assert.False(t, BetVerified.CanTransitionTo(BetSettled))
	assert.False(t, BetMatched.CanTransitionTo(BetVerified))
	assert.False(t, BetSettled.CanTransitionTo(BetMatched))
	assert.False(t, BetSettled.CanTransitionTo(BetVerified))
}

func TestSameLine_NullSafe(t *testing.T) {
	null := decimal.NullDecimal{}
	line25 := decimal.NewNullDecimal(decimal.RequireFromString("2.5"))
	line25b := decimal.NewNullDecimal(decimal.RequireFromString("2.50"))
	line30 := decimal.NewNullDecimal(decimal.RequireFromString("3.0"))

	assert.True(t, SameLine(null, null), "two nulls are the same line")
	assert.True(t, SameLine(line25, line25b), "2.5 == 2.50")
	assert.False(t, SameLine(line25, line30))
	assert.False(t, SameLine(line25, null))
	assert.False(t, SameLine(null, line25))
}

func TestParticipant_SideFixedAtConstruction(t *testing.T) {
	p := NewParticipant("sb-1", "bet-1", SideA)
	assert.Equal(t, SideA, p.Side())
	assert.Equal(t, "sb-1", p.SurebetID)
	assert.Equal(t, "bet-1", p.BetID)
}

func TestClassifyDelta(t *testing.T) {
	over := decimal.NewFromInt(50)
	short := decimal.NewFromInt(-50)

	assert.Equal(t, HoldingOverholder, ClassifyDelta(decimal.NewFromInt(51), over, short))
	assert.Equal(t, HoldingShort, ClassifyDelta(decimal.NewFromInt(-51), over, short))
	assert.Equal(t, HoldingBalanced, ClassifyDelta(decimal.NewFromInt(50), over, short))
	assert.Equal(t, HoldingBalanced, ClassifyDelta(decimal.NewFromInt(-50), over, short))
	assert.Equal(t, HoldingBalanced, ClassifyDelta(decimal.Zero, over, short))
}

func TestLedgerAggregate_Delta(t *testing.T) {
	a := LedgerAggregate{
		CurrentHoldingEUR: decimal.RequireFromString("1000.00"),
		ShouldHoldEUR:     decimal.RequireFromString("940.50"),
	}
	assert.True(t, a.DeltaEUR().Equal(decimal.RequireFromString("59.50")))
}

func TestOutcome_Valid(t *testing.T) {
	assert.True(t, OutcomeWon.Valid())
	assert.True(t, OutcomeLost.Valid())
	assert.True(t, OutcomeVoid.Valid())
	assert.False(t, Outcome("").Valid())
	assert.False(t, Outcome("PUSH").Valid())
}
