package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func eurRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1)}
}

func bet(id, associate, currency, stake, odds, payout string) domain.Bet {
	return domain.Bet{
		ID:          id,
		AssociateID: associate,
		BookmakerID: "bm-" + associate,
		Stake:       d(stake),
		Odds:        d(odds),
		Payout:      d(payout),
		Currency:    currency,
		Status:      domain.BetMatched,
	}
}

// Dois associados apostaram (admin entre eles), lado A ganha, lado B perde:
// lucro -5.00, share -2.50 pra cada, entitlement 97.50 / -2.50.
func TestBuildPlan_TwoStakedSeats(t *testing.T) {
	bets := []domain.Bet{
		bet("bet-a", "admin", "EUR", "100", "1.95", "195"),
		bet("bet-b", "assoc-b", "EUR", "100", "2.10", "210"),
	}
	outcomes := map[string]domain.Outcome{
		"bet-a": domain.OutcomeWon,
		"bet-b": domain.OutcomeLost,
	}

	plan, err := buildPlan("sb-1", "batch-1", bets, outcomes, "admin", eurRates(), nil)
	require.NoError(t, err)

	assert.True(t, plan.ProfitEUR.Equal(d("-5.00")), "profit = %s", plan.ProfitEUR)
	assert.Equal(t, 2, plan.Seats)
	assert.False(t, plan.CoordSeat)

	require.Len(t, plan.Results, 2)
	a, b := plan.Results[0], plan.Results[1]
	assert.True(t, a.NetGainEUR.Equal(d("95.00")))
	assert.True(t, b.NetGainEUR.Equal(d("-100.00")))
	assert.True(t, a.PrincipalReturnedEUR.Equal(d("100.00")))
	assert.True(t, b.PrincipalReturnedEUR.Equal(decimal.Zero))
	assert.True(t, a.ShareEUR.Equal(d("-2.50")))
	assert.True(t, b.ShareEUR.Equal(d("-2.50")))

	// entitlement final = principal + share
	assert.True(t, a.PrincipalReturnedEUR.Add(a.ShareEUR).Equal(d("97.50")))
	assert.True(t, b.PrincipalReturnedEUR.Add(b.ShareEUR).Equal(d("-2.50")))
}

// Ambas VOID: lucro zero, shares zero, principal devolvido inteiro.
func TestBuildPlan_AllVoid(t *testing.T) {
	bets := []domain.Bet{
		bet("bet-a", "admin", "EUR", "100", "1.95", "195"),
		bet("bet-b", "assoc-b", "EUR", "100", "2.10", "210"),
	}
	outcomes := map[string]domain.Outcome{
		"bet-a": domain.OutcomeVoid,
		"bet-b": domain.OutcomeVoid,
	}

	plan, err := buildPlan("sb-1", "batch-1", bets, outcomes, "admin", eurRates(), nil)
	require.NoError(t, err)

	assert.True(t, plan.ProfitEUR.IsZero())
	for _, r := range plan.Results {
		assert.True(t, r.ShareEUR.IsZero())
		assert.True(t, r.PrincipalReturnedEUR.Equal(d("100.00")))
		assert.Equal(t, domain.SeatNonStaked, r.SeatKind)
	}
	for _, e := range plan.Entries {
		assert.True(t, e.PerSurebetShareEUR.Decimal.IsZero())
	}
}

// Admin sem aposta: N=3 (2 parceiros + assento de coordenador). Share base
// -1.67 (banker's), residual +0.01 cai inteiro no assento do admin (-1.66),
// e a linha de ledger do admin existe mesmo sem aposta.
func TestBuildPlan_CoordinatorSeatAndResidualCent(t *testing.T) {
	bets := []domain.Bet{
		bet("bet-a", "partner-a", "EUR", "100", "1.95", "195"),
		bet("bet-b", "partner-b", "EUR", "100", "2.10", "210"),
	}
	outcomes := map[string]domain.Outcome{
		"bet-a": domain.OutcomeWon,
		"bet-b": domain.OutcomeLost,
	}

	plan, err := buildPlan("sb-1", "batch-1", bets, outcomes, "admin", eurRates(), nil)
	require.NoError(t, err)

	assert.True(t, plan.ProfitEUR.Equal(d("-5.00")))
	assert.Equal(t, 3, plan.Seats)
	assert.True(t, plan.CoordSeat)
	assert.True(t, plan.CoordShareEUR.Equal(d("-1.66")), "coord share = %s", plan.CoordShareEUR)

	total := plan.CoordShareEUR
	for _, r := range plan.Results {
		assert.True(t, r.ShareEUR.Equal(d("-1.67")))
		total = total.Add(r.ShareEUR)
	}
	// Invariante dura: soma dos shares == lucro, exato
	assert.True(t, total.Equal(plan.ProfitEUR))

	// Linha extra do coordenador: sem bet_id, em EUR, taxa 1
	require.Len(t, plan.Entries, 3)
	coord := plan.Entries[2]
	assert.Equal(t, "admin", coord.AssociateID)
	assert.Empty(t, coord.BetID)
	assert.Equal(t, "EUR", coord.NativeCurrency)
	assert.True(t, coord.FXRateSnapshot.Equal(decimal.NewFromInt(1)))
	assert.True(t, coord.AmountEUR.Equal(d("-1.66")))
	assert.Empty(t, string(coord.SettlementState))
}

// Multi-moeda: conversões com o snapshot congelado do batch.
// AUD 200 @ 0.60 => 120 EUR; GBP 100 @ 1.15 => 115 EUR.
func TestBuildPlan_MultiCurrencyFrozenRates(t *testing.T) {
	bets := []domain.Bet{
		bet("bet-a", "assoc-a", "AUD", "200", "1.95", "390"),
		bet("bet-b", "assoc-b", "GBP", "100", "2.30", "230"),
	}
	outcomes := map[string]domain.Outcome{
		"bet-a": domain.OutcomeWon,
		"bet-b": domain.OutcomeLost,
	}
	rates := map[string]decimal.Decimal{
		"AUD": d("0.60"),
		"GBP": d("1.15"),
	}

	plan, err := buildPlan("sb-1", "batch-1", bets, outcomes, "assoc-a", rates, nil)
	require.NoError(t, err)

	a, b := plan.Results[0], plan.Results[1]
	assert.True(t, a.StakeEUR.Equal(d("120.00")), "aud stake = %s", a.StakeEUR)
	assert.True(t, a.PayoutEUR.Equal(d("234.00")))
	assert.True(t, b.StakeEUR.Equal(d("115.00")), "gbp stake = %s", b.StakeEUR)

	// profit = (234-120) + (-115) = -1.00
	assert.True(t, plan.ProfitEUR.Equal(d("-1.00")))

	// O snapshot fica congelado nas linhas do ledger
	for _, e := range plan.Entries {
		switch e.NativeCurrency {
		case "AUD":
			assert.True(t, e.FXRateSnapshot.Equal(d("0.60")))
		case "GBP":
			assert.True(t, e.FXRateSnapshot.Equal(d("1.15")))
		}
	}
}

// O share de um associado com várias apostas entra só na primeira (menor id);
// as demais linhas dele carregam share zero.
func TestBuildPlan_ShareOnFirstBetPerAssociate(t *testing.T) {
	bets := []domain.Bet{
		bet("bet-3", "assoc-a", "EUR", "50", "2.00", "100"),
		bet("bet-1", "assoc-a", "EUR", "100", "1.95", "195"),
		bet("bet-2", "assoc-b", "EUR", "140", "2.10", "294"),
	}
	outcomes := map[string]domain.Outcome{
		"bet-1": domain.OutcomeWon,
		"bet-3": domain.OutcomeWon,
		"bet-2": domain.OutcomeLost,
	}

	plan, err := buildPlan("sb-1", "batch-1", bets, outcomes, "assoc-a", eurRates(), nil)
	require.NoError(t, err)
	require.Len(t, plan.Results, 3)

	// Ordenado por id: bet-1, bet-2, bet-3
	assert.Equal(t, "bet-1", plan.Results[0].BetID)
	assert.False(t, plan.Results[0].ShareEUR.IsZero())
	assert.Equal(t, "bet-3", plan.Results[2].BetID)
	assert.True(t, plan.Results[2].ShareEUR.IsZero(), "second bet of assoc-a must carry zero share")

	total := decimal.Zero
	for _, r := range plan.Results {
		total = total.Add(r.ShareEUR)
	}
	assert.True(t, total.Equal(plan.ProfitEUR))
}

func TestBuildPlan_OutcomeValidation(t *testing.T) {
	bets := []domain.Bet{
		bet("bet-a", "assoc-a", "EUR", "100", "1.95", "195"),
		bet("bet-b", "assoc-b", "EUR", "100", "2.10", "210"),
	}

	var vErr *domain.ValidationError

	// Outcome faltando
	_, err := buildPlan("sb-1", "b", bets, map[string]domain.Outcome{
		"bet-a": domain.OutcomeWon,
	}, "assoc-a", eurRates(), nil)
	require.ErrorAs(t, err, &vErr)

	// Outcome de aposta que não existe na surebet
	_, err = buildPlan("sb-1", "b", bets, map[string]domain.Outcome{
		"bet-a": domain.OutcomeWon,
		"bet-x": domain.OutcomeLost,
	}, "assoc-a", eurRates(), nil)
	require.ErrorAs(t, err, &vErr)

	// Outcome inválido
	_, err = buildPlan("sb-1", "b", bets, map[string]domain.Outcome{
		"bet-a": domain.OutcomeWon,
		"bet-b": domain.Outcome("MAYBE"),
	}, "assoc-a", eurRates(), nil)
	require.ErrorAs(t, err, &vErr)

	// Surebet sem apostas
	_, err = buildPlan("sb-1", "b", nil, map[string]domain.Outcome{}, "assoc-a", eurRates(), nil)
	require.ErrorAs(t, err, &vErr)
}

// SHOULD_HOLD − NET_DEPOSITS == Σ per_surebet_share_eur para todo
// associado cujos depósitos igualam o principal devolvido: os dois no
// caso all-VOID, e o vencedor no caso WON/LOST. Para o perdedor o desvio
// é exatamente o principal não devolvido.
func TestSettlement_ReconciliationIdentity(t *testing.T) {
	type sums struct {
		deposits   decimal.Decimal
		shouldHold decimal.Decimal
		shares     decimal.Decimal
	}
	aggregate := func(plan *domain.SettlementPlan, deposits map[string]decimal.Decimal) map[string]sums {
		out := map[string]sums{}
		for id, dep := range deposits {
			out[id] = sums{deposits: dep}
		}
		for _, e := range plan.Entries {
			s := out[e.AssociateID]
			s.shouldHold = s.shouldHold.Add(e.PrincipalReturnedEUR.Decimal).Add(e.PerSurebetShareEUR.Decimal)
			s.shares = s.shares.Add(e.PerSurebetShareEUR.Decimal)
			out[e.AssociateID] = s
		}
		return out
	}
	identityHolds := func(s sums) bool {
		return s.shouldHold.Sub(s.deposits).Equal(s.shares)
	}

	bets := []domain.Bet{
		bet("bet-a", "admin", "EUR", "100", "1.95", "195"),
		bet("bet-b", "assoc-b", "EUR", "100", "2.10", "210"),
	}
	deposits := map[string]decimal.Decimal{
		"admin":   d("100"),
		"assoc-b": d("100"),
	}

	// All-VOID: principal devolvido inteiro aos dois, identidade vale
	// para os dois
	plan, err := buildPlan("sb-1", "batch-1", bets, map[string]domain.Outcome{
		"bet-a": domain.OutcomeVoid,
		"bet-b": domain.OutcomeVoid,
	}, "admin", eurRates(), nil)
	require.NoError(t, err)
	for id, s := range aggregate(plan, deposits) {
		assert.True(t, identityHolds(s), "identity must hold for %s in the all-VOID case", id)
	}

	// WON/LOST: o vencedor recupera o principal e a identidade vale;
	// o perdedor desvia exatamente pelo stake perdido
	plan, err = buildPlan("sb-1", "batch-2", bets, map[string]domain.Outcome{
		"bet-a": domain.OutcomeWon,
		"bet-b": domain.OutcomeLost,
	}, "admin", eurRates(), nil)
	require.NoError(t, err)
	agg := aggregate(plan, deposits)

	winner := agg["admin"]
	assert.True(t, identityHolds(winner))
	assert.True(t, winner.shouldHold.Sub(winner.deposits).Equal(d("-2.50")))

	loser := agg["assoc-b"]
	assert.False(t, identityHolds(loser))
	assert.True(t, loser.shouldHold.Sub(loser.deposits).Equal(loser.shares.Sub(d("100.00"))),
		"loser deviates from the identity by the unreturned principal")
}

// BET_RESULT: amount_eur = principal + share (exato); amount_native é
// derivado pela taxa congelada
func TestBuildEntries_EURPrimacy(t *testing.T) {
	bets := []domain.Bet{
		bet("bet-a", "assoc-a", "AUD", "200", "1.95", "390"),
		bet("bet-b", "assoc-b", "EUR", "100", "2.30", "230"),
	}
	outcomes := map[string]domain.Outcome{
		"bet-a": domain.OutcomeWon,
		"bet-b": domain.OutcomeLost,
	}
	rates := map[string]decimal.Decimal{
		"AUD": d("0.60"),
		"EUR": decimal.NewFromInt(1),
	}

	plan, err := buildPlan("sb-1", "batch-1", bets, outcomes, "assoc-a", rates, nil)
	require.NoError(t, err)

	for i, e := range plan.Entries {
		r := plan.Results[i]
		want := r.PrincipalReturnedEUR.Add(r.ShareEUR)
		assert.True(t, e.AmountEUR.Equal(want), "entry %d amount_eur", i)
		assert.True(t, e.AmountNative.Equal(e.AmountEUR.Div(e.FXRateSnapshot).Round(2)))
		require.True(t, e.PrincipalReturnedEUR.Valid)
		require.True(t, e.PerSurebetShareEUR.Valid)
	}
}
