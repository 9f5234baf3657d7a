package settlement

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// buildPlan faz a conta pura da distribuição equal-split, sem nenhuma
// escrita. Regra do centavo residual (decidida e documentada): o share
// base é profit/N com arredondamento banker's em 2 casas; o residual
// profit − N×base vai inteiro para o assento do admin/coordenador, que
// existe em todo settlement (apostou, ou ganhou o assento extra).
// Invariante dura: Σ shares == profit, exato — verificado aqui.
func buildPlan(surebetID, batchID string, bets []domain.Bet, outcomes map[string]domain.Outcome,
	adminID string, rates map[string]decimal.Decimal, warnings []string) (*domain.SettlementPlan, error) {

	if len(bets) == 0 {
		return nil, domain.NewValidationError("surebet %s has no bets to settle", surebetID)
	}
	if err := checkOutcomes(bets, outcomes); err != nil {
		return nil, err
	}

	// Ordem determinística: o share de cada assento cai na primeira
	// aposta (menor id) do associado
	sorted := make([]domain.Bet, len(bets))
	copy(sorted, bets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	// Passo 1-2: ganho líquido por aposta e lucro total, tudo em EUR
	profit := decimal.Zero
	results := make([]domain.BetResult, 0, len(sorted))
	for _, b := range sorted {
		rate, ok := rates[b.Currency]
		if !ok {
			return nil, fmt.Errorf("no frozen rate for currency %s in batch %s", b.Currency, batchID)
		}
		out := outcomes[b.ID]

		stakeEUR := b.Stake.Mul(rate).Round(2)
		payoutEUR := b.Payout.Mul(rate).Round(2)

		var net, principal decimal.Decimal
		kind := domain.SeatStaked
		switch out {
		case domain.OutcomeWon:
			net = payoutEUR.Sub(stakeEUR)
			principal = stakeEUR
		case domain.OutcomeLost:
			net = stakeEUR.Neg()
			principal = decimal.Zero
		case domain.OutcomeVoid:
			// VOID: ganho zero, principal devolvido, assento mantido
			net = decimal.Zero
			principal = stakeEUR
			kind = domain.SeatNonStaked
		}
		profit = profit.Add(net)

		results = append(results, domain.BetResult{
			BetID:                b.ID,
			AssociateID:          b.AssociateID,
			BookmakerID:          b.BookmakerID,
			Outcome:              out,
			Currency:             b.Currency,
			FXRate:               rate,
			StakeEUR:             stakeEUR,
			PayoutEUR:            payoutEUR,
			NetGainEUR:           net,
			PrincipalReturnedEUR: principal,
			SeatKind:             kind,
		})
	}

	// Passo 3: assentos = associados distintos; +1 de coordenador quando
	// o admin não tem aposta nesta surebet
	seen := make(map[string]bool)
	var associates []string
	for _, r := range results {
		if !seen[r.AssociateID] {
			seen[r.AssociateID] = true
			associates = append(associates, r.AssociateID)
		}
	}
	coordSeat := !seen[adminID]
	seats := len(associates)
	if coordSeat {
		seats++
	}

	// Passo 4: share base com banker's rounding, residual pro admin
	n := decimal.NewFromInt(int64(seats))
	base := profit.Div(n).RoundBank(2)
	residual := profit.Sub(base.Mul(n))

	shareOf := make(map[string]decimal.Decimal, seats)
	for _, id := range associates {
		shareOf[id] = base
	}
	coordShare := decimal.Zero
	if coordSeat {
		coordShare = base.Add(residual)
	} else {
		shareOf[adminID] = base.Add(residual)
	}

	// O share do assento entra na primeira aposta do associado
	credited := make(map[string]bool)
	total := coordShare
	for i := range results {
		r := &results[i]
		if !credited[r.AssociateID] {
			credited[r.AssociateID] = true
			r.ShareEUR = shareOf[r.AssociateID]
		} else {
			r.ShareEUR = decimal.Zero
		}
		total = total.Add(r.ShareEUR)
	}

	// Invariante dura, não aproximação: Σ shares == profit
	if !total.Equal(profit) {
		return nil, fmt.Errorf("share distribution mismatch: sum %s != profit %s", total, profit)
	}

	plan := &domain.SettlementPlan{
		SurebetID:        surebetID,
		BatchID:          batchID,
		ProfitEUR:        profit,
		Seats:            seats,
		CoordSeat:        coordSeat,
		Results:          results,
		CoordAssociateID: adminID,
		CoordShareEUR:    coordShare,
		Rates:            rates,
		Warnings:         warnings,
	}
	plan.Entries = buildEntries(plan)
	return plan, nil
}

// checkOutcomes exige um outcome válido para cada aposta, nem mais nem menos
func checkOutcomes(bets []domain.Bet, outcomes map[string]domain.Outcome) error {
	if len(outcomes) != len(bets) {
		return domain.NewValidationError("got %d outcomes for %d bets", len(outcomes), len(bets))
	}
	for _, b := range bets {
		out, ok := outcomes[b.ID]
		if !ok {
			return domain.NewValidationError("missing outcome for bet %s", b.ID)
		}
		if !out.Valid() {
			return domain.NewValidationError("invalid outcome %q for bet %s", string(out), b.ID)
		}
	}
	return nil
}

// buildEntries materializa as linhas de ledger do batch. EUR manda nas
// linhas BET_RESULT: amount_eur = principal + share (exato); amount_native
// é derivado pela taxa congelada e serve de referência na moeda da conta.
func buildEntries(plan *domain.SettlementPlan) []domain.LedgerEntry {
	entries := make([]domain.LedgerEntry, 0, len(plan.Results)+1)
	for _, r := range plan.Results {
		amountEUR := r.PrincipalReturnedEUR.Add(r.ShareEUR)
		amountNative := decimal.Zero
		if r.FXRate.IsPositive() {
			amountNative = amountEUR.Div(r.FXRate).Round(2)
		}
		entries = append(entries, domain.LedgerEntry{
			EntryType:            domain.EntryBetResult,
			AssociateID:          r.AssociateID,
			BookmakerID:          r.BookmakerID,
			SurebetID:            plan.SurebetID,
			BetID:                r.BetID,
			SettlementBatchID:    plan.BatchID,
			SettlementState:      r.Outcome,
			AmountNative:         amountNative,
			NativeCurrency:       r.Currency,
			FXRateSnapshot:       r.FXRate,
			AmountEUR:            amountEUR,
			PrincipalReturnedEUR: decimal.NewNullDecimal(r.PrincipalReturnedEUR),
			PerSurebetShareEUR:   decimal.NewNullDecimal(r.ShareEUR),
			CreatedBy:            "settlement",
			Note:                 fmt.Sprintf("settlement %s: bet %s %s", plan.BatchID, r.BetID, r.Outcome),
		})
	}

	// Assento de coordenador: linha sem aposta, em EUR, share possivelmente
	// negativo — o admin participa do split mesmo sem ter apostado
	if plan.CoordSeat {
		entries = append(entries, domain.LedgerEntry{
			EntryType:            domain.EntryBetResult,
			AssociateID:          plan.CoordAssociateID,
			SurebetID:            plan.SurebetID,
			SettlementBatchID:    plan.BatchID,
			AmountNative:         plan.CoordShareEUR,
			NativeCurrency:       "EUR",
			FXRateSnapshot:       decimal.NewFromInt(1),
			AmountEUR:            plan.CoordShareEUR,
			PrincipalReturnedEUR: decimal.NewNullDecimal(decimal.Zero),
			PerSurebetShareEUR:   decimal.NewNullDecimal(plan.CoordShareEUR),
			CreatedBy:            "settlement",
			Note:                 fmt.Sprintf("settlement %s: coordinator seat", plan.BatchID),
		})
	}
	return entries
}
