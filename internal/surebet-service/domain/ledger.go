package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType é o tipo de um fato financeiro no ledger
type EntryType string

const (
	EntryBetResult  EntryType = "BET_RESULT"
	EntryDeposit    EntryType = "DEPOSIT"
	EntryWithdrawal EntryType = "WITHDRAWAL"
	EntryCorrection EntryType = "CORRECTION"
)

// LedgerEntry é um fato financeiro append-only. Nenhum caminho de código
// atualiza ou deleta uma linha existente; a única mutação suportada é o
// append. O snapshot de câmbio é congelado na criação e nunca revisado.
//
// Convenção de sinal (decidida, ver DESIGN.md): WITHDRAWALs são gravados
// com amount_native/amount_eur NEGATIVOS. Com isso CURRENT_HOLDING é a
// soma direta de amount_eur sobre todas as linhas.
type LedgerEntry struct {
	ID        string
	EntryType EntryType

	AssociateID string
	BookmakerID string // vazio para lançamentos a nível de associado

	// Preenchidos apenas em BET_RESULT
	SurebetID         string
	BetID             string // vazio na linha do assento de coordenador
	SettlementBatchID string
	SettlementState   Outcome

	AmountNative   decimal.Decimal
	NativeCurrency string
	FXRateSnapshot decimal.Decimal // EUR por unidade, congelado na criação
	AmountEUR      decimal.Decimal

	PrincipalReturnedEUR decimal.NullDecimal // BET_RESULT apenas
	PerSurebetShareEUR   decimal.NullDecimal // BET_RESULT apenas

	CreatedAt time.Time
	CreatedBy string
	Note      string
}

// LedgerFilter restringe consultas de leitura do ledger
type LedgerFilter struct {
	AssociateID string
	BookmakerID string
	SurebetID   string
	From        time.Time
	To          time.Time
}

// LedgerAggregate são as somas por associado (ou por bookmaker do
// associado, no drilldown) usadas pela reconciliação.
type LedgerAggregate struct {
	AssociateID string
	BookmakerID string // vazio no agregado por associado

	// Σ amount_eur sobre DEPOSIT e WITHDRAWAL (withdrawals já negativos)
	NetDepositsEUR decimal.Decimal
	// Σ (principal_returned_eur + per_surebet_share_eur) sobre BET_RESULT
	ShouldHoldEUR decimal.Decimal
	// Σ amount_eur sobre todos os tipos
	CurrentHoldingEUR decimal.Decimal
}

// DeltaEUR é o sinal central de saúde: CURRENT_HOLDING − SHOULD_HOLD
func (a LedgerAggregate) DeltaEUR() decimal.Decimal {
	return a.CurrentHoldingEUR.Sub(a.ShouldHoldEUR)
}

// HoldingClass classifica o delta de um associado
type HoldingClass string

const (
	HoldingOverholder HoldingClass = "OVERHOLDER"
	HoldingShort      HoldingClass = "SHORT"
	HoldingBalanced   HoldingClass = "BALANCED"
)

// ClassifyDelta aplica os thresholds configuráveis ao delta
func ClassifyDelta(delta, overhold, short decimal.Decimal) HoldingClass {
	switch {
	case delta.GreaterThan(overhold):
		return HoldingOverholder
	case delta.LessThan(short):
		return HoldingShort
	default:
		return HoldingBalanced
	}
}
