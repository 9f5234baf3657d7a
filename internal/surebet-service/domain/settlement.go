package domain

import "github.com/shopspring/decimal"

// SeatKind distingue assentos que arriscaram principal dos que não.
// VOID ainda ocupa assento e recebe share (possivelmente negativo).
type SeatKind string

const (
	SeatStaked    SeatKind = "STAKED"
	SeatNonStaked SeatKind = "NON_STAKED"
)

// BetResult é o resultado por aposta dentro de um plano de settlement
type BetResult struct {
	BetID       string
	AssociateID string
	BookmakerID string
	Outcome     Outcome

	Currency string
	FXRate   decimal.Decimal // snapshot congelado do batch

	StakeEUR             decimal.Decimal
	PayoutEUR            decimal.Decimal
	NetGainEUR           decimal.Decimal
	PrincipalReturnedEUR decimal.Decimal
	ShareEUR             decimal.Decimal // 0 nas apostas extras de um mesmo associado
	SeatKind             SeatKind
}

// SettlementPlan é o resultado determinístico do preview: tudo que o
// confirm vai gravar, sem nenhuma escrita ainda. Invariante dura:
// Σ share sobre todos os assentos == ProfitEUR, exato.
type SettlementPlan struct {
	SurebetID string
	BatchID   string

	ProfitEUR decimal.Decimal
	Seats     int  // associados distintos (+1 se assento de coordenador)
	CoordSeat bool // admin não apostou e ganhou assento extra

	Results []BetResult
	// Linha do assento de coordenador, sem aposta (só quando CoordSeat)
	CoordAssociateID string
	CoordShareEUR    decimal.Decimal

	// Snapshot congelado por moeda presente no batch
	Rates map[string]decimal.Decimal
	// Avisos não fatais (ex.: fx em fallback de última taxa conhecida)
	Warnings []string

	// Linhas de ledger prontas para o commit atômico
	Entries []LedgerEntry
}
