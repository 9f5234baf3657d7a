package dto

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// IngestBetResponse devolve o id e status da aposta ingerida
type IngestBetResponse struct {
	BetID  string `json:"betId"`
	Status string `json:"status"` // VERIFIED
}

// SettlementPreviewResponse é o plano não-committing mostrado ao operador
type SettlementPreviewResponse struct {
	SurebetID string          `json:"surebet_id"`
	ProfitEUR decimal.Decimal `json:"profit_eur"`
	Seats     int             `json:"seats"`
	CoordSeat bool            `json:"coordinator_seat"`
	Rows      []PreviewRow    `json:"rows"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// PreviewRow é uma linha do preview de distribuição
type PreviewRow struct {
	BetID                string          `json:"bet_id,omitempty"`
	AssociateID          string          `json:"associate_id"`
	Outcome              string          `json:"outcome,omitempty"`
	SeatKind             string          `json:"seat_kind"`
	NetGainEUR           decimal.Decimal `json:"net_gain_eur"`
	PrincipalReturnedEUR decimal.Decimal `json:"principal_returned_eur"`
	ShareEUR             decimal.Decimal `json:"per_surebet_share_eur"`
	EntitlementEUR       decimal.Decimal `json:"entitlement_eur"`
}

// LedgerEntryResponse serializa um fato do ledger
type LedgerEntryResponse struct {
	ID                   string               `json:"id"`
	EntryType            string               `json:"entry_type"`
	AssociateID          string               `json:"associate_id"`
	BookmakerID          string               `json:"bookmaker_id,omitempty"`
	SurebetID            string               `json:"surebet_id,omitempty"`
	BetID                string               `json:"bet_id,omitempty"`
	SettlementBatchID    string               `json:"settlement_batch_id,omitempty"`
	SettlementState      string               `json:"settlement_state,omitempty"`
	AmountNative         decimal.Decimal      `json:"amount_native"`
	NativeCurrency       string               `json:"native_currency"`
	FXRateSnapshot       decimal.Decimal      `json:"fx_rate_snapshot"`
	AmountEUR            decimal.Decimal      `json:"amount_eur"`
	PrincipalReturnedEUR *decimal.Decimal     `json:"principal_returned_eur,omitempty"`
	PerSurebetShareEUR   *decimal.Decimal     `json:"per_surebet_share_eur,omitempty"`
	CreatedAt            string               `json:"created_at"`
	CreatedBy            string               `json:"created_by"`
	Note                 string               `json:"note,omitempty"`
}

// FromLedgerEntry converte o modelo de domínio para a resposta da API
func FromLedgerEntry(e domain.LedgerEntry) LedgerEntryResponse {
	r := LedgerEntryResponse{
		ID:                e.ID,
		EntryType:         string(e.EntryType),
		AssociateID:       e.AssociateID,
		BookmakerID:       e.BookmakerID,
		SurebetID:         e.SurebetID,
		BetID:             e.BetID,
		SettlementBatchID: e.SettlementBatchID,
		SettlementState:   string(e.SettlementState),
		AmountNative:      e.AmountNative,
		NativeCurrency:    e.NativeCurrency,
		FXRateSnapshot:    e.FXRateSnapshot,
		AmountEUR:         e.AmountEUR,
		CreatedAt:         e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		CreatedBy:         e.CreatedBy,
		Note:              e.Note,
	}
	if e.PrincipalReturnedEUR.Valid {
		v := e.PrincipalReturnedEUR.Decimal
		r.PrincipalReturnedEUR = &v
	}
	if e.PerSurebetShareEUR.Valid {
		v := e.PerSurebetShareEUR.Decimal
		r.PerSurebetShareEUR = &v
	}
	return r
}

// AdjustmentResponse devolve o lançamento criado por depósito/retirada/correção
type AdjustmentResponse struct {
	EntryID    string          `json:"entryId"`
	AmountEUR  decimal.Decimal `json:"amount_eur"`
	FXRate     decimal.Decimal `json:"fx_rate_snapshot"`
	FXFallback bool            `json:"fx_fallback,omitempty"`
}

// SurebetResponse descreve uma surebet com seus participantes
type SurebetResponse struct {
	ID          string             `json:"id"`
	EventID     string             `json:"event_id"`
	MarketCode  string             `json:"market_code"`
	PeriodScope string             `json:"period_scope"`
	LineValue   *decimal.Decimal   `json:"line_value,omitempty"`
	Status      string             `json:"status"`
	Bets        []SurebetBetRow    `json:"bets"`
}

// SurebetBetRow é uma aposta participante na visão da surebet
type SurebetBetRow struct {
	BetID       string          `json:"bet_id"`
	AssociateID string          `json:"associate_id"`
	Side        string          `json:"side"`
	Stake       decimal.Decimal `json:"stake"`
	Odds        decimal.Decimal `json:"odds"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
}
