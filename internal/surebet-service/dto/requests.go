package dto

import "github.com/shopspring/decimal"

// IngestBetRequest é o payload da ingestão de uma aposta já verificada
type IngestBetRequest struct {
	AssociateID string           `json:"associate_id"`
	BookmakerID string           `json:"bookmaker_id"`
	EventID     string           `json:"event_id"`
	MarketCode  string           `json:"market_code"` // ex: "TOTAL_GOALS", "1x2"
	PeriodScope string           `json:"period_scope"`
	LineValue   *decimal.Decimal `json:"line_value,omitempty"`
	Selection   string           `json:"selection"` // OVER|UNDER|YES|NO|TEAM_A|TEAM_B
	Stake       decimal.Decimal  `json:"stake"`
	Odds        decimal.Decimal  `json:"odds"`
	Payout      decimal.Decimal  `json:"payout"`
	Currency    string           `json:"currency"`
	Supported   *bool            `json:"supported,omitempty"` // default true; false = acumulada
}

// SettlementRequest carrega a decisão humana de outcome por aposta.
// O operador pode sobrescrever qualquer aposta individualmente.
type SettlementRequest struct {
	Outcomes map[string]string `json:"outcomes"` // betId -> WON|LOST|VOID
	Actor    string            `json:"actor,omitempty"`
}

// AdjustmentRequest serve para depósitos, retiradas e correções
type AdjustmentRequest struct {
	AssociateID string          `json:"associate_id"`
	BookmakerID string          `json:"bookmaker_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Note        string          `json:"note"`
	Actor       string          `json:"actor,omitempty"`
}

// NotifyRequest dispara a notificação manual do lado oposto
type NotifyRequest struct {
	Side           string   `json:"side"` // "A" | "B"
	ScreenshotRefs []string `json:"screenshot_refs,omitempty"`
	Actor          string   `json:"actor,omitempty"`
}

// ExitRequest dispara o exit settlement de um associado
type ExitRequest struct {
	Actor string `json:"actor,omitempty"`
}

// FXRateRequest carrega a taxa diária de uma moeda
type FXRateRequest struct {
	Currency string          `json:"currency"`
	Date     string          `json:"date"` // YYYY-MM-DD
	Rate     decimal.Decimal `json:"rate"` // EUR por unidade
}

// CreateAssociateRequest cadastra um parceiro
type CreateAssociateRequest struct {
	Name         string `json:"name"`
	HomeCurrency string `json:"home_currency"`
	IsAdmin      bool   `json:"is_admin"`
}

// CreateBookmakerRequest cadastra uma conta de bookmaker
type CreateBookmakerRequest struct {
	AssociateID string `json:"associate_id"`
	Name        string `json:"name"`
	Currency    string `json:"currency"`
}
