package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
	"github.com/radieske/surebet-ledger/internal/surebet-service/fx"
)

// Store define a persistência que o settlement usa
type Store interface {
	GetSurebet(ctx context.Context, id string) (domain.Surebet, error)
	BetsBySurebet(ctx context.Context, surebetID string) ([]domain.Bet, error)
	// CommitSettlement grava o batch inteiro atomicamente, rechecando a
	// precondição (surebet ainda OPEN) dentro da transação
	CommitSettlement(ctx context.Context, plan *domain.SettlementPlan) error
}

// RateSource resolve snapshots de câmbio congelados no instante do batch
type RateSource interface {
	Rate(ctx context.Context, currency string, date time.Time) (fx.Snapshot, error)
}

// AdminSource resolve o associado admin/coordenador
type AdminSource interface {
	AdminAssociate(ctx context.Context) (domain.Associate, error)
}

// Receipt é o recibo humano de um confirm
type Receipt struct {
	SurebetID   string          `json:"surebet_id"`
	BatchID     string          `json:"batch_id"`
	ProfitEUR   decimal.Decimal `json:"profit_eur"`
	Seats       int             `json:"seats"`
	CoordSeat   bool            `json:"coordinator_seat"`
	Entries     int             `json:"ledger_entries"`
	Warnings    []string        `json:"warnings,omitempty"`
	CommittedAt time.Time       `json:"committed_at"`
}

// Engine grada os outcomes de uma surebet e executa a distribuição
// equal-split. Depois do commit nada mais altera essas linhas; erro
// descoberto depois vira correção forward-only.
type Engine struct {
	log   *zap.Logger
	store Store
	rates RateSource
	admin AdminSource

	OnCommit func() // métricas
}

// NewEngine instancia o settlement engine
func NewEngine(log *zap.Logger, store Store, rates RateSource, admin AdminSource) *Engine {
	return &Engine{log: log, store: store, rates: rates, admin: admin}
}

// Preview monta o plano completo da distribuição sem escrever nada.
// Todo confirm é precedido por um preview não-committing no fluxo do operador.
func (e *Engine) Preview(ctx context.Context, surebetID string, outcomes map[string]domain.Outcome) (*domain.SettlementPlan, error) {
	return e.plan(ctx, surebetID, outcomes)
}

// Confirm remonta o plano com snapshots frescos e grava o batch atômico:
// linhas de ledger, apostas SETTLED e surebet SETTLED, tudo ou nada.
func (e *Engine) Confirm(ctx context.Context, surebetID string, outcomes map[string]domain.Outcome) (Receipt, error) {
	plan, err := e.plan(ctx, surebetID, outcomes)
	if err != nil {
		return Receipt{}, err
	}

	if err := e.store.CommitSettlement(ctx, plan); err != nil {
		return Receipt{}, err
	}

	e.log.Info("settlement committed",
		zap.String("surebetId", surebetID),
		zap.String("batchId", plan.BatchID),
		zap.String("profitEur", plan.ProfitEUR.StringFixed(2)),
		zap.Int("seats", plan.Seats),
		zap.Bool("coordSeat", plan.CoordSeat),
	)
	if e.OnCommit != nil {
		e.OnCommit()
	}

	return Receipt{
		SurebetID:   surebetID,
		BatchID:     plan.BatchID,
		ProfitEUR:   plan.ProfitEUR,
		Seats:       plan.Seats,
		CoordSeat:   plan.CoordSeat,
		Entries:     len(plan.Entries),
		Warnings:    plan.Warnings,
		CommittedAt: time.Now().UTC(),
	}, nil
}

// plan valida precondições, congela um snapshot por moeda e constrói a
// distribuição determinística
func (e *Engine) plan(ctx context.Context, surebetID string, outcomes map[string]domain.Outcome) (*domain.SettlementPlan, error) {
	sb, err := e.store.GetSurebet(ctx, surebetID)
	if err != nil {
		return nil, err
	}
	if sb.Status != domain.SurebetOpen {
		return nil, domain.NewStateConflictError("surebet %s is %s, expected OPEN", surebetID, sb.Status)
	}

	bets, err := e.store.BetsBySurebet(ctx, surebetID)
	if err != nil {
		return nil, err
	}
	for _, b := range bets {
		if b.Status != domain.BetMatched {
			return nil, domain.NewStateConflictError("bet %s is %s, expected MATCHED", b.ID, b.Status)
		}
	}

	adm, err := e.admin.AdminAssociate(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve admin associate: %w", err)
	}

	// Um snapshot por moeda distinta do batch, congelado neste instante
	now := time.Now()
	rates := make(map[string]decimal.Decimal)
	var warnings []string
	for _, b := range bets {
		if _, ok := rates[b.Currency]; ok {
			continue
		}
		snap, err := e.rates.Rate(ctx, b.Currency, now)
		if err != nil {
			return nil, err
		}
		rates[b.Currency] = snap.Rate
		if snap.Fallback {
			warnings = append(warnings, fmt.Sprintf(
				"fx %s: using last known rate from %s", b.Currency, snap.FallbackFrom.Format("2006-01-02")))
		}
	}

	batchID := uuid.NewString()
	return buildPlan(surebetID, batchID, bets, outcomes, adm.ID, rates, warnings)
}
