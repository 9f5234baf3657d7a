package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
)

// Store são as leituras agregadas do ledger que a reconciliação consome,
// mais a operação de exit settlement (atômica no storage)
type Store interface {
	AggregateForAssociate(ctx context.Context, associateID string) (domain.LedgerAggregate, error)
	AggregatesByAssociate(ctx context.Context) ([]domain.LedgerAggregate, error)
	AggregatesByBookmaker(ctx context.Context, associateID string) ([]domain.LedgerAggregate, error)
	ExitSettle(ctx context.Context, associateID, createdBy string) (domain.LedgerEntry, decimal.Decimal, error)
}

// RefData resolve nomes de associados para o relatório
type RefData interface {
	GetAssociate(ctx context.Context, id string) (domain.Associate, error)
	ListAssociates(ctx context.Context) ([]domain.Associate, error)
}

// Health é a visão de saúde de um associado (ou de uma conta no drilldown)
type Health struct {
	AssociateID       string              `json:"associate_id"`
	Name              string              `json:"name,omitempty"`
	BookmakerID       string              `json:"bookmaker_id,omitempty"`
	NetDepositsEUR    decimal.Decimal     `json:"net_deposits_eur"`
	ShouldHoldEUR     decimal.Decimal     `json:"should_hold_eur"`
	CurrentHoldingEUR decimal.Decimal     `json:"current_holding_eur"`
	DeltaEUR          decimal.Decimal     `json:"delta_eur"`
	Class             domain.HoldingClass `json:"class"`
}

// ExitReceipt é o recibo humano de um exit settlement
type ExitReceipt struct {
	AssociateID string          `json:"associate_id"`
	EntryID     string          `json:"entry_id"`
	DeltaWasEUR decimal.Decimal `json:"delta_was_eur"`
	Adjustment  decimal.Decimal `json:"adjustment_eur"`
	Message     string          `json:"message"`
	SettledAt   time.Time       `json:"settled_at"`
}

// Engine é agregação pura de leitura sobre o ledger: quem está retendo
// a mais, quem está devendo, e o exit settlement que zera um associado.
type Engine struct {
	log     *zap.Logger
	store   Store
	refdata RefData

	overhold decimal.Decimal // threshold positivo configurável
	short    decimal.Decimal // threshold negativo configurável
}

// NewEngine instancia o engine de reconciliação
func NewEngine(log *zap.Logger, store Store, refdata RefData, overhold, short decimal.Decimal) *Engine {
	return &Engine{log: log, store: store, refdata: refdata, overhold: overhold, short: short}
}

// Overview computa a saúde de todos os associados com lançamentos
func (e *Engine) Overview(ctx context.Context) ([]Health, error) {
	aggs, err := e.store.AggregatesByAssociate(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	if assocs, err := e.refdata.ListAssociates(ctx); err == nil {
		for _, a := range assocs {
			names[a.ID] = a.Name
		}
	}

	out := make([]Health, 0, len(aggs))
	for _, agg := range aggs {
		h := e.health(agg)
		h.Name = names[agg.AssociateID]
		out = append(out, h)
	}
	return out, nil
}

// ForAssociate computa a saúde de um associado
func (e *Engine) ForAssociate(ctx context.Context, associateID string) (Health, error) {
	a, err := e.refdata.GetAssociate(ctx, associateID)
	if err != nil {
		return Health{}, err
	}
	agg, err := e.store.AggregateForAssociate(ctx, associateID)
	if err != nil {
		return Health{}, err
	}
	h := e.health(agg)
	h.AssociateID = associateID
	h.Name = a.Name
	return h, nil
}

// BookmakerDrilldown repete a agregação por conta de bookmaker, para
// comparação com o saldo reportado externamente
func (e *Engine) BookmakerDrilldown(ctx context.Context, associateID string) ([]Health, error) {
	aggs, err := e.store.AggregatesByBookmaker(ctx, associateID)
	if err != nil {
		return nil, err
	}
	out := make([]Health, 0, len(aggs))
	for _, agg := range aggs {
		out = append(out, e.health(agg))
	}
	return out, nil
}

// ExitSettle zera o delta do associado com exatamente uma CORRECTION e
// devolve um recibo legível da ação tomada
func (e *Engine) ExitSettle(ctx context.Context, associateID, actor string) (ExitReceipt, error) {
	a, err := e.refdata.GetAssociate(ctx, associateID)
	if err != nil {
		return ExitReceipt{}, err
	}

	entry, delta, err := e.store.ExitSettle(ctx, associateID, actor)
	if err != nil {
		return ExitReceipt{}, err
	}

	direction := "receives"
	if delta.IsPositive() {
		direction = "returns"
	}
	msg := fmt.Sprintf("%s %s %s EUR; delta was %s EUR and is now zero",
		a.Name, direction, delta.Abs().StringFixed(2), delta.StringFixed(2))

	e.log.Info("exit settlement applied",
		zap.String("associateId", associateID),
		zap.String("entryId", entry.ID),
		zap.String("deltaWas", delta.StringFixed(2)),
	)

	return ExitReceipt{
		AssociateID: associateID,
		EntryID:     entry.ID,
		DeltaWasEUR: delta,
		Adjustment:  entry.AmountEUR,
		Message:     msg,
		SettledAt:   time.Now().UTC(),
	}, nil
}

func (e *Engine) health(agg domain.LedgerAggregate) Health {
	delta := agg.DeltaEUR()
	return Health{
		AssociateID:       agg.AssociateID,
		BookmakerID:       agg.BookmakerID,
		NetDepositsEUR:    agg.NetDepositsEUR,
		ShouldHoldEUR:     agg.ShouldHoldEUR,
		CurrentHoldingEUR: agg.CurrentHoldingEUR,
		DeltaEUR:          delta,
		Class:             domain.ClassifyDelta(delta, e.overhold, e.short),
	}
}
