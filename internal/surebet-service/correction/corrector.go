package correction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/surebet-ledger/internal/surebet-service/domain"
	"github.com/radieske/surebet-ledger/internal/surebet-service/fx"
)

// Ledger é o que o mecanismo de correção pode fazer com o ledger: append.
// Consertar o passado nunca toca as linhas erradas originais.
type Ledger interface {
	Append(ctx context.Context, e domain.LedgerEntry) (string, error)
}

// RateSource resolve a taxa corrente (a correção usa a taxa DE AGORA,
// nunca uma histórica)
type RateSource interface {
	Rate(ctx context.Context, currency string, date time.Time) (fx.Snapshot, error)
}

// RefData valida o vínculo bookmaker -> associado
type RefData interface {
	GetAssociate(ctx context.Context, id string) (domain.Associate, error)
	GetBookmaker(ctx context.Context, id string) (domain.Bookmaker, error)
}

// Corrector aplica ajustes forward-only: correções, depósitos e retiradas
type Corrector struct {
	log     *zap.Logger
	ledger  Ledger
	rates   RateSource
	refdata RefData

	OnApply func(entryType string) // métricas
}

// NewCorrector instancia o mecanismo de correção
func NewCorrector(log *zap.Logger, ledger Ledger, rates RateSource, refdata RefData) *Corrector {
	return &Corrector{log: log, ledger: ledger, rates: rates, refdata: refdata}
}

// Apply registra uma CORRECTION: o único jeito sancionado de consertar um
// erro passado. Valor com sinal, nota obrigatória, bookmaker do associado.
// O bool devolvido indica se a taxa usada veio do fallback de última
// taxa conhecida.
func (c *Corrector) Apply(ctx context.Context, associateID, bookmakerID string, amountNative decimal.Decimal, currency, note, actor string) (domain.LedgerEntry, bool, error) {
	if amountNative.IsZero() {
		return domain.LedgerEntry{}, false, domain.NewValidationError("correction amount must not be zero")
	}
	if note == "" {
		return domain.LedgerEntry{}, false, domain.NewValidationError("correction note must not be empty")
	}
	return c.append(ctx, domain.EntryCorrection, associateID, bookmakerID, amountNative, currency, note, actor)
}

// RecordDeposit registra dinheiro entrando numa conta de bookmaker
func (c *Corrector) RecordDeposit(ctx context.Context, associateID, bookmakerID string, amountNative decimal.Decimal, currency, note, actor string) (domain.LedgerEntry, bool, error) {
	if !amountNative.IsPositive() {
		return domain.LedgerEntry{}, false, domain.NewValidationError("deposit amount must be positive")
	}
	return c.append(ctx, domain.EntryDeposit, associateID, bookmakerID, amountNative, currency, note, actor)
}

// RecordWithdrawal registra dinheiro saindo. Convenção de sinal decidida:
// WITHDRAWALs são gravados NEGATIVOS no ledger; o chamador informa o valor
// positivo retirado.
func (c *Corrector) RecordWithdrawal(ctx context.Context, associateID, bookmakerID string, amountNative decimal.Decimal, currency, note, actor string) (domain.LedgerEntry, bool, error) {
	if !amountNative.IsPositive() {
		return domain.LedgerEntry{}, false, domain.NewValidationError("withdrawal amount must be positive")
	}
	return c.append(ctx, domain.EntryWithdrawal, associateID, bookmakerID, amountNative.Neg(), currency, note, actor)
}

func (c *Corrector) append(ctx context.Context, entryType domain.EntryType, associateID, bookmakerID string, amountNative decimal.Decimal, currency, note, actor string) (domain.LedgerEntry, bool, error) {
	if _, err := c.refdata.GetAssociate(ctx, associateID); err != nil {
		return domain.LedgerEntry{}, false, err
	}
	if bookmakerID != "" {
		bm, err := c.refdata.GetBookmaker(ctx, bookmakerID)
		if err != nil {
			return domain.LedgerEntry{}, false, err
		}
		if bm.AssociateID != associateID {
			return domain.LedgerEntry{}, false, domain.NewValidationError(
				"bookmaker %s belongs to associate %s, not %s", bookmakerID, bm.AssociateID, associateID)
		}
	}

	// Taxa do instante da operação, congelada na linha pra sempre
	snap, err := c.rates.Rate(ctx, currency, time.Now())
	if err != nil {
		return domain.LedgerEntry{}, false, err
	}

	e := domain.LedgerEntry{
		EntryType:      entryType,
		AssociateID:    associateID,
		BookmakerID:    bookmakerID,
		AmountNative:   amountNative,
		NativeCurrency: currency,
		FXRateSnapshot: snap.Rate,
		AmountEUR:      amountNative.Mul(snap.Rate).Round(2),
		CreatedBy:      actor,
		Note:           note,
	}
	id, err := c.ledger.Append(ctx, e)
	if err != nil {
		return domain.LedgerEntry{}, snap.Fallback, err
	}
	e.ID = id

	c.log.Info("ledger adjustment appended",
		zap.String("entryId", id),
		zap.String("type", string(entryType)),
		zap.String("associateId", associateID),
		zap.String("amountEur", e.AmountEUR.StringFixed(2)),
		zap.Bool("fxFallback", snap.Fallback),
	)
	if c.OnApply != nil {
		c.OnApply(string(entryType))
	}
	return e, snap.Fallback, nil
}
